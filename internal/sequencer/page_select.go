package sequencer

import "math"

// PageBandWidth is the width of one page's Y motion band.
const PageBandWidth = 1.0 / 256 / 32

// PageBand is the open interval of Y motion that selects page p.
func PageBand(p int) (lower, upper float64) {
	return -float64(p+1) * PageBandWidth, -float64(p) * PageBandWidth
}

// PageSample is the Y motion a sender presents to select page p.
func PageSample(p int) float64 {
	return -(float64(p) + 0.5) * PageBandWidth
}

// PageFromMotion resolves a Y motion sample to a page. Samples that are not
// negative or sit exactly on a band edge select nothing.
func PageFromMotion(y float64) (int, bool) {
	if !(y < 0) {
		return 0, false
	}
	pos := -y / PageBandWidth
	p := math.Floor(pos)
	if p == pos || p >= math.MaxInt32 {
		return 0, false
	}
	return int(p), true
}
