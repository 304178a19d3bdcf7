package codec

import "math"

const (
	StepsPerChannel = 8
	FixedPointBits  = 16
	fixedOne        = 1 << FixedPointBits
)

// Accumulator is one word shared by a high/low channel pair. Only ApplyBit
// and Reset mutate it.
type Accumulator struct {
	units uint32
}

// ApplyBit adds 1/2^(bitPosition+1+byteOffset). byteOffset is 0 or 8.
func (a *Accumulator) ApplyBit(bitPosition, byteOffset int) error {
	if bitPosition < 0 || bitPosition >= StepsPerChannel {
		return ErrBitRange
	}
	if byteOffset != 0 && byteOffset != 8 {
		return ErrBitRange
	}
	a.units += 1 << (FixedPointBits - 1 - bitPosition - byteOffset)
	return nil
}

func (a *Accumulator) Reset() {
	a.units = 0
}

// Units is the word in units of 2^-16.
func (a Accumulator) Units() uint32 {
	return a.units
}

// Value is the word as the float the carrier exposes.
func (a Accumulator) Value() float64 {
	return float64(a.units) / fixedOne
}

// Bytes splits the word into its high and low byte.
func (a Accumulator) Bytes() (high, low byte) {
	u := a.units
	if u > fixedOne-1 {
		u = fixedOne - 1
	}
	return byte(u >> 8), byte(u)
}

// DecodeWord recovers the two bytes of a word read back from the carrier.
// The value is rounded to the nearest 2^-16 and clamped to [0, 1).
func DecodeWord(word float64) (high, low byte) {
	if math.IsNaN(word) || word <= 0 {
		return 0, 0
	}
	scaled := math.Round(word * fixedOne)
	if scaled > fixedOne-1 {
		scaled = fixedOne - 1
	}
	a := Accumulator{units: uint32(scaled)}
	return a.Bytes()
}

// Threshold is the decision boundary for a bit position, 1/2^(p+1).
func Threshold(bitPosition int) float64 {
	return 1 / float64(uint64(1)<<(bitPosition+1))
}

// ByteOffset is the accumulator shift for a channel: 8 for even (low byte)
// channels, 0 for odd (high byte) channels.
func ByteOffset(channel int) int {
	return (channel&1 ^ 1) * 8
}

// Contribution is what a write at bitPosition adds to the channel's word.
func Contribution(channel, bitPosition int) float64 {
	return 1 / float64(uint64(1)<<(bitPosition+1+ByteOffset(channel)))
}
