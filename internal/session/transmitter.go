package session

import (
	"math/rand/v2"

	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/sequencer"
)

// Transmitter turns frame bytes into the signal sequence a sender presents.
// HoldTicks is how many ticks each batch's motion is held. Jitter adds
// uniform noise of up to Jitter/256 of a byte step to every data lane; it
// must stay below 0.5 to remain decodable.
type Transmitter struct {
	HoldTicks int
	Jitter    float64
	Rand      *rand.Rand
}

func DefaultTransmitter() Transmitter {
	return Transmitter{HoldTicks: 1}
}

var capture = sequencer.Context{InStation: true}

// Signals is the full sequence for frame p holding data: one page-select
// tick, every batch, then enough ticks for the last channels to finish.
func (t Transmitter) Signals(p int, data []byte) []Signal {
	hold := t.HoldTicks
	if hold < 1 {
		hold = 1
	}
	batches := codec.BatchCount(len(data))
	out := []Signal{{Motion: [codec.LaneCount]float64{0, sequencer.PageSample(p), 0}, Context: capture}}
	var motion [codec.LaneCount]float64
	for k := 1; k <= batches; k++ {
		motion = codec.BatchMotion(data, k)
		for i := 0; i < hold; i++ {
			out = append(out, Signal{Motion: t.jitter(motion), Context: capture})
		}
	}
	for i := 0; i < codec.StepsPerChannel; i++ {
		out = append(out, Signal{Motion: t.jitter(motion), Context: capture})
	}
	return out
}

func (t Transmitter) jitter(m [codec.LaneCount]float64) [codec.LaneCount]float64 {
	if t.Jitter == 0 || t.Rand == nil {
		return m
	}
	for i := range m {
		m[i] += (t.Rand.Float64()*2 - 1) * t.Jitter / 256 / codec.TransferScale
	}
	return m
}
