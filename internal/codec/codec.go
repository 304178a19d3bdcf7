package codec

import (
	"fmt"

	"github.com/danmuck/savestate/internal/page"
)

// Op is how a Write changes its target.
type Op int

const (
	OpSet Op = iota
	OpAdd
)

func (o Op) String() string {
	if o == OpAdd {
		return "add"
	}
	return "set"
}

// BatchRegister is the Target of writes to the batch index.
const BatchRegister = "Batch"

// Write is one side effect the host applies to its synced state. Word is the
// frame-local word index, or -1 for the batch register.
type Write struct {
	Target string
	Word   int
	Op     Op
	Value  float64
}

func (w Write) String() string {
	return fmt.Sprintf("%s %s %g", w.Target, w.Op, w.Value)
}

// Codec owns the channels and words of one frame. It is driven one tick at a
// time by a single session and is not safe for concurrent use.
type Codec struct {
	frame    page.Frame
	prefix   string
	channels []*Channel
	words    []Accumulator
}

func New(frame page.Frame, prefix string) *Codec {
	n := frame.ChannelCount()
	c := &Codec{
		frame:    frame,
		prefix:   prefix,
		channels: make([]*Channel, n),
		words:    make([]Accumulator, frame.WordCount()),
	}
	for i := range c.channels {
		c.channels[i] = NewChannel(i)
	}
	return c
}

func (c *Codec) Frame() page.Frame     { return c.frame }
func (c *Codec) ChannelCount() int     { return len(c.channels) }
func (c *Codec) WordCount() int        { return len(c.words) }
func (c *Codec) BatchCount() int       { return BatchCount(len(c.channels)) }
func (c *Codec) WordName(w int) string { return c.frame.WordName(c.prefix, w) }

// Channel returns channel i.
func (c *Codec) Channel(i int) (*Channel, error) {
	if i < 0 || i >= len(c.channels) {
		return nil, ErrChannelRange
	}
	return c.channels[i], nil
}

// Restart puts every channel back into its transfer state. Words are left to
// the sequencer's reset plan.
func (c *Codec) Restart() {
	for _, ch := range c.channels {
		ch.Reset()
	}
}

// ResetWord zeroes word w and returns the write that mirrors it on the host.
func (c *Codec) ResetWord(w int) (Write, error) {
	if w < 0 || w >= len(c.words) {
		return Write{}, ErrChannelRange
	}
	c.words[w].Reset()
	return Write{Target: c.WordName(w), Word: w, Op: OpSet, Value: 0}, nil
}

// Step advances every channel by one tick and returns the add writes for the
// bits resolved as write decisions, plus every resolved step.
func (c *Codec) Step(motion [LaneCount]float64, batch int) ([]Write, []TransmissionStep, error) {
	var (
		writes []Write
		steps  []TransmissionStep
	)
	for _, ch := range c.channels {
		w := ch.Index() / 2
		step, ok, err := ch.Step(motion, batch, &c.words[w])
		if err != nil {
			return writes, steps, fmt.Errorf("channel %d: %w", ch.Index(), err)
		}
		if !ok {
			continue
		}
		steps = append(steps, step)
		if step.Decision == DecisionWrite {
			writes = append(writes, Write{
				Target: c.WordName(w),
				Word:   w,
				Op:     OpAdd,
				Value:  Contribution(ch.Index(), step.BitPosition),
			})
		}
	}
	return writes, steps, nil
}

// Finished reports whether every channel resolved its byte.
func (c *Codec) Finished() bool {
	for _, ch := range c.channels {
		if !ch.Finished() {
			return false
		}
	}
	return true
}

// WordFinished reports whether both channels of word w are finished. The
// last word of an odd channel count has only its low channel.
func (c *Codec) WordFinished(w int) bool {
	if w < 0 || w >= len(c.words) {
		return false
	}
	for i := 2 * w; i < 2*w+2 && i < len(c.channels); i++ {
		if !c.channels[i].Finished() {
			return false
		}
	}
	return true
}

// Word is the current value of word w.
func (c *Codec) Word(w int) (float64, error) {
	if w < 0 || w >= len(c.words) {
		return 0, ErrChannelRange
	}
	return c.words[w].Value(), nil
}

// Decode returns the high and low byte of word w. It fails with
// ErrDecodeNotReady until the word's channels are finished.
func (c *Codec) Decode(w int) (high, low byte, err error) {
	if w < 0 || w >= len(c.words) {
		return 0, 0, ErrChannelRange
	}
	if !c.WordFinished(w) {
		return 0, 0, fmt.Errorf("word %d: %w", w, ErrDecodeNotReady)
	}
	high, low = c.words[w].Bytes()
	return high, low, nil
}

// Bytes returns the frame's channel bytes once every channel is finished.
func (c *Codec) Bytes() ([]byte, error) {
	out := make([]byte, len(c.channels))
	for w := range c.words {
		high, low, err := c.Decode(w)
		if err != nil {
			return nil, err
		}
		out[2*w] = low
		if 2*w+1 < len(out) {
			out[2*w+1] = high
		}
	}
	return out, nil
}
