package session

import (
	"fmt"

	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/page"
	"github.com/danmuck/savestate/internal/sequencer"
	"github.com/rs/zerolog/log"
)

// Signal is what the host observes on one tick.
type Signal struct {
	Motion  [codec.LaneCount]float64
	Context sequencer.Context
}

// Receiver reassembles frames from signals. It is driven by a single tick
// source and is not safe for concurrent use.
type Receiver struct {
	prefix  string
	frames  []page.Frame
	codecs  []*codec.Codec
	current int
	seq     *sequencer.Sequencer
}

func NewReceiver(frames []page.Frame, prefix string) *Receiver {
	r := &Receiver{
		prefix: prefix,
		frames: frames,
		codecs: make([]*codec.Codec, len(frames)),
	}
	for i, f := range frames {
		r.codecs[i] = codec.New(f, prefix)
	}
	if len(frames) > 0 {
		r.seq = sequencer.New(frames[0], prefix)
	}
	return r
}

// Current is the index of the frame the receiver is collecting.
func (r *Receiver) Current() int { return r.current }

// State is the sequencer state of the current frame's session.
func (r *Receiver) State() sequencer.State {
	if r.seq == nil {
		return sequencer.Default
	}
	return r.seq.State()
}

// Select switches to frame p and starts a new session for it.
func (r *Receiver) Select(p int) error {
	if p < 0 || p >= len(r.frames) {
		return fmt.Errorf("session: select frame %d of %d: %w", p, len(r.frames), codec.ErrChannelRange)
	}
	r.current = p
	r.seq = sequencer.New(r.frames[p], r.prefix)
	r.codecs[p].Restart()
	log.Debug().Int("frame", p).Int("batches", r.seq.Batches()).Msg("frame selected")
	return nil
}

// Restart abandons any partial transfer of the current frame.
func (r *Receiver) Restart() {
	if r.seq == nil {
		return
	}
	r.seq.Reset()
	r.codecs[r.current].Restart()
}

// OnTick consumes one signal and returns the writes for the host: the
// sequencer's sets first, then the codec's adds. A page-select motion is
// honoured only between sessions, in Default or after the terminal batch.
func (r *Receiver) OnTick(sig Signal) ([]codec.Write, error) {
	if r.seq == nil {
		return nil, nil
	}
	idle := r.seq.State() == sequencer.Default || r.seq.Terminal()
	if p, ok := sequencer.PageFromMotion(sig.Motion[1]); ok && idle && p < len(r.frames) {
		if p != r.current || r.seq.Terminal() {
			if err := r.Select(p); err != nil {
				return nil, err
			}
		}
	}

	c := r.codecs[r.current]
	writes := r.seq.Step(sequencer.Input{Motion: sig.Motion[0], CaptureActive: sig.Context.Active()})
	for _, w := range writes {
		if w.Word < 0 {
			continue
		}
		if _, err := c.ResetWord(w.Word); err != nil {
			return nil, fmt.Errorf("session: reset %s: %w", w.Target, err)
		}
	}
	adds, _, err := c.Step(sig.Motion, r.seq.Batch())
	if err != nil {
		return nil, fmt.Errorf("session: frame %d: %w", r.current, err)
	}
	return append(writes, adds...), nil
}

// Done reports whether frame p has been fully received.
func (r *Receiver) Done(p int) bool {
	if p < 0 || p >= len(r.codecs) {
		return false
	}
	return r.codecs[p].Finished()
}

// Bytes returns the received channel bytes of frame p.
func (r *Receiver) Bytes(p int) ([]byte, error) {
	if p < 0 || p >= len(r.codecs) {
		return nil, codec.ErrChannelRange
	}
	return r.codecs[p].Bytes()
}
