package sequencer

import (
	"fmt"

	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/page"
	"github.com/rs/zerolog/log"
)

// State is Default (0) or Batch k (k >= 1).
type State int

const Default State = 0

func (s State) String() string {
	if s == Default {
		return "Default"
	}
	return fmt.Sprintf("Batch %d", int(s))
}

// Context is the receiver's capture context.
type Context struct {
	InStation bool
	Seated    bool
}

// Active reports whether a session may start: in a station but not seated.
func (c Context) Active() bool {
	return c.InStation && !c.Seated
}

// Input is what the host observes on one tick.
type Input struct {
	Motion        float64
	CaptureActive bool
}

// Guard decides whether a transition fires for an input.
type Guard func(Input) bool

func rising(in Input) bool  { return in.Motion > codec.ClockThreshold }
func falling(in Input) bool { return in.Motion < codec.ClockThreshold }

func captureRising(in Input) bool { return in.CaptureActive && rising(in) }

type transition struct {
	to      State
	guard   Guard
	effects []codec.Write
}

// Sequencer walks the batches of one frame.
type Sequencer struct {
	batches int
	words   int
	state   State
	table   map[State]transition
}

// New builds the transition table for frame. Word writes are named under
// prefix.
func New(frame page.Frame, prefix string) *Sequencer {
	batches := codec.BatchCount(frame.ChannelCount())
	s := &Sequencer{
		batches: batches,
		words:   frame.WordCount(),
		table:   make(map[State]transition, batches),
	}
	plan := ResetPlan(batches, s.words)
	for k := 1; k <= batches; k++ {
		guard := falling
		switch {
		case k == 1:
			guard = captureRising
		case k%2 == 1:
			guard = rising
		}
		effects := []codec.Write{{Target: codec.BatchRegister, Word: -1, Op: codec.OpSet, Value: float64(k)}}
		for _, w := range plan[k-1] {
			effects = append(effects, codec.Write{Target: frame.WordName(prefix, w), Word: w, Op: codec.OpSet, Value: 0})
		}
		s.table[State(k-1)] = transition{to: State(k), guard: guard, effects: effects}
	}
	return s
}

func (s *Sequencer) State() State   { return s.state }
func (s *Sequencer) Batches() int   { return s.batches }
func (s *Sequencer) Batch() int     { return int(s.state) }
func (s *Sequencer) Terminal() bool { return s.batches > 0 && int(s.state) == s.batches }

// Reset returns to Default for a new session.
func (s *Sequencer) Reset() {
	s.state = Default
}

// Step applies at most one transition and returns the writes of the state
// entered, or nil when no guard fired.
func (s *Sequencer) Step(in Input) []codec.Write {
	t, ok := s.table[s.state]
	if !ok || !t.guard(in) {
		return nil
	}
	log.Debug().Stringer("from", s.state).Stringer("to", t.to).Float64("motion", in.Motion).Msg("batch transition")
	s.state = t.to
	out := make([]codec.Write, len(t.effects))
	copy(out, t.effects)
	return out
}

// OnTick is Step for a bare motion sample and capture flag.
func (s *Sequencer) OnTick(motion float64, captureActive bool) []codec.Write {
	return s.Step(Input{Motion: motion, CaptureActive: captureActive})
}

// ResetPlan lists, per batch, the words zeroed on entry: two words on odd
// batches and one on even batches, in ascending order, clamped to words.
func ResetPlan(batches, words int) [][]int {
	plan := make([][]int, batches)
	next := 0
	for k := 1; k <= batches; k++ {
		for i := 0; i < 1+k%2; i++ {
			if next < words {
				plan[k-1] = append(plan[k-1], next)
			}
			next++
		}
	}
	return plan
}
