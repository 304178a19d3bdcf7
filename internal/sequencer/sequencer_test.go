package sequencer

import (
	"testing"

	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/page"
	"github.com/danmuck/savestate/internal/testutil/testlog"
	"github.com/google/go-cmp/cmp"
)

const (
	high = codec.ClockThreshold * 1.5
	low  = codec.ClockThreshold * 0.5
)

func fullFrame() page.Frame {
	return page.Frame{Index: 0, BitCount: page.BitsPerPage, CapacityBits: page.BitsPerPage}
}

func TestSequencerVisitsEveryBatchOnce(t *testing.T) {
	testlog.Start(t)

	s := New(fullFrame(), "parameter")
	if s.Batches() != 11 {
		t.Fatalf("expected 11 batches for 32 channels, got %d", s.Batches())
	}
	var visited []int
	for tick := 0; tick < 40; tick++ {
		motion := high
		if tick%2 == 1 {
			motion = low
		}
		before := s.Batch()
		writes := s.OnTick(motion, true)
		if len(writes) == 0 {
			if !s.Terminal() {
				t.Fatalf("tick %d: stalled in %v", tick, s.State())
			}
			continue
		}
		if s.Batch() != before+1 {
			t.Fatalf("tick %d: jumped from %d to %d", tick, before, s.Batch())
		}
		visited = append(visited, s.Batch())
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("visited (-want +got):\n%s", diff)
	}
	if !s.Terminal() {
		t.Fatalf("expected terminal state")
	}
}

func TestSequencerHoldsOnSameSideMotion(t *testing.T) {
	s := New(fullFrame(), "parameter")
	s.OnTick(high, true)
	for i := 0; i < 5; i++ {
		if w := s.OnTick(high, true); w != nil {
			t.Fatalf("repeated rising sample advanced to %v", s.State())
		}
	}
	if s.Batch() != 1 {
		t.Fatalf("expected Batch 1, got %v", s.State())
	}
	s.OnTick(low, true)
	if s.Batch() != 2 {
		t.Fatalf("expected Batch 2, got %v", s.State())
	}
}

func TestSequencerRequiresCaptureContext(t *testing.T) {
	s := New(fullFrame(), "parameter")
	if w := s.OnTick(high, false); w != nil || s.State() != Default {
		t.Fatalf("left Default without capture context")
	}
	if w := s.OnTick(low, true); w != nil || s.State() != Default {
		t.Fatalf("left Default on a falling sample")
	}
	s.OnTick(high, true)
	if s.Batch() != 1 {
		t.Fatalf("expected Batch 1")
	}
	s.OnTick(low, false)
	if s.Batch() != 2 {
		t.Fatalf("capture context gates only the first batch")
	}
}

func TestSequencerEntryWrites(t *testing.T) {
	frame := page.Frame{Index: 1, BitCount: 48, CapacityBits: page.BitsPerPage}
	s := New(frame, "p")
	got := s.OnTick(high, true)
	want := []codec.Write{
		{Target: codec.BatchRegister, Word: -1, Op: codec.OpSet, Value: 1},
		{Target: "p_16", Word: 0, Op: codec.OpSet, Value: 0},
		{Target: "p_17", Word: 1, Op: codec.OpSet, Value: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch 1 writes (-want +got):\n%s", diff)
	}
	got = s.OnTick(low, true)
	want = []codec.Write{
		{Target: codec.BatchRegister, Word: -1, Op: codec.OpSet, Value: 2},
		{Target: "p_18", Word: 2, Op: codec.OpSet, Value: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch 2 writes (-want +got):\n%s", diff)
	}
	if !s.Terminal() {
		t.Fatalf("6 channels need 2 batches")
	}
	s.Reset()
	if s.State() != Default {
		t.Fatalf("reset did not return to Default")
	}
}

func TestResetPlanCoversLatchedWords(t *testing.T) {
	for channels := 1; channels <= 32; channels++ {
		batches := codec.BatchCount(channels)
		words := (channels + 1) / 2
		plan := ResetPlan(batches, words)
		reset := map[int]int{}
		for k, ws := range plan {
			for _, w := range ws {
				if _, dup := reset[w]; dup {
					t.Fatalf("channels=%d: word %d reset twice", channels, w)
				}
				reset[w] = k + 1
			}
		}
		for c := 0; c < channels; c++ {
			k, ok := reset[c/2]
			if !ok {
				t.Fatalf("channels=%d: word %d never reset", channels, c/2)
			}
			if k > codec.BatchOf(c) {
				t.Fatalf("channels=%d: word %d reset in batch %d after channel %d latched in %d", channels, c/2, k, c, codec.BatchOf(c))
			}
		}
	}
}

func TestEmptyFrameNeverAdvances(t *testing.T) {
	s := New(page.Frame{CapacityBits: page.BitsPerPage}, "p")
	if w := s.OnTick(high, true); w != nil {
		t.Fatalf("empty frame advanced")
	}
	if s.Terminal() {
		t.Fatalf("empty frame has no terminal batch")
	}
}

func TestContextActive(t *testing.T) {
	if !(Context{InStation: true}).Active() {
		t.Fatalf("in station, not seated should be active")
	}
	if (Context{InStation: true, Seated: true}).Active() {
		t.Fatalf("seated should not be active")
	}
	if (Context{}).Active() {
		t.Fatalf("outside station should not be active")
	}
}

func TestPageSelect(t *testing.T) {
	for _, p := range []int{0, 1, 7, 255} {
		lower, upper := PageBand(p)
		y := PageSample(p)
		if !(y > lower && y < upper) {
			t.Fatalf("page %d sample %v outside (%v,%v)", p, y, lower, upper)
		}
		got, ok := PageFromMotion(y)
		if !ok || got != p {
			t.Fatalf("page %d resolved to %d,%v", p, got, ok)
		}
	}
	if _, ok := PageFromMotion(0.01); ok {
		t.Fatalf("positive motion must not select a page")
	}
	lower, _ := PageBand(3)
	if _, ok := PageFromMotion(lower); ok {
		t.Fatalf("band edge must not select a page")
	}
}
