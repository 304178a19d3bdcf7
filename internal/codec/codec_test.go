package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/danmuck/savestate/internal/page"
	"github.com/google/go-cmp/cmp"
)

func TestDecompose176(t *testing.T) {
	got := Decompose(0b10110000)
	want := [StepsPerChannel]Decision{DecisionWrite, DecisionIgnore, DecisionWrite, DecisionWrite, DecisionIgnore, DecisionIgnore, DecisionIgnore, DecisionIgnore}
	if got != want {
		t.Fatalf("decompose 176: got %v want %v", got, want)
	}
}

// runChannel feeds one latched sample through a channel and returns the steps.
func runChannel(t *testing.T, ch *Channel, motion [LaneCount]float64, acc *Accumulator) []TransmissionStep {
	t.Helper()
	if _, ok, err := ch.Step(motion, BatchOf(ch.Index()), acc); ok || err != nil {
		t.Fatalf("transfer tick resolved a bit or failed: %v", err)
	}
	var steps []TransmissionStep
	for !ch.Finished() {
		step, ok, err := ch.Step([LaneCount]float64{}, 0, acc)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if !ok {
			t.Fatalf("bit state tick resolved nothing")
		}
		steps = append(steps, step)
	}
	return steps
}

func TestChannelWrites176(t *testing.T) {
	ch := NewChannel(1)
	var acc Accumulator
	var motion [LaneCount]float64
	motion[Lane(1)] = LaneSample(176, IsControlLane(1))

	steps := runChannel(t, ch, motion, &acc)
	if len(steps) != StepsPerChannel {
		t.Fatalf("expected 8 steps, got %d", len(steps))
	}
	var writes []int
	for _, s := range steps {
		if s.Threshold != Threshold(s.BitPosition) {
			t.Fatalf("step %d threshold %g", s.BitPosition, s.Threshold)
		}
		if s.Decision == DecisionWrite {
			writes = append(writes, s.BitPosition)
		}
	}
	if diff := cmp.Diff([]int{0, 2, 3}, writes); diff != "" {
		t.Fatalf("write positions (-want +got):\n%s", diff)
	}
	if acc.Value() != 176.0/256 {
		t.Fatalf("accumulator %v, want %v", acc.Value(), 176.0/256)
	}
	if ch.Value() != 176 {
		t.Fatalf("channel value %d", ch.Value())
	}
}

func TestChannelRoundTripAllBytes(t *testing.T) {
	for _, index := range []int{0, 1, 2, 3, 4, 5, 6, 7} {
		for v := 0; v < 256; v++ {
			ch := NewChannel(index)
			var acc Accumulator
			var motion [LaneCount]float64
			motion[Lane(index)] = LaneSample(byte(v), IsControlLane(index))
			steps := runChannel(t, ch, motion, &acc)

			for p, d := range Decompose(byte(v)) {
				if steps[p].Decision != d {
					t.Fatalf("channel %d v=%d bit %d: got %v want %v", index, v, p, steps[p].Decision, d)
				}
			}
			high, low := acc.Bytes()
			got := high
			if ByteOffset(index) == 8 {
				got = low
				if high != 0 {
					t.Fatalf("low channel leaked into high byte: %d", high)
				}
			}
			if got != byte(v) {
				t.Fatalf("channel %d: decoded %d want %d", index, got, v)
			}
		}
	}
}

func TestChannelToleratesCarrierNoise(t *testing.T) {
	noise := []float64{-0.45, -0.2, 0, 0.2, 0.45}
	for v := 0; v < 256; v++ {
		for _, n := range noise {
			ch := NewChannel(0)
			var acc Accumulator
			var motion [LaneCount]float64
			motion[0] = LaneSample(byte(v), true) + n/256/TransferScale
			runChannel(t, ch, motion, &acc)
			if ch.Value() != byte(v) {
				t.Fatalf("v=%d noise=%v decoded %d", v, n, ch.Value())
			}
		}
	}
}

func TestChannelWaitsForItsBatch(t *testing.T) {
	ch := NewChannel(4)
	var acc Accumulator
	motion := [LaneCount]float64{0, LaneSample(9, false), 0}
	for batch := 0; batch < BatchOf(4); batch++ {
		if _, ok, _ := ch.Step(motion, batch, &acc); ok {
			t.Fatalf("resolved a bit before batch %d", BatchOf(4))
		}
		if ch.State() != StateTransfer {
			t.Fatalf("left transfer at batch %d", batch)
		}
	}
	motion[1] = LaneSample(200, false)
	ch.Step(motion, BatchOf(4), &acc)
	if ch.State() != StateBit {
		t.Fatalf("expected bit state, got %v", ch.State())
	}
	for !ch.Finished() {
		ch.Step(motion, BatchOf(4), &acc)
	}
	if ch.Value() != 200 {
		t.Fatalf("expected last latched sample, got %d", ch.Value())
	}
}

func TestTransferRanges(t *testing.T) {
	if Transfer(0, 0) != -1 || Transfer(0, 1) != 31 {
		t.Fatalf("control lane range: %v..%v", Transfer(0, 0), Transfer(0, 1))
	}
	if Transfer(6, 1) != 31 {
		t.Fatalf("channel 6 is a control lane")
	}
	for _, c := range []int{1, 2, 3, 4, 5, 7} {
		if Transfer(c, 0) != 0 || Transfer(c, 1) != 32 {
			t.Fatalf("channel %d range: %v..%v", c, Transfer(c, 0), Transfer(c, 1))
		}
	}
	if LaneSample(0, true) <= ClockThreshold {
		t.Fatalf("zero byte on a control lane must stay above the clock threshold")
	}
	if LaneSample(255, false) >= ClockThreshold {
		t.Fatalf("data-only lane must stay below the clock threshold")
	}
}

func TestAccumulatorApplyBit(t *testing.T) {
	var acc Accumulator
	if err := acc.ApplyBit(0, 0); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := acc.ApplyBit(7, 8); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if acc.Units() != 0x8001 {
		t.Fatalf("units %#x", acc.Units())
	}
	if !errors.Is(acc.ApplyBit(8, 0), ErrBitRange) {
		t.Fatalf("expected ErrBitRange for position 8")
	}
	if !errors.Is(acc.ApplyBit(0, 4), ErrBitRange) {
		t.Fatalf("expected ErrBitRange for offset 4")
	}
	acc.Reset()
	if acc.Value() != 0 {
		t.Fatalf("reset left %v", acc.Value())
	}
}

func TestDecodeWord(t *testing.T) {
	cases := []struct {
		word      float64
		high, low byte
	}{
		{0, 0, 0},
		{176.0 / 256, 176, 0},
		{(0xAB*256 + 0xCD) / 65536.0, 0xAB, 0xCD},
		{(0x12*256+0x34)/65536.0 + 0.3/65536, 0x12, 0x34},
		{0.999999, 0xFF, 0xFF},
		{-0.5, 0, 0},
		{math.NaN(), 0, 0},
	}
	for _, tc := range cases {
		high, low := DecodeWord(tc.word)
		if high != tc.high || low != tc.low {
			t.Fatalf("DecodeWord(%v) = %#x,%#x want %#x,%#x", tc.word, high, low, tc.high, tc.low)
		}
	}
}

func transmit(t *testing.T, c *Codec, data []byte) []Write {
	t.Helper()
	var writes []Write
	for batch := 1; batch <= c.BatchCount(); batch++ {
		w, _, err := c.Step(BatchMotion(data, batch), batch)
		if err != nil {
			t.Fatalf("batch %d: %v", batch, err)
		}
		writes = append(writes, w...)
	}
	last := BatchMotion(data, c.BatchCount())
	for i := 0; i < StepsPerChannel+1 && !c.Finished(); i++ {
		w, _, err := c.Step(last, c.BatchCount())
		if err != nil {
			t.Fatalf("drain: %v", err)
		}
		writes = append(writes, w...)
	}
	return writes
}

func TestCodecFrameRoundTrip(t *testing.T) {
	frame := page.Frame{Index: 1, BitCount: 7*8 + 3, CapacityBits: page.BitsPerPage}
	data := []byte{0x00, 0xFF, 0x80, 0x01, 0x5A, 0xA5, 0x3C, 0x07}
	c := New(frame, "parameter")
	if c.ChannelCount() != len(data) || c.WordCount() != 4 || c.BatchCount() != 3 {
		t.Fatalf("shape: channels=%d words=%d batches=%d", c.ChannelCount(), c.WordCount(), c.BatchCount())
	}
	if _, _, err := c.Decode(0); !errors.Is(err, ErrDecodeNotReady) {
		t.Fatalf("expected ErrDecodeNotReady, got %v", err)
	}

	writes := transmit(t, c, data)
	if !c.Finished() {
		t.Fatalf("codec did not finish")
	}
	got, err := c.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Fatalf("bytes (-want +got):\n%s", diff)
	}

	host := map[string]float64{}
	for _, w := range writes {
		if w.Op != OpAdd {
			t.Fatalf("codec emitted non-add write %v", w)
		}
		host[w.Target] += w.Value
	}
	for w := 0; w < c.WordCount(); w++ {
		name := c.WordName(w)
		want, _ := c.Word(w)
		if host[name] != want {
			t.Fatalf("%s: host %v codec %v", name, host[name], want)
		}
		high, low := DecodeWord(host[name])
		if low != data[2*w] || high != data[2*w+1] {
			t.Fatalf("%s: host word decodes to %#x,%#x", name, high, low)
		}
	}
	if _, ok := host["parameter_16"]; !ok {
		t.Fatalf("expected frame 1 words to start at parameter_16, got %v", host)
	}
}

func TestCodecOddChannelCount(t *testing.T) {
	frame := page.Frame{BitCount: 17, CapacityBits: 32}
	data := []byte{1, 2, 3}
	c := New(frame, "p")
	transmit(t, c, data)
	got, err := c.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Fatalf("bytes (-want +got):\n%s", diff)
	}
}

func TestCodecResetWord(t *testing.T) {
	c := New(page.Frame{BitCount: 16, CapacityBits: 16}, "p")
	transmit(t, c, []byte{9, 9})
	w, err := c.ResetWord(0)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if w.Op != OpSet || w.Target != "p_0" || w.Value != 0 {
		t.Fatalf("unexpected reset write: %v", w)
	}
	if v, _ := c.Word(0); v != 0 {
		t.Fatalf("word not reset: %v", v)
	}
	if _, err := c.ResetWord(1); !errors.Is(err, ErrChannelRange) {
		t.Fatalf("expected ErrChannelRange, got %v", err)
	}
	c.Restart()
	if c.Finished() {
		t.Fatalf("restart must return channels to transfer")
	}
}

func TestCodecStepPairsDecisionsWithEffects(t *testing.T) {
	frame := page.Frame{Index: 0, BitCount: 8, CapacityBits: page.BitsPerPage}
	c := New(frame, "parameter")
	motion := BatchMotion([]byte{0b10100000}, 1)
	if _, _, err := c.Step(motion, 1); err != nil {
		t.Fatalf("latch: %v", err)
	}
	var effects []Write
	var decisions []string
	for !c.Finished() {
		writes, steps, err := c.Step(motion, 1)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		for _, s := range steps {
			decisions = append(decisions, s.Decision.String())
		}
		effects = append(effects, writes...)
	}
	wantDecisions := []string{"write", "ignore", "write", "ignore", "ignore", "ignore", "ignore", "ignore"}
	if diff := cmp.Diff(wantDecisions, decisions); diff != "" {
		t.Fatalf("decisions (-want +got):\n%s", diff)
	}
	want := []Write{
		{Target: "parameter_0", Word: 0, Op: OpAdd, Value: Contribution(0, 0)},
		{Target: "parameter_0", Word: 0, Op: OpAdd, Value: Contribution(0, 2)},
	}
	if diff := cmp.Diff(want, effects); diff != "" {
		t.Fatalf("effects (-want +got):\n%s", diff)
	}
}
