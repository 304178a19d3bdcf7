package page

import (
	"github.com/danmuck/savestate/internal/layout"
	"github.com/rs/zerolog/log"
)

// Result is a packing pass: the sealed frames plus every slot that was dropped.
type Result struct {
	Frames   []Frame
	Overflow []Overflow
}

// BitCount is the number of bits placed in frames.
func (r Result) BitCount() int {
	total := 0
	for _, f := range r.Frames {
		total += f.BitCount
	}
	return total
}

// Issues returns the overflow reports as errors.
func (r Result) Issues() []error {
	if len(r.Overflow) == 0 {
		return nil
	}
	out := make([]error, len(r.Overflow))
	for i, o := range r.Overflow {
		out[i] = o
	}
	return out
}

// Packer fills frames first-fit in reordered slot order.
// MaxFrames <= 0 means unbounded.
type Packer struct {
	CapacityBits int
	MaxFrames    int
}

// DefaultPacker packs whole pages of one carrier definition.
func DefaultPacker() Packer {
	return Packer{CapacityBits: BitsPerPage, MaxFrames: MaxPageCount}
}

// Pack is Packer{CapacityBits: capacityBits}.Pack(slots).
func Pack(slots []layout.VariableSlot, capacityBits int) (Result, error) {
	return Packer{CapacityBits: capacityBits}.Pack(slots)
}

// Pack reorders slots with Reorder and fills frames greedily. A slot that
// would push the open frame past capacity is dropped and the open frame is
// sealed; the slot is not retried in the next frame. A frame filled exactly
// to capacity is sealed immediately.
func (p Packer) Pack(slots []layout.VariableSlot) (Result, error) {
	if p.CapacityBits <= 0 {
		return Result{}, ErrInvalidCapacity
	}

	var (
		res  Result
		open *Frame
	)
	seal := func() {
		if open == nil {
			return
		}
		res.Frames = append(res.Frames, *open)
		open = nil
	}
	drop := func(s layout.VariableSlot, reason string) {
		o := Overflow{Slot: s, Frame: len(res.Frames), Reason: reason}
		log.Warn().Str("slot", s.Name).Stringer("kind", s.Kind).Int("bits", s.BitWidth).Int("frame", o.Frame).Msg(reason)
		res.Overflow = append(res.Overflow, o)
	}

	for _, s := range Reorder(slots) {
		if open == nil && p.MaxFrames > 0 && len(res.Frames) >= p.MaxFrames {
			drop(s, "frame limit reached")
			continue
		}
		used := 0
		if open != nil {
			used = open.BitCount
		}
		if used+s.BitWidth > p.CapacityBits {
			drop(s, "slot exceeds remaining frame capacity")
			seal()
			continue
		}
		if open == nil {
			open = &Frame{Index: len(res.Frames), CapacityBits: p.CapacityBits}
		}
		open.Slots = append(open.Slots, s)
		open.BitCount += s.BitWidth
		if open.BitCount == p.CapacityBits {
			seal()
		}
	}
	seal()
	return res, nil
}

// Reorder moves single-bit slots behind all wider slots, keeping the
// relative order inside both groups.
func Reorder(slots []layout.VariableSlot) []layout.VariableSlot {
	out := make([]layout.VariableSlot, 0, len(slots))
	var flags []layout.VariableSlot
	for _, s := range slots {
		if s.IsFlag() {
			flags = append(flags, s)
			continue
		}
		out = append(out, s)
	}
	return append(out, flags...)
}
