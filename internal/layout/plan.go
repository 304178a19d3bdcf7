package layout

import (
	"github.com/rs/zerolog/log"
)

// Variable is one declared (name, kind) pair from a declaration source.
type Variable struct {
	Name string
	Kind Kind
}

// VariableSlot is a planned variable with its bit width fixed by Kind.
type VariableSlot struct {
	Name     string
	Kind     Kind
	BitWidth int
}

// IsFlag reports whether the slot is a single bit. Flags are packed last.
func (s VariableSlot) IsFlag() bool {
	return s.BitWidth == 1
}

// NewSlot builds the slot for one variable.
func NewSlot(name string, kind Kind) (VariableSlot, error) {
	if !kind.Supported() {
		return VariableSlot{}, KindError{Name: name, Kind: kind}
	}
	return VariableSlot{Name: name, Kind: kind, BitWidth: kind.Bits()}, nil
}

// Plan maps variables to slots in input order. Variables with an unsupported
// kind are skipped and reported; the rest are still planned.
func Plan(vars []Variable) ([]VariableSlot, []error) {
	slots := make([]VariableSlot, 0, len(vars))
	var issues []error
	for i, v := range vars {
		if !v.Kind.Supported() {
			issue := KindError{Index: i, Name: v.Name, Kind: v.Kind}
			log.Warn().Str("variable", v.Name).Int("index", i).Stringer("kind", v.Kind).Msg("skipping unsupported variable kind")
			issues = append(issues, issue)
			continue
		}
		slots = append(slots, VariableSlot{Name: v.Name, Kind: v.Kind, BitWidth: v.Kind.Bits()})
	}
	return slots, issues
}

// BitSum is the total width of slots.
func BitSum(slots []VariableSlot) int {
	total := 0
	for _, s := range slots {
		total += s.BitWidth
	}
	return total
}
