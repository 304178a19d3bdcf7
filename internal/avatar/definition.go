package avatar

import (
	"github.com/danmuck/savestate/internal/identity"
	"github.com/danmuck/savestate/internal/layout"
	"github.com/danmuck/savestate/internal/page"
	"github.com/google/uuid"
)

// Definition describes one carrier. Legacy definitions keep the parameter
// prefix and key coordinate they were written with; current ones use the
// default prefix and derive the coordinate from EncryptionKey.
type Definition struct {
	Name          string
	Blueprint     string
	EncryptionKey string
	IsLegacy      bool
	ParameterName string
	KeyCoordinate identity.Coordinate
	Slots         []layout.VariableSlot
	BitCount      int
}

// New plans vars into a fresh definition with a random encryption key.
func New(name string, vars []layout.Variable) (Definition, []error) {
	slots, issues := layout.Plan(vars)
	d := Definition{
		Name:          name,
		EncryptionKey: uuid.NewString(),
		ParameterName: page.DefaultParameterName,
		Slots:         slots,
	}
	d.Refresh()
	return d, issues
}

// Refresh recomputes BitCount from Slots.
func (d *Definition) Refresh() {
	d.BitCount = layout.BitSum(d.Slots)
}

// Parameter is the prefix of the carrier's word parameters.
func (d Definition) Parameter() string {
	if d.IsLegacy && d.ParameterName != "" {
		return d.ParameterName
	}
	return page.DefaultParameterName
}

// Coordinate is the key coordinate receivers match the carrier by.
func (d Definition) Coordinate() identity.Coordinate {
	if d.IsLegacy {
		return d.KeyCoordinate
	}
	return identity.FromSeed(d.EncryptionKey)
}

// Pack packs the definition's slots into pages.
func (d Definition) Pack() (page.Result, error) {
	return page.DefaultPacker().Pack(d.Slots)
}

// ParameterCount is the number of word parameters the carrier exposes.
func (d Definition) ParameterCount() int {
	return (d.BitCount + page.BitsPerWord - 1) / page.BitsPerWord
}

// WordNames lists the word parameters of every packed frame in order.
func WordNames(frames []page.Frame, prefix string) []string {
	var out []string
	for _, f := range frames {
		for w := 0; w < f.WordCount(); w++ {
			out = append(out, f.WordName(prefix, w))
		}
	}
	return out
}
