package migrate

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/savestate/internal/avatar"
	"github.com/danmuck/savestate/internal/identity"
	"github.com/danmuck/savestate/internal/layout"
	"github.com/danmuck/savestate/internal/page"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LegacyCoordinateScale is the factor legacy records stored key coordinates at.
const LegacyCoordinateScale = 50

var ErrNoInstructions = errors.New("migrate: no instructions")

// Instruction is one legacy (name, kind) declaration.
type Instruction struct {
	Name string
	Kind layout.Kind
}

// Preferences are the legacy record's global settings.
type Preferences struct {
	Parameter string
	Seed      string
}

// LegacyState is what the legacy record knew about its carriers, by index.
// KeyCoords are stored at LegacyCoordinateScale.
type LegacyState struct {
	AvatarIDs []string
	KeyCoords []identity.Coordinate
}

// Result is the outcome of one migration. Issues lists every instruction
// that was skipped or dropped.
type Result struct {
	Definitions []avatar.Definition
	Issues      []error
}

// SplitInstructions groups instructions into 256-bit carriers. Flags go last.
// An instruction that does not fit the open group is dropped and the group
// keeps filling with the instructions after it; a group closes only when it
// reaches exactly 256 bits or the input ends.
func SplitInstructions(instructions []Instruction) ([][]layout.VariableSlot, []error) {
	vars := make([]layout.Variable, len(instructions))
	for i, in := range instructions {
		vars[i] = layout.Variable{Name: in.Name, Kind: in.Kind}
	}
	slots, issues := layout.Plan(vars)

	var (
		groups [][]layout.VariableSlot
		open   []layout.VariableSlot
		used   int
	)
	for _, s := range page.Reorder(slots) {
		if used+s.BitWidth > page.BitsPerPage {
			o := page.Overflow{Slot: s, Frame: len(groups), Reason: "instruction overlaps carrier boundary"}
			log.Warn().Str("slot", s.Name).Stringer("kind", s.Kind).Int("bits", s.BitWidth).Int("frame", o.Frame).Msg(o.Reason)
			issues = append(issues, o)
			continue
		}
		open = append(open, s)
		used += s.BitWidth
		if used == page.BitsPerPage {
			groups = append(groups, open)
			open, used = nil, 0
		}
	}
	if len(open) > 0 {
		groups = append(groups, open)
	}
	return groups, issues
}

// Migrate builds one definition per instruction group. The first group keeps
// prefs.Seed as its key. Later groups were keyed by continuing the first
// group's generator and are marked legacy; so is every group when the legacy
// prefix differs from the default. Legacy groups take their coordinate from
// state.KeyCoords when present.
func Migrate(prefs Preferences, state LegacyState, instructions []Instruction) (Result, error) {
	if len(instructions) == 0 {
		return Result{}, ErrNoInstructions
	}
	groups, issues := SplitInstructions(instructions)
	legacyParameter := prefs.Parameter != "" && prefs.Parameter != page.DefaultParameterName
	chain := identity.Chain(prefs.Seed, len(groups))

	out := Result{Definitions: make([]avatar.Definition, 0, len(groups)), Issues: issues}
	for i, slots := range groups {
		legacyCoordinate := i > 0
		d := avatar.Definition{
			Name:          fmt.Sprintf("carrier_%d", i),
			IsLegacy:      legacyParameter || legacyCoordinate,
			ParameterName: page.DefaultParameterName,
			Slots:         slots,
		}
		if i < len(state.AvatarIDs) {
			d.Blueprint = state.AvatarIDs[i]
		}
		if legacyParameter {
			d.ParameterName = prefs.Parameter
		}
		if legacyCoordinate {
			d.EncryptionKey = uuid.NewString()
		} else {
			d.EncryptionKey = prefs.Seed
		}
		if d.IsLegacy {
			d.KeyCoordinate = chain[i]
			if i < len(state.KeyCoords) {
				d.KeyCoordinate = state.KeyCoords[i].Scale(1.0 / LegacyCoordinateScale)
			}
		}
		d.Refresh()
		log.Debug().Int("carrier", i).Int("bits", d.BitCount).Bool("legacy", d.IsLegacy).Str("parameter", d.Parameter()).Msg("migrated carrier")
		out.Definitions = append(out.Definitions, d)
	}
	return out, nil
}

type legacyFile struct {
	Preferences struct {
		Parameter string `toml:"parameter"`
		Seed      string `toml:"seed"`
	} `toml:"preferences"`
	Legacy struct {
		AvatarIDs []string    `toml:"avatar_ids"`
		KeyCoords [][]float64 `toml:"key_coords"`
	} `toml:"legacy"`
	Instructions []struct {
		Name string `toml:"name"`
		Kind string `toml:"kind"`
	} `toml:"instruction"`
}

// LoadFile reads a legacy record exported as TOML.
func LoadFile(path string) (Preferences, LegacyState, []Instruction, error) {
	var raw legacyFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Preferences{}, LegacyState{}, nil, fmt.Errorf("load legacy record: %w", err)
	}
	prefs := Preferences{Parameter: raw.Preferences.Parameter, Seed: raw.Preferences.Seed}
	state := LegacyState{AvatarIDs: raw.Legacy.AvatarIDs}
	for i, c := range raw.Legacy.KeyCoords {
		if len(c) != 3 {
			return Preferences{}, LegacyState{}, nil, fmt.Errorf("load legacy record: key_coords[%d] has %d components", i, len(c))
		}
		state.KeyCoords = append(state.KeyCoords, identity.Coordinate{float32(c[0]), float32(c[1]), float32(c[2])})
	}
	instructions := make([]Instruction, 0, len(raw.Instructions))
	for _, in := range raw.Instructions {
		v := avatar.ParseVariable(in.Name, in.Kind)
		instructions = append(instructions, Instruction{Name: v.Name, Kind: v.Kind})
	}
	return prefs, state, instructions, nil
}
