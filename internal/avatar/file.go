package avatar

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/savestate/internal/identity"
	"github.com/danmuck/savestate/internal/layout"
	"github.com/danmuck/savestate/internal/payload"
)

type fileSlot struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
}

type fileCarrier struct {
	Name          string     `toml:"name"`
	Blueprint     string     `toml:"blueprint,omitempty"`
	EncryptionKey string     `toml:"encryption_key"`
	Legacy        bool       `toml:"legacy"`
	Parameter     string     `toml:"parameter,omitempty"`
	KeyCoordinate []float64  `toml:"key_coordinate,omitempty"`
	Slots         []fileSlot `toml:"slot"`
}

type layoutFile struct {
	Carriers []fileCarrier `toml:"carrier"`
}

type variablesFile struct {
	Variables []fileSlot `toml:"variable"`
}

type valuesFile struct {
	Values map[string]any `toml:"values"`
}

// ParseVariable resolves a declared kind name. Unknown kinds map to
// layout.KindInvalid so planning reports them alongside the others.
func ParseVariable(name, kind string) layout.Variable {
	k, _ := layout.ParseKind(kind)
	return layout.Variable{Name: strings.TrimSpace(name), Kind: k}
}

// LoadVariables reads an ordered [[variable]] declaration list.
func LoadVariables(path string) ([]layout.Variable, error) {
	var raw variablesFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load variables: %w", err)
	}
	out := make([]layout.Variable, 0, len(raw.Variables))
	for _, v := range raw.Variables {
		out = append(out, ParseVariable(v.Name, v.Kind))
	}
	return out, nil
}

// LoadValues reads the [values] table used to fill a carrier.
func LoadValues(path string) (payload.Values, error) {
	var raw valuesFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}
	return payload.Values(raw.Values), nil
}

// LoadFile reads carrier definitions. Slots with unknown kinds are skipped
// and returned as issues.
func LoadFile(path string) ([]Definition, []error, error) {
	var raw layoutFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, nil, fmt.Errorf("load layout: %w", err)
	}
	defs := make([]Definition, 0, len(raw.Carriers))
	var issues []error
	for _, c := range raw.Carriers {
		d, slotIssues := fromFile(c)
		for _, issue := range slotIssues {
			issues = append(issues, fmt.Errorf("carrier %q: %w", c.Name, issue))
		}
		defs = append(defs, d)
	}
	return defs, issues, nil
}

// WriteFile writes defs as an ordered record list.
func WriteFile(path string, defs []Definition) error {
	doc := layoutFile{Carriers: make([]fileCarrier, 0, len(defs))}
	for _, d := range defs {
		doc.Carriers = append(doc.Carriers, toFile(d))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("write layout: %w", err)
	}
	return f.Close()
}

func fromFile(c fileCarrier) (Definition, []error) {
	vars := make([]layout.Variable, 0, len(c.Slots))
	for _, s := range c.Slots {
		vars = append(vars, ParseVariable(s.Name, s.Kind))
	}
	slots, issues := layout.Plan(vars)
	d := Definition{
		Name:          strings.TrimSpace(c.Name),
		Blueprint:     strings.TrimSpace(c.Blueprint),
		EncryptionKey: strings.TrimSpace(c.EncryptionKey),
		IsLegacy:      c.Legacy,
		ParameterName: strings.TrimSpace(c.Parameter),
		Slots:         slots,
	}
	if len(c.KeyCoordinate) == 3 {
		d.KeyCoordinate = identity.Coordinate{float32(c.KeyCoordinate[0]), float32(c.KeyCoordinate[1]), float32(c.KeyCoordinate[2])}
	}
	d.Refresh()
	return d, issues
}

func toFile(d Definition) fileCarrier {
	c := fileCarrier{
		Name:          d.Name,
		Blueprint:     d.Blueprint,
		EncryptionKey: d.EncryptionKey,
		Legacy:        d.IsLegacy,
		Parameter:     d.ParameterName,
		Slots:         make([]fileSlot, 0, len(d.Slots)),
	}
	if d.IsLegacy {
		c.KeyCoordinate = []float64{float64(d.KeyCoordinate[0]), float64(d.KeyCoordinate[1]), float64(d.KeyCoordinate[2])}
	}
	for _, s := range d.Slots {
		c.Slots = append(c.Slots, fileSlot{Name: s.Name, Kind: s.Kind.String()})
	}
	return c
}
