package session

import (
	"sort"

	"github.com/danmuck/savestate/internal/codec"
)

// Host applies writes to named synced values the way a runtime would.
type Host struct {
	values map[string]float64
}

func NewHost() *Host {
	return &Host{values: make(map[string]float64)}
}

func (h *Host) Apply(writes []codec.Write) {
	for _, w := range writes {
		switch w.Op {
		case codec.OpAdd:
			h.values[w.Target] += w.Value
		default:
			h.values[w.Target] = w.Value
		}
	}
}

func (h *Host) Value(name string) float64 {
	return h.values[name]
}

// Names returns every written target, sorted.
func (h *Host) Names() []string {
	out := make([]string, 0, len(h.values))
	for name := range h.values {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
