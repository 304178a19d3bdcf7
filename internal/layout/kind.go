package layout

import (
	"fmt"
	"strings"
)

// Kind is the declared type of a stored variable.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindByte
	KindSByte
	KindChar
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindVector2
	KindVector3
	KindVector4
	KindQuaternion
	KindColor
	KindColor32
)

type kindInfo struct {
	name string
	bits int
}

// kindTable is shared by encoder and decoder; changing a width breaks every
// layout already written to a carrier.
var kindTable = map[Kind]kindInfo{
	KindBool:       {"bool", 1},
	KindByte:       {"byte", 8},
	KindSByte:      {"sbyte", 8},
	KindChar:       {"char", 16},
	KindShort:      {"short", 16},
	KindUShort:     {"ushort", 16},
	KindInt:        {"int", 32},
	KindUInt:       {"uint", 32},
	KindLong:       {"long", 64},
	KindULong:      {"ulong", 64},
	KindFloat:      {"float", 32},
	KindDouble:     {"double", 64},
	KindVector2:    {"vector2", 2 * 32},
	KindVector3:    {"vector3", 3 * 32},
	KindVector4:    {"vector4", 4 * 32},
	KindQuaternion: {"quaternion", 4 * 32},
	KindColor:      {"color", 4 * 32},
	KindColor32:    {"color32", 4 * 8},
}

// Bits returns the width of k, or 0 when k is not in the table.
func (k Kind) Bits() int {
	return kindTable[k].bits
}

// Supported reports whether k has a width.
func (k Kind) Supported() bool {
	_, ok := kindTable[k]
	return ok
}

func (k Kind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name. Matching ignores case and surrounding space.
func ParseKind(raw string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for k, info := range kindTable {
		if info.name == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedVariableKind, raw)
}
