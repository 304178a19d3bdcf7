package payload

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/danmuck/savestate/internal/layout"
)

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		i, ok := toInt64(v)
		if !ok || i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		i, ok := toInt64(v)
		return float64(i), ok
	}
}

func toFloats(v any, n int) ([]float32, bool) {
	var raw []any
	switch vec := v.(type) {
	case [2]float32:
		return vec[:], n == 2
	case [3]float32:
		return vec[:], n == 3
	case [4]float32:
		return vec[:], n == 4
	case []float32:
		return vec, len(vec) == n
	case []float64:
		for _, f := range vec {
			raw = append(raw, f)
		}
	case []any:
		raw = vec
	default:
		return nil, false
	}
	if len(raw) != n {
		return nil, false
	}
	out := make([]float32, n)
	for i, c := range raw {
		f, ok := toFloat64(c)
		if !ok {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

func toColor32(v any) ([]byte, bool) {
	switch c := v.(type) {
	case [4]uint8:
		return c[:], true
	case []uint8:
		return c, len(c) == 4
	case []any:
		if len(c) != 4 {
			return nil, false
		}
		out := make([]byte, 4)
		for i, x := range c {
			u, ok := toUint64(x)
			if !ok || u > math.MaxUint8 {
				return nil, false
			}
			out[i] = byte(u)
		}
		return out, true
	default:
		return nil, false
	}
}

func signedBytes(v any, bits int) ([]byte, error) {
	i, ok := toInt64(v)
	if !ok {
		return nil, ErrValueType
	}
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits < 64 && (i < lo || i > hi) {
		return nil, ErrValueRange
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i))
	return buf[8-bits/8:], nil
}

func unsignedBytes(v any, bits int) ([]byte, error) {
	u, ok := toUint64(v)
	if !ok {
		if _, isInt := toInt64(v); isInt {
			return nil, ErrValueRange
		}
		return nil, ErrValueType
	}
	if bits < 64 && u > uint64(1)<<bits-1 {
		return nil, ErrValueRange
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, u)
	return buf[8-bits/8:], nil
}

func floatBytes(fs []float32) []byte {
	buf := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.BigEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// encodeValue returns the big-endian bytes of v for a multi-byte kind.
func encodeValue(kind layout.Kind, v any) ([]byte, error) {
	switch kind {
	case layout.KindByte, layout.KindChar, layout.KindUShort, layout.KindUInt, layout.KindULong:
		return unsignedBytes(v, kind.Bits())
	case layout.KindSByte, layout.KindShort, layout.KindInt, layout.KindLong:
		return signedBytes(v, kind.Bits())
	case layout.KindFloat:
		f, ok := toFloat64(v)
		if !ok {
			return nil, ErrValueType
		}
		return floatBytes([]float32{float32(f)}), nil
	case layout.KindDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, ErrValueType
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		return buf, nil
	case layout.KindVector2, layout.KindVector3, layout.KindVector4, layout.KindQuaternion, layout.KindColor:
		fs, ok := toFloats(v, kind.Bits()/32)
		if !ok {
			return nil, ErrValueType
		}
		return floatBytes(fs), nil
	case layout.KindColor32:
		c, ok := toColor32(v)
		if !ok {
			return nil, ErrValueType
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", layout.ErrUnsupportedVariableKind, kind)
	}
}

func readFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[4*i:]))
	}
	return out
}

// decodeValue converts the big-endian bytes of a multi-byte kind to its
// canonical Go type.
func decodeValue(kind layout.Kind, b []byte) (any, error) {
	switch kind {
	case layout.KindByte:
		return b[0], nil
	case layout.KindSByte:
		return int8(b[0]), nil
	case layout.KindChar, layout.KindUShort:
		return binary.BigEndian.Uint16(b), nil
	case layout.KindShort:
		return int16(binary.BigEndian.Uint16(b)), nil
	case layout.KindUInt:
		return binary.BigEndian.Uint32(b), nil
	case layout.KindInt:
		return int32(binary.BigEndian.Uint32(b)), nil
	case layout.KindULong:
		return binary.BigEndian.Uint64(b), nil
	case layout.KindLong:
		return int64(binary.BigEndian.Uint64(b)), nil
	case layout.KindFloat:
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	case layout.KindDouble:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case layout.KindVector2:
		fs := readFloats(b)
		return [2]float32{fs[0], fs[1]}, nil
	case layout.KindVector3:
		fs := readFloats(b)
		return [3]float32{fs[0], fs[1], fs[2]}, nil
	case layout.KindVector4, layout.KindQuaternion, layout.KindColor:
		fs := readFloats(b)
		return [4]float32{fs[0], fs[1], fs[2], fs[3]}, nil
	case layout.KindColor32:
		return [4]uint8{b[0], b[1], b[2], b[3]}, nil
	default:
		return nil, fmt.Errorf("%w: %s", layout.ErrUnsupportedVariableKind, kind)
	}
}
