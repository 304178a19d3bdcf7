package identity

import (
	"unicode/utf16"
)

// StableHash hashes s over its UTF-16 code units, stopping at the first NUL.
// Arithmetic wraps at 32 bits.
func StableHash(s string) int32 {
	units := utf16.Encode([]rune(s))
	h1 := int32(5381)
	h2 := h1
	for i := 0; i < len(units) && units[i] != 0; i += 2 {
		h1 = ((h1 << 5) + h1) ^ int32(units[i])
		if i == len(units)-1 || units[i+1] == 0 {
			break
		}
		h2 = ((h2 << 5) + h2) ^ int32(units[i+1])
	}
	return h1 + h2*1566083941
}

// Rand is a xorshift128 generator.
type Rand struct {
	x, y, z, w uint32
}

func NewRand(seed int32) *Rand {
	r := &Rand{x: uint32(seed)}
	r.y = r.x*1812433253 + 1
	r.z = r.y*1812433253 + 1
	r.w = r.z*1812433253 + 1
	return r
}

func (r *Rand) Uint32() uint32 {
	t := r.x ^ (r.x << 11)
	r.x, r.y, r.z = r.y, r.z, r.w
	r.w = r.w ^ (r.w >> 19) ^ t ^ (t >> 8)
	return r.w
}

// Float01 returns a value in [0, 1] with 23 bits of resolution.
func (r *Rand) Float01() float32 {
	return float32(r.Uint32()&0x7FFFFF) / 0x7FFFFF
}

// Range returns a value in [lo, hi].
func (r *Rand) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float01()
}

// Coordinate is a point in [-1, 1]^3.
type Coordinate [3]float32

func (c Coordinate) X() float32 { return c[0] }
func (c Coordinate) Y() float32 { return c[1] }
func (c Coordinate) Z() float32 { return c[2] }

// Scale multiplies every component by f.
func (c Coordinate) Scale(f float32) Coordinate {
	return Coordinate{c[0] * f, c[1] * f, c[2] * f}
}

// Stream draws successive coordinates from one seed.
type Stream struct {
	r *Rand
}

func NewStream(seed string) *Stream {
	return &Stream{r: NewRand(StableHash(seed))}
}

// Next draws the next coordinate inside the unit cube.
func (s *Stream) Next() Coordinate {
	x := s.r.Range(-1, 1)
	y := s.r.Range(-1, 1)
	z := s.r.Range(-1, 1)
	return Coordinate{x, y, z}
}

// FromSeed is the key coordinate for seed: the first draw of its stream.
func FromSeed(seed string) Coordinate {
	return NewStream(seed).Next()
}

// Chain returns n coordinates where each one continues the generator state
// left by the previous one. Carriers split from one legacy save state were
// keyed this way; new carriers use FromSeed.
func Chain(seed string, n int) []Coordinate {
	if n <= 0 {
		return nil
	}
	s := NewStream(seed)
	out := make([]Coordinate, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}
