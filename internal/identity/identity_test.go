package identity

import (
	"fmt"
	"testing"
)

func TestStableHashKnownValues(t *testing.T) {
	cases := map[string]int32{
		"":         371857150,
		"ab":       1093630535,
		"abc":      1099313834,
		"ab\x00cd": 1093630535,
	}
	for in, want := range cases {
		if got := StableHash(in); got != want {
			t.Fatalf("StableHash(%q) = %d want %d", in, got, want)
		}
	}
}

func TestFromSeedDeterministic(t *testing.T) {
	a := FromSeed("5b1c7f0e-6a0e-4d8e-9a53-6f0c2b7d9e11")
	b := FromSeed("5b1c7f0e-6a0e-4d8e-9a53-6f0c2b7d9e11")
	if a != b {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
	for i, v := range a {
		if v < -1 || v > 1 {
			t.Fatalf("component %d out of range: %v", i, v)
		}
	}
}

func TestFromSeedNearIdenticalSeedsDiffer(t *testing.T) {
	seen := make(map[Coordinate]string)
	for i := 0; i < 2000; i++ {
		seed := fmt.Sprintf("key%d", i)
		c := FromSeed(seed)
		if prev, ok := seen[c]; ok {
			t.Fatalf("%q and %q share coordinate %v", prev, seed, c)
		}
		seen[c] = seed
	}
}

func TestChainStartsWithSeedCoordinate(t *testing.T) {
	chain := Chain("legacy-seed", 3)
	if len(chain) != 3 {
		t.Fatalf("expected 3 coordinates, got %d", len(chain))
	}
	if chain[0] != FromSeed("legacy-seed") {
		t.Fatalf("first chained coordinate must match the seed coordinate")
	}
	if chain[1] == chain[0] || chain[2] == chain[1] {
		t.Fatalf("chained coordinates repeat: %v", chain)
	}
	again := Chain("legacy-seed", 3)
	if again[2] != chain[2] {
		t.Fatalf("chain is not deterministic")
	}
	if Chain("x", 0) != nil {
		t.Fatalf("empty chain should be nil")
	}
}

func TestRandRange(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 10000; i++ {
		v := r.Range(-1, 1)
		if v < -1 || v > 1 {
			t.Fatalf("draw %d out of range: %v", i, v)
		}
	}
}

func TestCoordinateScale(t *testing.T) {
	c := Coordinate{0.5, -1, 0.25}.Scale(50)
	if c.X() != 25 || c.Y() != -50 || c.Z() != 12.5 {
		t.Fatalf("unexpected scale: %v", c)
	}
}

func TestRandGoldenSequence(t *testing.T) {
	r := NewRand(1)
	for i, want := range []uint32{3690984874, 2346916618, 2899782266} {
		if got := r.Uint32(); got != want {
			t.Fatalf("draw %d = %d want %d", i, got, want)
		}
	}
}

func TestFromSeedGolden(t *testing.T) {
	want := Coordinate{
		float32(0.04135453701019287),
		float32(-0.29936379194259644),
		float32(-0.4941040873527527),
	}
	if got := FromSeed("abc"); got != want {
		t.Fatalf("FromSeed(abc) = %v want %v", got, want)
	}
}
