// Package identity derives the key coordinate a receiver uses to recognise
// which data owner a carrier instance belongs to.
//
// The coordinate is a long-lived identifier, not a secret: the seed string
// is hashed with a fixed paired-djb2 hash, the hash seeds an xorshift128
// generator, and three draws in [-1, 1] form the coordinate. Both the hash
// and the generator are frozen; coordinates already baked into carriers
// depend on them bit for bit.
package identity
