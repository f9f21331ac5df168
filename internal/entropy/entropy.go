// Package entropy provides the simulation's sole source of randomness: a
// seeded generator that fans out fresh 32-bit seeds to every callback.
// Two runs with the same master seed draw identical sequences, so agent
// behavior stays reproducible without agents sharing a generator.
package entropy

import "math/rand"

// Source draws callback seeds from a single master generator.
type Source struct {
	rng *rand.Rand
}

// New creates a source from the master seed.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Seed32 draws the next 32-bit callback seed.
func (s *Source) Seed32() int32 {
	return int32(s.rng.Uint32())
}

// Rand builds a local generator from a callback seed. Agents that need
// more than one draw per callback derive their own stream this way.
func Rand(seed int32) *rand.Rand {
	return rand.New(rand.NewSource(int64(seed)))
}
