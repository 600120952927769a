package service

import "math/rand"

// rng returns a fresh PRNG for one operation. rand.Rand is not safe for
// concurrent use, so each dispatch unit gets its own, seeded off the
// lock-protected global source.
func rng() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}
