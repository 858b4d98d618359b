// Package rng provides the per-worker random substreams the candidate
// sampler and graph initializer draw from. Go's math/rand/v2 PCG has no
// public Jump/split method, so rather than sharing one generator behind a
// mutex (which would serialize every sampling call across workers) each
// worker gets its own PCG seeded from a splitmix64 derivation of a single
// run seed, the same "derive independent substreams from one seed" shape
// as the xorshift64* per-insert generator in the reference HNSW pack.
package rng

import "math/rand/v2"

// Stream is a worker-local source of randomness. It is not safe for
// concurrent use; callers hand out one Stream per worker and never share
// it across goroutines.
type Stream struct {
	r *rand.Rand
}

// NewStream derives a Stream for the given worker index from runSeed. Two
// calls with the same (runSeed, worker) always produce the same sequence,
// which makes a build deterministic for a fixed seed and worker count.
func NewStream(runSeed uint64, worker int) *Stream {
	seed := splitmix64Seed(runSeed, uint64(worker))
	s0 := splitmix64(&seed)
	s1 := splitmix64(&seed)
	return &Stream{r: rand.New(rand.NewPCG(s0, s1))}
}

// Float64 returns a pseudo-random value in [0, 1).
func (s *Stream) Float64() float64 { return s.r.Float64() }

// IntN returns a pseudo-random value in [0, n).
func (s *Stream) IntN(n int) int { return s.r.IntN(n) }

// Shuffle permutes the range [0, n) in place via swap(i, j).
func (s *Stream) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }

// splitmix64Seed folds a run seed and a worker index into a single
// splitmix64 state, giving every worker a distinct starting point even
// when runSeed is shared.
func splitmix64Seed(runSeed, worker uint64) uint64 {
	const goldenGamma = 0x9E3779B97F4A7C15
	return runSeed + worker*goldenGamma
}

// splitmix64 advances state and returns the next output, per Vigna's
// splitmix64 construction. Used only to derive two PCG seed words; the
// sampling itself runs through math/rand/v2.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
