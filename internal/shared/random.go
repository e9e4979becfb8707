// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"math/rand/v2"
	"sync"
)

// Source is the slice of math/rand/v2 the simulator and heuristics need.
// *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// IntBetween returns a uniform integer in [lo, hi].
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// LockedSource is a Source safe for concurrent use.
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a concurrency-safe source. A zero seed draws a random one.
func NewSource(seed uint64) *LockedSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &LockedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN implements Source.
func (s *LockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
