// Package rng provides the core randomness abstraction for the simulation.
// Every component that rolls takes a Source so tests can pin outcomes.
package rng

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// float64Bits is the resolution of the Float64 stream.
const float64Bits = 53

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in their range.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n), every value
// returned by Float64 is in [0.0, 1.0).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float in [0.0, 1.0).
func (c *cryptoSource) Float64() float64 {
	val, err := rand.Int(rand.Reader, big.NewInt(1<<float64Bits))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / (1 << float64Bits)
}

// Chance rolls against a probability.
//
// Precondition: src must be non-nil.
// Postcondition: Returns true with probability clamp(p, 0, 1).
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}
