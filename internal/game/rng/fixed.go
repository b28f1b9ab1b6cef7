package rng

// FixedSource is a deterministic Source that replays scripted values.
// Intended for tests; it is NOT safe for concurrent use.
//
// Invariant: Each stream cycles when exhausted, so a single scripted value
// pins every subsequent draw.
type FixedSource struct {
	Ints   []int
	Floats []float64
	ii, fi int
}

// Intn returns the next scripted int, clamped into [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or no ints are scripted.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	if len(f.Ints) == 0 {
		panic("rng: FixedSource has no scripted ints")
	}
	v := f.Ints[f.ii%len(f.Ints)]
	f.ii++
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

// Float64 returns the next scripted float.
//
// Precondition: At least one float must be scripted. Panics otherwise.
func (f *FixedSource) Float64() float64 {
	if len(f.Floats) == 0 {
		panic("rng: FixedSource has no scripted floats")
	}
	v := f.Floats[f.fi%len(f.Floats)]
	f.fi++
	return v
}
