package testutil

import (
	"math/rand"
	"sync"
)

// WeightDenominator is the denominator of every weight produced by RNG.
// Sums of such weights are exact in float64, so results computed in
// different summation orders compare equal.
const WeightDenominator = 8

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Weight returns a positive weight in (0, 4], a multiple of 1/WeightDenominator.
func (r *RNG) Weight() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weightLocked()
}

func (r *RNG) weightLocked() float64 {
	return float64(1+r.rand.Intn(4*WeightDenominator)) / WeightDenominator
}

// Tuples generates m random (source, target, weight) rows over vertices
// [0, n). Self-loops, repeated pairs and asymmetric weights all occur.
// Vertex n-1 always appears so that the built graph has exactly n vertices.
// Without weighted every row has two columns.
func (r *RNG) Tuples(n, m int, weighted bool) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]float64, 0, m+1)
	for range m {
		u, v := r.rand.Intn(n), r.rand.Intn(n)
		if weighted {
			out = append(out, []float64{float64(u), float64(v), r.weightLocked()})
		} else {
			out = append(out, []float64{float64(u), float64(v)})
		}
	}

	last := []float64{float64(r.rand.Intn(n)), float64(n - 1)}
	if weighted {
		last = append(last, r.weightLocked())
	}
	return append(out, last)
}

// EdgeList generates the column form of Tuples. A nil weight slice is
// returned without weighted.
func (r *RNG) EdgeList(n, m int, weighted bool) ([]int64, []int64, []float64) {
	tuples := r.Tuples(n, m, weighted)

	src := make([]int64, len(tuples))
	dst := make([]int64, len(tuples))
	var w []float64
	if weighted {
		w = make([]float64, len(tuples))
	}
	for i, t := range tuples {
		src[i], dst[i] = int64(t[0]), int64(t[1])
		if weighted {
			w[i] = t[2]
		}
	}
	return src, dst, w
}

// Subset returns size distinct vertex ids from [0, n) in random order.
func (r *RNG) Subset(n, size int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	perm := r.rand.Perm(n)
	out := make([]uint32, min(size, n))
	for i := range out {
		out[i] = uint32(perm[i])
	}
	return out
}

// Landscape returns n values drawn from a small set of levels, so that
// ties between neighbors are common.
func (r *RNG) Landscape(n, levels int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = float64(r.rand.Intn(levels)) - float64(levels)/2
	}
	return out
}
