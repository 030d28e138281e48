package graphlocal

import (
	"sync"

	"github.com/hupe1980/graphlocal/internal/shm"
)

// Graph is an undirected graph in compressed sparse row form together with
// its degree statistics.
//
// A Graph is either an owner, built by New, FromTuples, FromEdgeList, Clone
// or LargestComponent, or a read-only view attached to shared memory with
// FromShared. Owners may be mutated with DiscardWeights; views never.
//
// All read methods are safe for concurrent use as long as no mutation runs
// at the same time. Slices returned by accessors alias internal storage and
// must not be modified; for views they are valid until Close.
type Graph struct {
	n        int
	m        int
	rowStart []uint64
	colIndex []uint32
	weight   []float64
	weighted bool
	stats    *Statistics

	opts options

	// view is the attached segment of a shared view, nil for owners.
	view    *shm.Segment
	viewGen uint64

	mu      sync.Mutex
	exports []*Export
}

func newGraph(n int, rowStart []uint64, colIndex []uint32, weight []float64, opts options) *Graph {
	g := &Graph{
		n:        n,
		m:        len(colIndex),
		rowStart: rowStart,
		colIndex: colIndex,
		weight:   weight,
		opts:     opts,
	}
	g.weighted = hasNonUnitWeight(weight)
	g.stats = computeStatistics(n, rowStart, weight)
	return g
}

func hasNonUnitWeight(weight []float64) bool {
	for _, w := range weight {
		if w != 1 {
			return true
		}
	}
	return false
}

func (g *Graph) ready() error {
	if g == nil || g.stats == nil {
		return ErrInconsistentState
	}
	if g.view != nil && g.view.Closed() {
		return ErrClosed
	}
	return nil
}

func (g *Graph) check(v uint32) error {
	if int(v) >= g.n {
		return outOfRange(int64(v), g.n)
	}
	return nil
}

// NumVertices returns n.
func (g *Graph) NumVertices() int { return g.n }

// NumEdges returns m, the number of stored directed entries. Every
// undirected edge is stored twice except self-loops, which are stored once.
func (g *Graph) NumEdges() int { return g.m }

// Weighted reports whether any stored weight differs from 1.
func (g *Graph) Weighted() bool { return g.weighted }

// RowStart returns the n+1 row offsets into ColIndex and Weights.
func (g *Graph) RowStart() []uint64 { return g.rowStart }

// ColIndex returns the m neighbor ids in storage order.
func (g *Graph) ColIndex() []uint32 { return g.colIndex }

// Weights returns the m edge weights in storage order.
func (g *Graph) Weights() []float64 { return g.weight }

// Shared reports whether g is a view attached to shared memory.
func (g *Graph) Shared() bool { return g.view != nil }

// Statistics returns the degree statistics of g.
func (g *Graph) Statistics() (*Statistics, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	return g.stats, nil
}

// Volume returns the sum of all degrees, or 0 for an unbuilt graph.
func (g *Graph) Volume() float64 {
	if g == nil || g.stats == nil {
		return 0
	}
	return g.stats.Volume
}

// Degree returns the weighted degree of v.
func (g *Graph) Degree(v uint32) (float64, error) {
	if err := g.ready(); err != nil {
		return 0, err
	}
	if err := g.check(v); err != nil {
		return 0, err
	}
	return g.stats.Degree[v], nil
}

// Neighbors returns the neighbors of v in storage order.
// The cost is proportional to the degree of v; the slice aliases g.
func (g *Graph) Neighbors(v uint32) ([]uint32, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if err := g.check(v); err != nil {
		return nil, err
	}
	return g.colIndex[g.rowStart[v]:g.rowStart[v+1]], nil
}

// NeighborWeights returns the weights of the entries returned by Neighbors.
func (g *Graph) NeighborWeights(v uint32) ([]float64, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if err := g.check(v); err != nil {
		return nil, err
	}
	return g.weight[g.rowStart[v]:g.rowStart[v+1]], nil
}

// Edges calls fn for every stored entry (u, v, w) in storage order until
// fn returns false. Both directions of an undirected edge are visited.
func (g *Graph) Edges(fn func(u, v uint32, w float64) bool) error {
	if err := g.ready(); err != nil {
		return err
	}
	for u := 0; u < g.n; u++ {
		for k := g.rowStart[u]; k < g.rowStart[u+1]; k++ {
			if !fn(uint32(u), g.colIndex[k], g.weight[k]) {
				return nil
			}
		}
	}
	return nil
}

// Clone returns an independently owned deep copy of g. Cloning a shared
// view yields a mutable owner.
func (g *Graph) Clone() (*Graph, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	c := &Graph{
		n:        g.n,
		m:        g.m,
		rowStart: append([]uint64(nil), g.rowStart...),
		colIndex: append([]uint32(nil), g.colIndex...),
		weight:   append([]float64(nil), g.weight...),
		weighted: g.weighted,
		stats:    g.stats.clone(),
		opts:     g.opts,
	}
	return c, nil
}

// DiscardWeights sets every stored weight to 1 and recomputes the
// statistics. Every export of g becomes stale: descriptors issued before
// the call are rejected by FromShared and attached views report Stale.
func (g *Graph) DiscardWeights() error {
	if err := g.ready(); err != nil {
		return err
	}
	if g.view != nil {
		return ErrReadOnly
	}

	for i := range g.weight {
		g.weight[i] = 1
	}
	g.weighted = false
	g.stats = computeStatistics(g.n, g.rowStart, g.weight)

	return g.invalidateExports()
}

// Stale reports whether a shared view was invalidated by its owner.
// Owners are never stale.
func (g *Graph) Stale() bool {
	if g == nil || g.view == nil {
		return false
	}
	return g.view.Closed() || g.view.Generation() != g.viewGen
}

// Close closes every outstanding export of g and, for a shared view,
// releases its mapping. Close is idempotent.
func (g *Graph) Close() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	exports := g.exports
	g.exports = nil
	g.mu.Unlock()

	var firstErr error
	for _, e := range exports {
		if err := e.close(false); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if g.view != nil {
		if err := g.view.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
