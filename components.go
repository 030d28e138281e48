package graphlocal

import (
	"cmp"
	"context"
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/hupe1980/graphlocal/internal/membership"
)

// Components is a partition of the vertices into connected components.
type Components struct {
	// Labels maps every vertex to its component. Labels are numbered from 0
	// in order of the smallest vertex id of each component.
	Labels []int
	// Count is the number of components.
	Count int
}

// Sizes returns the number of vertices per label.
func (c Components) Sizes() []int {
	sizes := make([]int, c.Count)
	for _, l := range c.Labels {
		sizes[l]++
	}
	return sizes
}

// Members returns the vertices with the given label in ascending order.
func (c Components) Members(label int) []uint32 {
	return c.memberSet(label).ToArray()
}

func (c Components) memberSet(label int) *membership.Set {
	s := membership.New()
	for v, l := range c.Labels {
		if l == label {
			s.Add(uint32(v)) //nolint:gosec // vertex ids fit in uint32
		}
	}
	return s
}

// ConnectedComponents labels the connected components of g.
func (g *Graph) ConnectedComponents() (Components, error) {
	if err := g.ready(); err != nil {
		return Components{}, err
	}

	comps := topo.ConnectedComponents(undirected{g: g})

	mins := make([]int64, len(comps))
	for i, c := range comps {
		lo := c[0].ID()
		for _, node := range c[1:] {
			lo = min(lo, node.ID())
		}
		mins[i] = lo
	}
	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(mins[a], mins[b]) })

	labels := make([]int, g.n)
	for label, i := range order {
		for _, node := range comps[i] {
			labels[node.ID()] = label
		}
	}

	return Components{Labels: labels, Count: len(comps)}, nil
}

// IsDisconnected reports whether g has more than one component.
func (g *Graph) IsDisconnected() (bool, error) {
	c, err := g.ConnectedComponents()
	if err != nil {
		return false, err
	}
	return c.Count > 1, nil
}

// LargestComponent returns the subgraph induced on the most populous
// component as a new graph. Vertices are renumbered to [0, k) in their
// original relative order. Among components of equal size the one holding
// the smallest vertex id wins.
//
// The result never shares storage with g, even when g is connected.
func (g *Graph) LargestComponent() (*Graph, error) {
	c, err := g.ConnectedComponents()
	if err != nil {
		return nil, err
	}

	sizes := c.Sizes()
	best := 0
	for l, s := range sizes {
		if s > sizes[best] {
			best = l
		}
	}

	if c.Count > 1 {
		g.opts.logger.WithVertices(g.n).LogLargestComponent(context.Background(), c.Count, sizes[best])
	}

	members := c.memberSet(best)
	k := members.Len()

	newID := make([]uint32, g.n)
	next := uint32(0)
	members.ForEach(func(v uint32) bool {
		newID[v] = next
		next++
		return true
	})

	rowStart := make([]uint64, 1, k+1)
	var colIndex []uint32
	var weight []float64
	members.ForEach(func(u uint32) bool {
		for e := g.rowStart[u]; e < g.rowStart[u+1]; e++ {
			colIndex = append(colIndex, newID[g.colIndex[e]])
			weight = append(weight, g.weight[e])
		}
		rowStart = append(rowStart, uint64(len(colIndex)))
		return true
	})

	return newGraph(k, rowStart, colIndex, weight, g.opts), nil
}

// CoreNumbers returns the core number of every vertex, ignoring weights and
// self-loops.
func (g *Graph) CoreNumbers() ([]int, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	_, cores := topo.DegeneracyOrdering(undirected{g: g})

	out := make([]int, g.n)
	for k, shell := range cores {
		for _, node := range shell {
			out[node.ID()] = k
		}
	}
	return out, nil
}
