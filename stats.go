package graphlocal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Statistics holds the degree-derived vectors of a graph.
//
// Statistics are never mutated independently of their graph; every mutation
// of a Graph replaces them with a freshly computed value.
type Statistics struct {
	// Degree is the weighted degree of each vertex.
	Degree []float64
	// InvDegree is 1/Degree, or 0 for isolated vertices.
	InvDegree []float64
	// SqrtDegree is the component-wise square root of Degree.
	SqrtDegree []float64
	// InvSqrtDegree is the component-wise square root of InvDegree.
	InvSqrtDegree []float64
	// Volume is the sum of all degrees.
	Volume float64
}

// ComputeStatistics derives the statistics of g from its current adjacency
// in O(n+m). It never reads the statistics g already holds.
func ComputeStatistics(g *Graph) (*Statistics, error) {
	if g == nil || g.rowStart == nil {
		return nil, ErrInconsistentState
	}
	if g.view != nil && g.view.Closed() {
		return nil, ErrClosed
	}
	return computeStatistics(g.n, g.rowStart, g.weight), nil
}

func computeStatistics(n int, rowStart []uint64, weight []float64) *Statistics {
	s := &Statistics{
		Degree:        make([]float64, n),
		InvDegree:     make([]float64, n),
		SqrtDegree:    make([]float64, n),
		InvSqrtDegree: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		var d float64
		for k := rowStart[i]; k < rowStart[i+1]; k++ {
			d += weight[k]
		}
		s.Degree[i] = d
		if d != 0 {
			s.InvDegree[i] = 1 / d
		}
		s.SqrtDegree[i] = math.Sqrt(d)
		s.InvSqrtDegree[i] = math.Sqrt(s.InvDegree[i])
	}
	s.Volume = floats.Sum(s.Degree)

	return s
}

func (s *Statistics) clone() *Statistics {
	return &Statistics{
		Degree:        append([]float64(nil), s.Degree...),
		InvDegree:     append([]float64(nil), s.InvDegree...),
		SqrtDegree:    append([]float64(nil), s.SqrtDegree...),
		InvSqrtDegree: append([]float64(nil), s.InvSqrtDegree...),
		Volume:        s.Volume,
	}
}

// Len returns the number of vertices the statistics describe.
func (s *Statistics) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Degree)
}
