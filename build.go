package graphlocal

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/graphlocal/internal/conv"
)

// Edge is one input record. Source and Target are vertex ids.
type Edge struct {
	Source uint32
	Target uint32
	Weight float64
}

// New builds a graph from edges.
//
// The vertex count is the largest observed id plus one. Repeated directed
// entries are summed. The result is symmetrized: for each unordered pair the
// larger of the two directed weights is stored in both directions, a missing
// direction counting as zero. Asymmetric input is never an error.
//
// Weights must be finite and non-negative; zero weights are kept as stored
// entries that contribute nothing to the degree.
func New(edges []Edge, opts ...Option) (*Graph, error) {
	o := applyOptions(opts)
	return buildGraph(edges, len(edges), o)
}

// FromTuples builds a graph from (source, target) or (source, target, weight)
// rows. Two-element rows have unit weight. Ids must be non-negative
// integers.
func FromTuples(tuples [][]float64, opts ...Option) (*Graph, error) {
	o := applyOptions(opts)

	edges := make([]Edge, len(tuples))
	for i, t := range tuples {
		if len(t) != 2 && len(t) != 3 {
			return o.recordBuildError(len(tuples), invalid(i, nil, "arity %d not in {2, 3}", len(t)))
		}
		src, err := conv.Float64ToUint32(t[0])
		if err != nil {
			return o.recordBuildError(len(tuples), invalid(i, err, "invalid source id %v", t[0]))
		}
		dst, err := conv.Float64ToUint32(t[1])
		if err != nil {
			return o.recordBuildError(len(tuples), invalid(i, err, "invalid target id %v", t[1]))
		}
		w := 1.0
		if len(t) == 3 {
			w = t[2]
		}
		edges[i] = Edge{Source: src, Target: dst, Weight: w}
	}

	return buildGraph(edges, len(tuples), o)
}

// FromEdgeList builds a graph from parallel source, target and weight
// columns. A nil weights slice means unit weights.
func FromEdgeList(src, dst []int64, weights []float64, opts ...Option) (*Graph, error) {
	o := applyOptions(opts)

	if len(src) != len(dst) {
		return o.recordBuildError(len(src), invalid(-1, nil, "%d sources but %d targets", len(src), len(dst)))
	}
	if weights != nil && len(weights) != len(src) {
		return o.recordBuildError(len(src), invalid(-1, nil, "%d edges but %d weights", len(src), len(weights)))
	}

	edges := make([]Edge, len(src))
	for i := range src {
		s, err := conv.Int64ToUint32(src[i])
		if err != nil {
			return o.recordBuildError(len(src), invalid(i, err, "invalid source id %d", src[i]))
		}
		d, err := conv.Int64ToUint32(dst[i])
		if err != nil {
			return o.recordBuildError(len(src), invalid(i, err, "invalid target id %d", dst[i]))
		}
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		edges[i] = Edge{Source: s, Target: d, Weight: w}
	}

	return buildGraph(edges, len(src), o)
}

func (o options) recordBuildError(records int, err error) (*Graph, error) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordBuild(records, 0, err)
	}
	o.logger.LogBuild(context.Background(), records, 0, 0, false, err)
	return nil, err
}

func buildGraph(edges []Edge, records int, o options) (*Graph, error) {
	start := time.Now()

	if len(edges) == 0 {
		return o.recordBuildError(records, invalid(-1, nil, "no edges"))
	}

	var maxID uint32
	for i, e := range edges {
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight < 0 {
			return o.recordBuildError(records, invalid(i, nil, "weight %v is not a finite non-negative number", e.Weight))
		}
		maxID = max(maxID, e.Source, e.Target)
	}
	n := int(maxID) + 1

	aStart, a := compress(n, edges)
	tStart, t := transpose(n, aStart, a)
	rowStart, colIndex, weight := symmetrize(n, aStart, a, tStart, t)

	g := newGraph(n, rowStart, colIndex, weight, o)

	if o.metricsCollector != nil {
		o.metricsCollector.RecordBuild(records, time.Since(start), nil)
	}
	o.logger.LogBuild(context.Background(), records, g.n, g.m, g.weighted, nil)

	return g, nil
}

type entry struct {
	col uint32
	w   float64
}

// compress converts edges into rows sorted by column with repeated
// entries summed.
func compress(n int, edges []Edge) ([]uint64, []entry) {
	counts := make([]uint64, n+1)
	for _, e := range edges {
		counts[e.Source+1]++
	}
	for i := 1; i <= n; i++ {
		counts[i] += counts[i-1]
	}

	raw := make([]entry, len(edges))
	next := append([]uint64(nil), counts[:n]...)
	for _, e := range edges {
		raw[next[e.Source]] = entry{col: e.Target, w: e.Weight}
		next[e.Source]++
	}

	rowStart := make([]uint64, n+1)
	out := raw[:0]
	for u := 0; u < n; u++ {
		row := raw[counts[u]:counts[u+1]]
		slices.SortStableFunc(row, func(x, y entry) int { return cmp.Compare(x.col, y.col) })

		// out never overtakes the row being read, so merging in place is safe.
		for i := 0; i < len(row); {
			merged := row[i]
			j := i + 1
			for ; j < len(row) && row[j].col == merged.col; j++ {
				merged.w += row[j].w
			}
			out = append(out, merged)
			i = j
		}
		rowStart[u+1] = uint64(len(out))
	}

	return rowStart, out
}

// transpose returns the transpose of a row-sorted matrix, itself row-sorted.
func transpose(n int, rowStart []uint64, a []entry) ([]uint64, []entry) {
	tStart := make([]uint64, n+1)
	for _, e := range a {
		tStart[e.col+1]++
	}
	for i := 1; i <= n; i++ {
		tStart[i] += tStart[i-1]
	}

	t := make([]entry, len(a))
	next := append([]uint64(nil), tStart[:n]...)
	for u := 0; u < n; u++ {
		for k := rowStart[u]; k < rowStart[u+1]; k++ {
			c := a[k].col
			t[next[c]] = entry{col: uint32(u), w: a[k].w}
			next[c]++
		}
	}

	return tStart, t
}

// symmetrize merges A and its transpose row by row, keeping the larger
// weight of each pair.
func symmetrize(n int, aStart []uint64, a []entry, tStart []uint64, t []entry) ([]uint64, []uint32, []float64) {
	rowStart := make([]uint64, n+1)
	colIndex := make([]uint32, 0, len(a))
	weight := make([]float64, 0, len(a))

	for u := 0; u < n; u++ {
		i, iEnd := aStart[u], aStart[u+1]
		j, jEnd := tStart[u], tStart[u+1]
		for i < iEnd || j < jEnd {
			switch {
			case j == jEnd || (i < iEnd && a[i].col < t[j].col):
				colIndex = append(colIndex, a[i].col)
				weight = append(weight, a[i].w)
				i++
			case i == iEnd || t[j].col < a[i].col:
				colIndex = append(colIndex, t[j].col)
				weight = append(weight, t[j].w)
				j++
			default:
				colIndex = append(colIndex, a[i].col)
				weight = append(weight, max(a[i].w, t[j].w))
				i++
				j++
			}
		}
		rowStart[u+1] = uint64(len(colIndex))
	}

	return rowStart, colIndex, weight
}
