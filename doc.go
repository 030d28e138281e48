// Package graphlocal provides the graph substrate for local graph
// clustering: a compressed undirected adjacency with degree statistics and
// a scoring engine for small vertex subsets.
//
// # Building
//
// A Graph is built once from an edge list and is immutable apart from
// DiscardWeights:
//
//	g, err := graphlocal.FromTuples([][]float64{{0, 1}, {1, 2, 0.5}})
//	g, err := graphlocal.FromEdgeList(src, dst, weights)
//	g, err := graphlocal.New([]graphlocal.Edge{{Source: 0, Target: 1, Weight: 1}})
//
// Input is symmetrized: for every unordered pair the larger directed weight
// is stored in both directions. Repeated entries for the same directed pair
// are summed first.
//
// # Scoring
//
// Score computes cut, volume, conductance and isoperimetric ratio of a
// subset:
//
//	s, err := g.Score([]uint32{0, 1})
//	fmt.Println(s.Cond, s.Isop)
//
// Two strategies are available. AcceleratedScorer (the default) touches only
// the rows of the subset; ReferenceScorer evaluates the full quadratic form
// and serves as ground truth. Both agree to within 1e-9. Select one with
// WithScorer or per call with ScoreWith.
//
// Empty and full subsets are not errors: conductance and isoperimetric ratio
// are 1 whenever their denominator is zero.
//
// # Connectivity
//
// ConnectedComponents, IsDisconnected, LargestComponent and CoreNumbers
// delegate traversal to gonum over a zero-copy adapter.
//
// # Parallel Workers
//
// ToShared copies the graph into a shared memory segment and returns an
// Export whose Descriptor can be handed to goroutines or other processes.
// FromShared attaches a read-only view without copying:
//
//	exp, _ := g.ToShared()
//	defer exp.Close()
//
//	view, _ := graphlocal.FromShared(exp.Descriptor())
//	defer view.Close()
//
// Views are read-only. Mutating the owner marks every export stale;
// FromShared rejects stale descriptors with ErrStaleDescriptor. The parallel
// package runs scoring jobs over such views.
//
// # Observability
//
// Logging uses log/slog through Logger (WithLogger, WithLogLevel). Metrics
// are reported to a MetricsCollector (WithMetricsCollector); the
// metrics/prometheus package provides a Prometheus implementation.
package graphlocal
