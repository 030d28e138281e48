// Package parallel fans subset scoring and extrema scans out to worker
// goroutines that share one exported graph.
//
// The owner exports once and hands the descriptor to Run (or one of the
// typed helpers). Every worker attaches its own read-only view with
// graphlocal.FromShared, processes a strided share of the jobs and closes
// the view. Workers do not coordinate beyond the first error, which cancels
// the remaining jobs.
//
//	exp, _ := g.ToShared()
//	defer exp.Close()
//
//	scores, err := parallel.ScoreSubsets(ctx, exp.Descriptor(), subsets,
//		parallel.WithWorkers(8))
//
// The graph must not be mutated while a run is in flight. A worker that
// observes a mutation of the owner aborts with graphlocal.ErrStaleDescriptor.
package parallel
