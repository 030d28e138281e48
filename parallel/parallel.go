package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphlocal"
)

// JobFunc processes job against a worker's view.
// The view must not be retained after the call returns.
type JobFunc func(ctx context.Context, view *graphlocal.Graph, job int) error

// Run executes fn for every job in [0, jobs) across the configured number of
// workers. Jobs are assigned round robin; each worker attaches desc once.
//
// The first error returned by fn, by an attach or by ctx cancels the
// remaining jobs and is returned. Jobs already running are not interrupted.
func Run(ctx context.Context, desc graphlocal.SharedDescriptor, jobs int, fn JobFunc, opts ...Option) error {
	if jobs <= 0 {
		return nil
	}
	o := applyOptions(opts)
	workers := min(o.workers, jobs)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			return work(ctx, desc, w, workers, jobs, fn, o)
		})
	}

	err := eg.Wait()
	if err != nil {
		o.logger.ErrorContext(ctx, "parallel run failed",
			"handle", desc.Handle,
			"jobs", jobs,
			"workers", workers,
			"error", err,
		)
	}
	return err
}

func work(ctx context.Context, desc graphlocal.SharedDescriptor, w, workers, jobs int, fn JobFunc, o options) error {
	if !o.controller.TryAcquireWorker() {
		o.logger.DebugContext(ctx, "worker waiting for slot",
			"worker", w,
			"active_workers", o.controller.ActiveWorkers(),
			"max_workers", o.controller.MaxWorkers(),
		)
		if err := o.controller.AcquireWorker(ctx); err != nil {
			return err
		}
	}
	defer o.controller.ReleaseWorker()

	view, err := graphlocal.FromShared(desc, o.viewOptions()...)
	if err != nil {
		return fmt.Errorf("worker %d: %w", w, err)
	}
	defer view.Close()

	o.logger.DebugContext(ctx, "worker attached",
		"worker", w,
		"handle", desc.Handle,
		"active_workers", o.controller.ActiveWorkers(),
	)

	for job := w; job < jobs; job += workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if view.Stale() {
			return fmt.Errorf("worker %d: %w", w, graphlocal.ErrStaleDescriptor)
		}
		if err := fn(ctx, view, job); err != nil {
			return fmt.Errorf("job %d: %w", job, err)
		}
	}
	return nil
}

// ScoreSubsets scores every subset against the shared graph and returns the
// results in input order.
func ScoreSubsets(ctx context.Context, desc graphlocal.SharedDescriptor, subsets [][]uint32, opts ...Option) ([]graphlocal.SetScores, error) {
	out := make([]graphlocal.SetScores, len(subsets))

	err := Run(ctx, desc, len(subsets), func(_ context.Context, view *graphlocal.Graph, job int) error {
		s, err := view.Score(subsets[job])
		if err != nil {
			return err
		}
		out[job] = s
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Extrema is the result of one local extrema scan.
type Extrema struct {
	IDs    []uint32
	Values []float64
}

// LocalExtrema scans every value landscape against the shared graph and
// returns the results in input order.
func LocalExtrema(ctx context.Context, desc graphlocal.SharedDescriptor, landscapes [][]float64, strict, reverse bool, opts ...Option) ([]Extrema, error) {
	out := make([]Extrema, len(landscapes))

	err := Run(ctx, desc, len(landscapes), func(_ context.Context, view *graphlocal.Graph, job int) error {
		ids, vals, err := view.LocalExtrema(landscapes[job], strict, reverse)
		if err != nil {
			return err
		}
		out[job] = Extrema{IDs: ids, Values: vals}
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
