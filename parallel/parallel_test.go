package parallel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphlocal"
	"github.com/hupe1980/graphlocal/resource"
	"github.com/hupe1980/graphlocal/testutil"
)

func export(t *testing.T, rng *testutil.RNG) (*graphlocal.Graph, graphlocal.SharedDescriptor) {
	t.Helper()
	g, err := graphlocal.FromTuples(rng.Tuples(120, 500, true), graphlocal.WithSharedDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	e, err := g.ToShared()
	require.NoError(t, err)
	return g, e.Descriptor()
}

func TestScoreSubsets(t *testing.T) {
	rng := testutil.NewRNG(42)
	g, desc := export(t, rng)

	subsets := make([][]uint32, 100)
	for i := range subsets {
		subsets[i] = rng.Subset(g.NumVertices(), rng.Intn(30))
	}

	metrics := &graphlocal.BasicMetricsCollector{}
	got, err := ScoreSubsets(context.Background(), desc, subsets,
		WithWorkers(4),
		WithScorer(graphlocal.ReferenceScorer{}),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)
	require.Len(t, got, len(subsets))

	for i, r := range subsets {
		want, err := g.Score(r)
		require.NoError(t, err)
		assert.InDelta(t, want.Cut, got[i].Cut, 1e-9)
		assert.Equal(t, want.VolTrue, got[i].VolTrue)
		assert.Equal(t, want.SizeEff, got[i].SizeEff)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(len(subsets)), stats.ScoreCount)
	assert.Equal(t, int64(4), stats.ImportCount)
}

func TestLocalExtrema(t *testing.T) {
	rng := testutil.NewRNG(7)
	g, desc := export(t, rng)

	landscapes := make([][]float64, 20)
	for i := range landscapes {
		landscapes[i] = rng.Landscape(g.NumVertices(), 5)
	}

	got, err := LocalExtrema(context.Background(), desc, landscapes, true, false, WithWorkers(3))
	require.NoError(t, err)

	for i, values := range landscapes {
		ids, vals, err := g.LocalExtrema(values, true, false)
		require.NoError(t, err)
		assert.Equal(t, ids, got[i].IDs)
		assert.Equal(t, vals, got[i].Values)
	}
}

func TestRun(t *testing.T) {
	t.Run("NoJobs", func(t *testing.T) {
		called := false
		err := Run(context.Background(), graphlocal.SharedDescriptor{}, 0, func(context.Context, *graphlocal.Graph, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("EveryJobOnce", func(t *testing.T) {
		_, desc := export(t, testutil.NewRNG(1))

		seen := make([]atomic.Int32, 57)
		err := Run(context.Background(), desc, len(seen), func(_ context.Context, _ *graphlocal.Graph, job int) error {
			seen[job].Add(1)
			return nil
		}, WithWorkers(5))
		require.NoError(t, err)

		for i := range seen {
			assert.Equal(t, int32(1), seen[i].Load(), "job %d", i)
		}
	})

	t.Run("FirstErrorWins", func(t *testing.T) {
		_, desc := export(t, testutil.NewRNG(2))
		boom := errors.New("boom")

		err := Run(context.Background(), desc, 50, func(_ context.Context, _ *graphlocal.Graph, job int) error {
			if job == 13 {
				return boom
			}
			return nil
		}, WithWorkers(4))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("InvalidDescriptor", func(t *testing.T) {
		err := Run(context.Background(), graphlocal.SharedDescriptor{Handle: "/nonexistent/segment", N: 1}, 3,
			func(context.Context, *graphlocal.Graph, int) error { return nil })
		assert.Error(t, err)
	})

	t.Run("StaleDescriptor", func(t *testing.T) {
		g, desc := export(t, testutil.NewRNG(3))
		require.NoError(t, g.DiscardWeights())

		_, err := ScoreSubsets(context.Background(), desc, [][]uint32{{0}})
		assert.ErrorIs(t, err, graphlocal.ErrStaleDescriptor)
	})

	t.Run("MutationDuringRun", func(t *testing.T) {
		g, desc := export(t, testutil.NewRNG(4))

		err := Run(context.Background(), desc, 10, func(_ context.Context, _ *graphlocal.Graph, job int) error {
			if job == 0 {
				return g.DiscardWeights()
			}
			return nil
		}, WithWorkers(1))
		assert.ErrorIs(t, err, graphlocal.ErrStaleDescriptor)
	})

	t.Run("Canceled", func(t *testing.T) {
		_, desc := export(t, testutil.NewRNG(5))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Run(ctx, desc, 10, func(context.Context, *graphlocal.Graph, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ResourceControllerBoundsWorkers", func(t *testing.T) {
		_, desc := export(t, testutil.NewRNG(6))
		rc := resource.NewController(resource.Config{MaxWorkers: 2})

		var peak atomic.Int64
		err := Run(context.Background(), desc, 40, func(context.Context, *graphlocal.Graph, int) error {
			cur := rc.ActiveWorkers()
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			return nil
		}, WithWorkers(8), WithResourceController(rc))
		require.NoError(t, err)

		assert.LessOrEqual(t, peak.Load(), int64(2))
		assert.Zero(t, rc.ActiveWorkers())
	})
	t.Run("LogsWorkerSlots", func(t *testing.T) {
		_, desc := export(t, testutil.NewRNG(7))
		rc := resource.NewController(resource.Config{MaxWorkers: 1})

		var buf bytes.Buffer
		logger := graphlocal.NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		err := Run(context.Background(), desc, 4, func(context.Context, *graphlocal.Graph, int) error { return nil },
			WithWorkers(2), WithResourceController(rc), WithLogger(logger))
		require.NoError(t, err)

		assert.Contains(t, buf.String(), "worker attached")
		assert.Contains(t, buf.String(), "active_workers=1")
		assert.Zero(t, rc.ActiveWorkers())
	})
}
