package graphlocal

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphlocal/internal/shm"
	"github.com/hupe1980/graphlocal/resource"
	"github.com/hupe1980/graphlocal/testutil"
)

func exportGraph(t *testing.T, tuples [][]float64, opts ...Option) (*Graph, *Export) {
	t.Helper()
	opts = append([]Option{WithSharedDir(t.TempDir())}, opts...)
	g := mustTuples(t, tuples, opts...)
	t.Cleanup(func() { _ = g.Close() })

	e, err := g.ToShared()
	require.NoError(t, err)
	return g, e
}

func attachView(t *testing.T, desc SharedDescriptor) *Graph {
	t.Helper()
	v, err := FromShared(desc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestShared(t *testing.T) {
	weighted := [][]float64{{0, 1, 2}, {1, 2, 0.5}, {2, 3, 1}, {3, 3, 4}, {5, 4, 1}}

	t.Run("RoundTrip", func(t *testing.T) {
		g, e := exportGraph(t, weighted)

		desc := e.Descriptor()
		assert.Equal(t, g.NumVertices(), desc.N)
		assert.Equal(t, g.NumEdges(), desc.M)
		assert.Equal(t, g.Volume(), desc.Volume)
		assert.True(t, desc.Weighted)
		assert.Len(t, desc.Arrays, 7)
		assert.Equal(t, ElemUint64, desc.Arrays[ArrayRowStart].Type)
		assert.Equal(t, ElemUint32, desc.Arrays[ArrayColIndex].Type)
		assert.Equal(t, ElemFloat64, desc.Arrays[ArrayDegree].Type)

		v := attachView(t, desc)
		assert.True(t, v.Shared())
		assert.False(t, g.Shared())
		assert.False(t, v.Stale())

		assert.Equal(t, g.RowStart(), v.RowStart())
		assert.Equal(t, g.ColIndex(), v.ColIndex())
		assert.Equal(t, g.Weights(), v.Weights())
		assert.Equal(t, g.Weighted(), v.Weighted())

		gs, err := g.Statistics()
		require.NoError(t, err)
		vs, err := v.Statistics()
		require.NoError(t, err)
		assert.Equal(t, gs, vs)

		for _, r := range [][]uint32{{0}, {0, 1}, {4, 5}, {0, 1, 2, 3, 4, 5}, nil} {
			want, err := g.Score(r)
			require.NoError(t, err)
			got, err := v.Score(r)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		c, err := v.ConnectedComponents()
		require.NoError(t, err)
		assert.Equal(t, 2, c.Count)
	})

	t.Run("DescriptorIsPortable", func(t *testing.T) {
		g, e := exportGraph(t, weighted)

		raw, err := json.Marshal(e.Descriptor())
		require.NoError(t, err)

		var desc SharedDescriptor
		require.NoError(t, json.Unmarshal(raw, &desc))

		v := attachView(t, desc)
		assert.Equal(t, g.ColIndex(), v.ColIndex())
	})

	t.Run("ViewIsReadOnly", func(t *testing.T) {
		_, e := exportGraph(t, weighted)
		v := attachView(t, e.Descriptor())

		err := v.DiscardWeights()
		assert.ErrorIs(t, err, ErrReadOnly)
		assert.ErrorIs(t, err, ErrInconsistentState)

		c, err := v.Clone()
		require.NoError(t, err)
		assert.False(t, c.Shared())
		require.NoError(t, c.DiscardWeights())
		assert.True(t, v.Weighted())
	})

	t.Run("MutationMakesExportsStale", func(t *testing.T) {
		g, e := exportGraph(t, weighted)
		old := e.Descriptor()
		v := attachView(t, old)

		require.NoError(t, g.DiscardWeights())

		assert.True(t, e.Stale())
		assert.True(t, v.Stale())

		_, err := FromShared(old)
		assert.ErrorIs(t, err, ErrStaleDescriptor)
		assert.ErrorIs(t, err, ErrInconsistentState)

		fresh, err := g.ToShared()
		require.NoError(t, err)
		nv := attachView(t, fresh.Descriptor())
		assert.False(t, nv.Weighted())
		assert.Equal(t, g.Volume(), nv.Volume())
	})

	t.Run("CloseView", func(t *testing.T) {
		_, e := exportGraph(t, weighted)

		v, err := FromShared(e.Descriptor())
		require.NoError(t, err)
		require.NoError(t, v.Close())
		require.NoError(t, v.Close())

		_, err = v.Neighbors(0)
		assert.ErrorIs(t, err, ErrClosed)
		assert.True(t, v.Stale())
	})

	t.Run("CloseExport", func(t *testing.T) {
		_, e := exportGraph(t, weighted)
		desc := e.Descriptor()
		v := attachView(t, desc)

		require.NoError(t, e.Close())
		require.NoError(t, e.Close())
		assert.True(t, e.Stale())

		_, err := os.Stat(desc.Handle)
		assert.True(t, os.IsNotExist(err))

		_, err = FromShared(desc)
		assert.ErrorIs(t, err, os.ErrNotExist)

		// Attached views keep their mapping.
		nb, err := v.Neighbors(1)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 2}, nb)
	})

	t.Run("OwnerCloseReleasesExports", func(t *testing.T) {
		g := mustTuples(t, weighted, WithSharedDir(t.TempDir()))

		a, err := g.ToShared()
		require.NoError(t, err)
		b, err := g.ToShared()
		require.NoError(t, err)
		assert.NotEqual(t, a.Descriptor().Handle, b.Descriptor().Handle)

		require.NoError(t, g.Close())
		assert.True(t, a.Stale())
		assert.True(t, b.Stale())
		assert.NoFileExists(t, a.Descriptor().Handle)
		assert.NoFileExists(t, b.Descriptor().Handle)
	})

	t.Run("RejectsDamagedDescriptor", func(t *testing.T) {
		_, e := exportGraph(t, weighted)

		desc := e.Descriptor()
		desc.N = 0
		_, err := FromShared(desc)
		assert.ErrorIs(t, err, ErrInconsistentState)

		desc = e.Descriptor()
		desc.N++
		_, err = FromShared(desc)
		assert.ErrorIs(t, err, ErrInconsistentState)

		desc = e.Descriptor()
		delete(desc.Arrays, ArrayWeight)
		_, err = FromShared(desc)
		assert.ErrorIs(t, err, shm.ErrTypeMismatch)

		desc = e.Descriptor()
		a := desc.Arrays[ArrayDegree]
		a.Offset = uint64(desc.Size)
		desc.Arrays[ArrayDegree] = a
		_, err = FromShared(desc)
		assert.ErrorIs(t, err, shm.ErrOutOfBounds)

		desc = e.Descriptor()
		a = desc.Arrays[ArrayColIndex]
		a.Len = 1<<61 + 1
		desc.Arrays[ArrayColIndex] = a
		desc.M = a.Len
		_, err = FromShared(desc)
		assert.ErrorIs(t, err, shm.ErrOutOfBounds)

		desc = e.Descriptor()
		desc.Generation++
		_, err = FromShared(desc)
		assert.ErrorIs(t, err, ErrStaleDescriptor)

		bad := SharedDescriptor{Handle: e.Descriptor().Handle + ".missing", N: 1}
		_, err = FromShared(bad)
		assert.Error(t, err)
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
		g := mustTuples(t, weighted, WithSharedDir(t.TempDir()), WithResourceController(rc))

		_, err := g.ToShared()
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.ErrorContains(t, err, "0 of 128 bytes in use")
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("MemoryAccounting", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
		metrics := &BasicMetricsCollector{}
		_, e := exportGraph(t, weighted, WithResourceController(rc), WithMetricsCollector(metrics))

		assert.Equal(t, int64(e.Descriptor().Size), rc.MemoryUsage())
		assert.Equal(t, int64(1), metrics.GetStats().ExportCount)
		assert.Equal(t, int64(e.Descriptor().Size), metrics.GetStats().ExportTotalBytes)

		require.NoError(t, e.Close())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("ConcurrentReaders", func(t *testing.T) {
		rng := testutil.NewRNG(17)
		g, e := exportGraph(t, rng.Tuples(200, 800, true))
		desc := e.Descriptor()

		subsets := make([][]uint32, 64)
		want := make([]SetScores, len(subsets))
		for i := range subsets {
			subsets[i] = rng.Subset(g.NumVertices(), 1+rng.Intn(20))
			s, err := g.Score(subsets[i])
			require.NoError(t, err)
			want[i] = s
		}

		var eg errgroup.Group
		for w := 0; w < 8; w++ {
			eg.Go(func() error {
				v, err := FromShared(desc)
				if err != nil {
					return err
				}
				defer v.Close()

				for i, r := range subsets {
					got, err := v.Score(r)
					if err != nil {
						return err
					}
					if got != want[i] {
						t.Errorf("worker %d subset %d: got %+v, want %+v", w, i, got, want[i])
					}
				}
				return nil
			})
		}
		require.NoError(t, eg.Wait())
	})
}
