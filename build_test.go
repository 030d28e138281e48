package graphlocal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphlocal/testutil"
)

func TestBuild(t *testing.T) {
	t.Run("Path", func(t *testing.T) {
		g := mustTuples(t, path4)

		assert.Equal(t, 4, g.NumVertices())
		assert.Equal(t, 6, g.NumEdges())
		assert.False(t, g.Weighted())
		assert.Equal(t, []uint64{0, 1, 3, 5, 6}, g.RowStart())
		assert.Equal(t, []uint32{1, 0, 2, 1, 3, 2}, g.ColIndex())
		assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, g.Weights())
	})

	t.Run("VertexCountFromMaxID", func(t *testing.T) {
		g := mustTuples(t, [][]float64{{3, 5}})
		assert.Equal(t, 6, g.NumVertices())
		assert.Equal(t, 2, g.NumEdges())
	})

	t.Run("SymmetrizeKeepsLargerWeight", func(t *testing.T) {
		g := mustTuples(t, [][]float64{{0, 1, 2}, {1, 0, 5}, {1, 2, 3}})

		assert.True(t, g.Weighted())
		assert.Equal(t, []uint32{1, 0, 2, 1}, g.ColIndex())
		assert.Equal(t, []float64{5, 5, 3, 3}, g.Weights())
	})

	t.Run("RepeatedEntriesAreSummed", func(t *testing.T) {
		g := mustTuples(t, [][]float64{{0, 1, 1}, {0, 1, 1}})
		assert.Equal(t, []float64{2, 2}, g.Weights())

		g = mustTuples(t, [][]float64{{0, 1, 1}, {0, 1, 1}, {1, 0, 3}})
		assert.Equal(t, []float64{3, 3}, g.Weights())
	})

	t.Run("SelfLoopStoredOnce", func(t *testing.T) {
		g := mustTuples(t, [][]float64{{0, 0, 2}, {0, 1}})

		assert.Equal(t, 3, g.NumEdges())
		assert.Equal(t, []uint32{0, 1, 0}, g.ColIndex())
		assert.Equal(t, []float64{2, 1, 1}, g.Weights())

		d, err := g.Degree(0)
		require.NoError(t, err)
		assert.Equal(t, 3.0, d)
	})

	t.Run("ZeroWeightIsStored", func(t *testing.T) {
		g := mustTuples(t, [][]float64{{0, 1, 0}, {1, 2}})

		assert.Equal(t, 4, g.NumEdges())
		assert.True(t, g.Weighted())
		assert.Equal(t, 2.0, g.Volume())
	})

	t.Run("New", func(t *testing.T) {
		g, err := New([]Edge{{Source: 0, Target: 1, Weight: 1}, {Source: 2, Target: 1, Weight: 1}})
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 1, 3, 4}, g.RowStart())
	})

	t.Run("FromEdgeListMatchesFromTuples", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		src, dst, w := rng.EdgeList(30, 90, true)

		tuples := make([][]float64, len(src))
		for i := range src {
			tuples[i] = []float64{float64(src[i]), float64(dst[i]), w[i]}
		}

		a, err := FromEdgeList(src, dst, w)
		require.NoError(t, err)
		b := mustTuples(t, tuples)

		assert.Equal(t, b.RowStart(), a.RowStart())
		assert.Equal(t, b.ColIndex(), a.ColIndex())
		assert.Equal(t, b.Weights(), a.Weights())

		u, err := FromEdgeList([]int64{0, 1}, []int64{1, 2}, nil)
		require.NoError(t, err)
		assert.False(t, u.Weighted())
	})
}

func TestBuildValidation(t *testing.T) {
	testCases := []struct {
		name   string
		tuples [][]float64
		index  int
	}{
		{"ArityTooSmall", [][]float64{{0, 1}, {2}}, 1},
		{"ArityTooLarge", [][]float64{{0, 1, 1, 1}}, 0},
		{"NegativeSource", [][]float64{{0, 1}, {-1, 2}}, 1},
		{"NegativeTarget", [][]float64{{0, -3}}, 0},
		{"FractionalID", [][]float64{{0.5, 1}}, 0},
		{"NaNID", [][]float64{{math.NaN(), 1}}, 0},
		{"NegativeWeight", [][]float64{{0, 1, 1}, {1, 2, -1}}, 1},
		{"NaNWeight", [][]float64{{0, 1, math.NaN()}}, 0},
		{"InfWeight", [][]float64{{0, 1, math.Inf(1)}}, 0},
		{"Empty", nil, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := &BasicMetricsCollector{}
			g, err := FromTuples(tc.tuples, WithMetricsCollector(metrics))

			require.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, g)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.index, ve.Index)
			assert.NotEmpty(t, ve.Reason)

			assert.Equal(t, int64(1), metrics.GetStats().BuildErrors)
		})
	}

	t.Run("EdgeListLengthMismatch", func(t *testing.T) {
		_, err := FromEdgeList([]int64{0, 1}, []int64{1}, nil)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = FromEdgeList([]int64{0, 1}, []int64{1, 2}, []float64{1})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = FromEdgeList([]int64{0, -1}, []int64{1, 2}, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBuildInvariants(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(40)
		g := mustTuples(t, rng.Tuples(n, rng.Intn(4*n), i%2 == 0))

		rs := g.RowStart()
		require.Len(t, rs, g.NumVertices()+1)
		require.Equal(t, uint64(0), rs[0])
		require.Equal(t, uint64(g.NumEdges()), rs[g.NumVertices()])

		stored := map[[2]uint32]float64{}
		for u := 0; u < g.NumVertices(); u++ {
			require.LessOrEqual(t, rs[u], rs[u+1])
			nb, err := g.Neighbors(uint32(u))
			require.NoError(t, err)
			w, err := g.NeighborWeights(uint32(u))
			require.NoError(t, err)
			for k, v := range nb {
				require.Less(t, int(v), g.NumVertices())
				if k > 0 {
					require.Less(t, nb[k-1], v)
				}
				stored[[2]uint32{uint32(u), v}] = w[k]
			}
		}

		for e, w := range stored {
			back, ok := stored[[2]uint32{e[1], e[0]}]
			require.True(t, ok, "missing reverse of %v", e)
			require.Equal(t, w, back)
		}
	}
}
