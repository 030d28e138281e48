package graphlocal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphlocal/testutil"
)

func TestLocalExtrema(t *testing.T) {
	t.Run("ConstantValues", func(t *testing.T) {
		g := mustTuples(t, path4)
		values := []float64{7, 7, 7, 7}

		ids, vals, err := g.LocalExtrema(values, false, false)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 3}, ids)
		assert.Equal(t, values, vals)

		ids, _, err = g.LocalExtrema(values, true, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("MinimaAndMaxima", func(t *testing.T) {
		g := mustTuples(t, path4)
		values := []float64{3, 1, 2, 0}

		ids, vals, err := g.LocalExtrema(values, false, false)
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 3}, ids)
		assert.Equal(t, []float64{1, 0}, vals)

		ids, vals, err = g.LocalExtrema(values, true, true)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 2}, ids)
		assert.Equal(t, []float64{3, 2}, vals)
	})

	t.Run("IsolatedAndSelfLoop", func(t *testing.T) {
		// Vertex 0 has a self-loop, vertex 3 is isolated.
		g := mustTuples(t, [][]float64{{0, 0}, {0, 1}, {1, 2}, {4, 2}})
		values := []float64{0, 1, 1, 5, 1}

		ids, _, err := g.LocalExtrema(values, true, false)
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 3}, ids)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		g := mustTuples(t, path4)

		_, _, err := g.LocalExtrema([]float64{1, 2}, false, false)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.EqualError(t, err, "index out of range: 2 values for 4 vertices")

		var ioe *IndexOutOfRangeError
		assert.NotErrorAs(t, err, &ioe)
	})

	t.Run("ReverseEqualsNegated", func(t *testing.T) {
		rng := testutil.NewRNG(11)

		for i := 0; i < 200; i++ {
			n := 1 + rng.Intn(40)
			g := mustTuples(t, rng.Tuples(n, rng.Intn(3*n), false))
			values := rng.Landscape(g.NumVertices(), 4)

			negated := make([]float64, len(values))
			for k, v := range values {
				negated[k] = -v
			}

			strict := i%2 == 0
			a, av, err := g.LocalExtrema(values, strict, true)
			require.NoError(t, err)
			b, bv, err := g.LocalExtrema(negated, strict, false)
			require.NoError(t, err)

			require.Equal(t, a, b)
			for k := range av {
				require.Equal(t, -av[k], bv[k])
			}
		}
	})
}
