package graphlocal

import "fmt"

// LocalExtrema returns, in ascending vertex order, the vertices whose value
// is no greater than the value of every neighbor, together with those
// values. With strict the comparison is strictly less; with reverse the
// scan looks for maxima instead. Self-loops are ignored and isolated
// vertices always qualify.
//
// values must hold one entry per vertex.
func (g *Graph) LocalExtrema(values []float64, strict, reverse bool) ([]uint32, []float64, error) {
	if err := g.ready(); err != nil {
		return nil, nil, err
	}
	if len(values) != g.n {
		return nil, nil, fmt.Errorf("%w: %d values for %d vertices", ErrIndexOutOfRange, len(values), g.n)
	}

	factor := 1.0
	if reverse {
		factor = -1
	}

	var (
		ids  []uint32
		vals []float64
	)
	for i := 0; i < g.n; i++ {
		vi := factor * values[i]
		ok := true
		for k := g.rowStart[i]; k < g.rowStart[i+1]; k++ {
			j := g.colIndex[k]
			if int(j) == i {
				continue
			}
			vj := factor * values[j]
			if (strict && !(vi < vj)) || (!strict && !(vi <= vj)) {
				ok = false
				break
			}
		}
		if ok {
			ids = append(ids, uint32(i))
			vals = append(vals, values[i])
		}
	}

	return ids, vals, nil
}
