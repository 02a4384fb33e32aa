package spatial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Mean aggregates the source metric as the arithmetic mean over the
// neighbors. An empty neighborhood yields NaN, the expected-absence value.
func Mean(values []float64) Aggregate {
	return func(ids []int) (float64, error) {
		if len(ids) == 0 {
			return math.NaN(), nil
		}
		sample := make([]float64, len(ids))
		for i, id := range ids {
			sample[i] = values[id]
		}
		return stat.Mean(sample, nil), nil
	}
}

// RegressionIntercept aggregates the source metric as the intercept of an
// ordinary least-squares fit of value on (built surface, room count) over
// the neighbors: a size-independent local level estimate. Neighborhoods too
// small for the three-parameter fit fall back to the mean.
func RegressionIntercept(values, surfaces, rooms []float64) Aggregate {
	mean := Mean(values)
	return func(ids []int) (float64, error) {
		if len(ids) < 3 {
			return mean(ids)
		}

		x := mat.NewDense(len(ids), 3, nil)
		y := mat.NewVecDense(len(ids), nil)
		for i, id := range ids {
			x.Set(i, 0, 1)
			x.Set(i, 1, surfaces[id])
			x.Set(i, 2, rooms[id])
			y.SetVec(i, values[id])
		}

		var qr mat.QR
		qr.Factorize(x)
		var beta mat.VecDense
		if err := qr.SolveVecTo(&beta, false, y); err != nil {
			// Collinear neighborhood (e.g. identical surfaces); the
			// mean is the best available local level.
			v, merr := mean(ids)
			if merr != nil {
				return 0, fmt.Errorf("regression fallback: %w", merr)
			}
			return v, nil
		}
		return beta.AtVec(0), nil
	}
}
