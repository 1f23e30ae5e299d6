package factor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/bondfactor/linalg"
)

// RegressionResult is the least-squares attribution of one series to the
// factor scores: coefficients per factor, the coefficient of determination,
// and the residual variance SSR/(T-k). A saturated fit (T == k) has residual
// variance zero.
type RegressionResult struct {
	Coefficients     []float64
	R2               float64
	ResidualVariance float64
}

// Attribute regresses every column of data on the factor scores by ordinary
// least squares, without an intercept: standardized inputs are already
// centered. Results are in column order.
//
// The coefficients are exposure estimates only; naming factors is the
// caller's interpretation, not the engine's.
func Attribute(data, factorScores *mat.Dense, backend linalg.Backend) ([]RegressionResult, error) {
	if data == nil || factorScores == nil {
		return nil, fmt.Errorf("Attribute: nil input matrix")
	}
	t, n := data.Dims()
	ft, k := factorScores.Dims()
	if t != ft {
		return nil, fmt.Errorf("Attribute: data has %d rows, factor scores have %d", t, ft)
	}
	if backend == nil {
		backend = linalg.Default()
	}

	results := make([]RegressionResult, n)
	target := make([]float64, t)
	fitted := make([]float64, t)

	for j := 0; j < n; j++ {
		mat.Col(target, j, data)

		coeffs, err := backend.LeastSquares(factorScores, target)
		if err != nil {
			return nil, fmt.Errorf("Attribute: series %d: %w", j, err)
		}

		for i := 0; i < t; i++ {
			fitted[i] = 0
			for f := 0; f < k; f++ {
				fitted[i] += factorScores.At(i, f) * coeffs[f]
			}
		}

		mean := stat.Mean(target, nil)
		var ssr, sst float64
		for i := 0; i < t; i++ {
			r := target[i] - fitted[i]
			ssr += r * r
			d := target[i] - mean
			sst += d * d
		}
		if sst == 0 {
			return nil, fmt.Errorf("Attribute: series %d has zero variance", j)
		}

		res := RegressionResult{Coefficients: coeffs, R2: 1 - ssr/sst}
		if t > k {
			res.ResidualVariance = ssr / float64(t-k)
		}
		results[j] = res
	}
	return results, nil
}
