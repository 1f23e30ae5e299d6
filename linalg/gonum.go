package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gonum implements Backend on top of gonum/mat.
type Gonum struct{}

// EigenSym returns the eigenvalues of a in ascending order and the matching
// eigenvectors as columns.
func (Gonum) EigenSym(a *mat.SymDense) ([]float64, *mat.Dense, error) {
	if a == nil {
		return nil, nil, fmt.Errorf("EigenSym: nil matrix")
	}

	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, nil, fmt.Errorf("EigenSym: factorization did not converge")
	}

	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)
	return values, &vectors, nil
}

// LeastSquares returns the minimum-norm solution of design*x = target.
func (Gonum) LeastSquares(design *mat.Dense, target []float64) ([]float64, error) {
	if design == nil {
		return nil, fmt.Errorf("LeastSquares: nil design matrix")
	}
	rows, cols := design.Dims()
	if len(target) != rows {
		return nil, fmt.Errorf("LeastSquares: target length %d does not match %d design rows", len(target), rows)
	}
	if rows < cols {
		return nil, fmt.Errorf("LeastSquares: underdetermined system (%d rows, %d columns)", rows, cols)
	}

	b := mat.NewVecDense(rows, target)
	var sol mat.VecDense
	if err := sol.SolveVec(design, b); err != nil {
		return nil, fmt.Errorf("LeastSquares: %w", err)
	}

	coeffs := make([]float64, cols)
	for i := range coeffs {
		coeffs[i] = sol.AtVec(i)
	}
	return coeffs, nil
}
