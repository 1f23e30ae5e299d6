// Package linalg isolates the dense linear algebra used by the analytics
// engines behind a small interface so the backend can be swapped without
// touching the factor or regression code.
package linalg

import "gonum.org/v1/gonum/mat"

// Backend performs the decompositions and solves the engines need.
//
// EigenSym factorizes a symmetric matrix and returns its eigenvalues in
// ascending order together with the matching orthonormal eigenvectors as
// columns. LeastSquares solves min ||design*x - target|| and returns the
// coefficient vector.
type Backend interface {
	EigenSym(a *mat.SymDense) (values []float64, vectors *mat.Dense, err error)
	LeastSquares(design *mat.Dense, target []float64) ([]float64, error)
}

// Default returns the gonum-backed implementation.
func Default() Backend {
	return Gonum{}
}
