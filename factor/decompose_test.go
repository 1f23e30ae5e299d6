package factor_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/bondfactor/factor"
)

// stubBackend lets tests drive Decompose with fabricated eigensolver output.
type stubBackend struct {
	values  []float64
	vectors *mat.Dense
	err     error
}

func (s stubBackend) EigenSym(a *mat.SymDense) ([]float64, *mat.Dense, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.values, s.vectors, nil
}

func (s stubBackend) LeastSquares(design *mat.Dense, target []float64) ([]float64, error) {
	return nil, errors.New("stub: not implemented")
}

func testData() *mat.Dense {
	return mat.NewDense(8, 3, []float64{
		1.2, -0.3, 2.1,
		0.4, 0.8, -1.0,
		-0.7, 1.5, 0.3,
		2.0, -1.1, 0.9,
		-1.3, 0.2, 1.7,
		0.6, -0.9, -0.4,
		1.8, 1.1, 0.5,
		-0.2, -1.6, 1.2,
	})
}

func TestDecomposeProperties(t *testing.T) {
	t.Parallel()

	data := testData()
	m, err := factor.Decompose(data, factor.Options{Kind: factor.Covariance, VarianceThreshold: 0.85})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if m.Degraded {
		t.Fatal("full-rank sample marked degraded")
	}

	var sumRatio float64
	for k := 0; k < 3; k++ {
		if m.Eigenvalues[k] < 0 {
			t.Fatalf("eigenvalue %d = %v, want non-negative", k, m.Eigenvalues[k])
		}
		if k > 0 && m.Eigenvalues[k] > m.Eigenvalues[k-1] {
			t.Fatalf("eigenvalues not descending: %v", m.Eigenvalues)
		}
		if k > 0 && m.CumulativeRatios[k] < m.CumulativeRatios[k-1] {
			t.Fatalf("cumulative ratios not monotone: %v", m.CumulativeRatios)
		}
		sumRatio += m.VarianceRatios[k]
	}
	if math.Abs(sumRatio-1) > 1e-9 {
		t.Fatalf("variance ratios sum to %.12f, want 1", sumRatio)
	}
	if math.Abs(m.CumulativeRatios[2]-1) > 1e-9 {
		t.Fatalf("last cumulative ratio = %.12f, want 1", m.CumulativeRatios[2])
	}

	// Loadings form an orthonormal basis.
	var vtv mat.Dense
	vtv.Mul(m.Loadings.T(), m.Loadings)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(vtv.At(i, j)-want) > 1e-10 {
				t.Fatalf("V'V[%d][%d] = %v, want %v", i, j, vtv.At(i, j), want)
			}
		}
	}

	// Each eigenpair satisfies sigma v = lambda v against an independently
	// computed covariance matrix.
	var sigma mat.SymDense
	stat.CovarianceMatrix(&sigma, data, nil)
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			var av float64
			for j := 0; j < 3; j++ {
				av += sigma.At(i, j) * m.Loadings.At(j, k)
			}
			if want := m.Eigenvalues[k] * m.Loadings.At(i, k); math.Abs(av-want) > 1e-9 {
				t.Fatalf("component %d: (sigma v)[%d] = %v, lambda v[%d] = %v", k, i, av, i, want)
			}
		}
	}

	// Sign convention: the largest-magnitude loading of each component is
	// positive.
	for k := 0; k < 3; k++ {
		pivot := 0
		for i := 1; i < 3; i++ {
			if math.Abs(m.Loadings.At(i, k)) > math.Abs(m.Loadings.At(pivot, k)) {
				pivot = i
			}
		}
		if m.Loadings.At(pivot, k) < 0 {
			t.Fatalf("component %d: pivot loading %v is negative", k, m.Loadings.At(pivot, k))
		}
	}
}

func TestDecomposeRetention(t *testing.T) {
	t.Parallel()

	xs := []float64{1, 2, 3, 4}
	ys := []float64{1, 2, 3, 5}
	data := mat.NewDense(4, 2, nil)
	for i := range xs {
		data.Set(i, 0, xs[i])
		data.Set(i, 1, ys[i])
	}

	m, err := factor.Decompose(data, factor.Options{Kind: factor.Correlation, VarianceThreshold: 0.85})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if m.Degraded {
		t.Fatal("unexpected degraded flag")
	}
	if m.Retained != 1 {
		t.Fatalf("Retained = %d, want 1", m.Retained)
	}

	// For a 2x2 correlation matrix the leading eigenvalue is 1+rho.
	rho := stat.Correlation(xs, ys, nil)
	if want := (1 + rho) / 2; math.Abs(m.VarianceRatios[0]-want) > 1e-9 {
		t.Fatalf("leading variance ratio = %.12f, want %.12f", m.VarianceRatios[0], want)
	}
}

func TestDecomposeSignStability(t *testing.T) {
	t.Parallel()

	s := 1 / math.Sqrt(2)
	vectors := mat.NewDense(3, 3, []float64{
		0, s, s,
		0, -s, s,
		1, 0, 0,
	})
	negated := mat.NewDense(3, 3, nil)
	negated.Scale(-1, vectors)

	values := []float64{1, 2, 4}
	data := testData()

	a, err := factor.Decompose(data, factor.Options{Backend: stubBackend{values: values, vectors: vectors}})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	b, err := factor.Decompose(data, factor.Options{Backend: stubBackend{values: values, vectors: negated}})
	if err != nil {
		t.Fatalf("Decompose (negated basis): %v", err)
	}

	// Whatever signs the backend picks, the fixed convention must produce
	// identical loadings.
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a.Loadings.At(i, j) != b.Loadings.At(i, j) {
				t.Fatalf("loadings differ at [%d][%d]: %v vs %v", i, j, a.Loadings.At(i, j), b.Loadings.At(i, j))
			}
		}
	}
}

func TestDecomposeClipsNegativeEigenvalues(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	backend := stubBackend{
		values:  []float64{-1e-12, 1, 2},
		vectors: identity(3),
	}

	m, err := factor.Decompose(testData(), factor.Options{Backend: backend, Logger: logger})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if !m.Degraded {
		t.Fatal("negative eigenvalue not flagged as degraded")
	}
	if m.Eigenvalues[2] != 0 {
		t.Fatalf("clipped eigenvalue = %v, want 0", m.Eigenvalues[2])
	}
	var sum float64
	for _, r := range m.VarianceRatios {
		sum += r
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("ratios sum to %v after clipping, want 1", sum)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning for the clipped eigenvalue, got %+v", entry)
	}
}

func TestDecomposeBackendFailure(t *testing.T) {
	t.Parallel()

	_, err := factor.Decompose(testData(), factor.Options{Backend: stubBackend{err: errors.New("did not converge")}})
	if err == nil {
		t.Fatal("backend failure: expected error")
	}
	var nie *factor.NumericalInstabilityError
	if !errors.As(err, &nie) {
		t.Fatalf("error %v is not a NumericalInstabilityError", err)
	}
}

func TestDecomposeDominantFactor(t *testing.T) {
	t.Parallel()

	// Three series sharing one common factor with variance 10x the
	// idiosyncratic noise. The correlation matrix has pairwise rho = 10/11,
	// so the leading component should explain (1+2*rho)/3 of the variance.
	rng := rand.New(rand.NewPCG(1, 2))
	const obs = 600
	data := mat.NewDense(obs, 3, nil)
	scale := math.Sqrt(10)
	for i := 0; i < obs; i++ {
		common := rng.NormFloat64() * scale
		for j := 0; j < 3; j++ {
			data.Set(i, j, common+rng.NormFloat64())
		}
	}

	m, err := factor.Decompose(data, factor.Options{Kind: factor.Correlation, VarianceThreshold: 0.85})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}

	want := (1 + 2*10.0/11.0) / 3
	if math.Abs(m.VarianceRatios[0]-want) > 0.05 {
		t.Fatalf("leading variance ratio = %.4f, want %.4f +/- 0.05", m.VarianceRatios[0], want)
	}
	if m.Retained != 1 {
		t.Fatalf("Retained = %d, want 1", m.Retained)
	}
}

func TestScoresAndReconstruct(t *testing.T) {
	t.Parallel()

	data := testData()
	m, err := factor.Decompose(data, factor.Options{})
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}

	scores, err := m.Scores(data, 3)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if r, c := scores.Dims(); r != 8 || c != 3 {
		t.Fatalf("scores dims = %dx%d, want 8x3", r, c)
	}

	// The full basis is complete: projecting and mapping back reproduces the
	// data exactly.
	recon, err := m.Reconstruct(scores, 3)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for i := 0; i < 8; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(recon.At(i, j)-data.At(i, j)) > 1e-10 {
				t.Fatalf("reconstruction[%d][%d] = %v, want %v", i, j, recon.At(i, j), data.At(i, j))
			}
		}
	}

	// Non-positive k falls back to the retained count.
	def, err := m.Scores(data, 0)
	if err != nil {
		t.Fatalf("Scores(0): %v", err)
	}
	if _, c := def.Dims(); c != m.Retained {
		t.Fatalf("default scores have %d columns, want %d", c, m.Retained)
	}

	if _, err := m.Scores(data, 4); err == nil {
		t.Fatal("k beyond basis: expected error")
	}
	if _, err := m.Reconstruct(scores, 2); err == nil {
		t.Fatal("column mismatch: expected error")
	}
	if _, err := m.Scores(nil, 1); err == nil {
		t.Fatal("nil data: expected error")
	}
}

func TestDecomposeValidation(t *testing.T) {
	t.Parallel()

	if _, err := factor.Decompose(nil, factor.Options{}); err == nil {
		t.Fatal("nil data: expected error")
	}
	if _, err := factor.Decompose(mat.NewDense(5, 1, nil), factor.Options{}); err == nil {
		t.Fatal("single series: expected error")
	}
	if _, err := factor.Decompose(mat.NewDense(2, 3, nil), factor.Options{}); err == nil {
		t.Fatal("fewer observations than series: expected error")
	}
	if _, err := factor.Decompose(testData(), factor.Options{VarianceThreshold: 1.5}); err == nil {
		t.Fatal("threshold above 1: expected error")
	}
	if _, err := factor.Decompose(testData(), factor.Options{VarianceThreshold: -0.2}); err == nil {
		t.Fatal("negative threshold: expected error")
	}
	if _, err := factor.Decompose(testData(), factor.Options{Kind: factor.MatrixKind(9)}); err == nil {
		t.Fatal("unknown matrix kind: expected error")
	}
}

func TestParseMatrixKind(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]factor.MatrixKind{
		"covariance":  factor.Covariance,
		"cov":         factor.Covariance,
		"correlation": factor.Correlation,
		"corr":        factor.Correlation,
	} {
		got, err := factor.ParseMatrixKind(name)
		if err != nil {
			t.Fatalf("ParseMatrixKind(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseMatrixKind(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := factor.ParseMatrixKind("pca"); err == nil {
		t.Fatal("unknown kind: expected error")
	}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
