// Package factor extracts principal risk factors from aligned return
// matrices by eigen-decomposition of their covariance or correlation
// matrix, and attributes each series to the retained factors by least
// squares.
package factor

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/bondfactor/config"
	"github.com/meenmo/bondfactor/linalg"
)

// MatrixKind selects the scatter matrix to decompose.
type MatrixKind int

const (
	Covariance MatrixKind = iota
	Correlation
)

func (k MatrixKind) String() string {
	switch k {
	case Covariance:
		return "covariance"
	case Correlation:
		return "correlation"
	default:
		return fmt.Sprintf("MatrixKind(%d)", int(k))
	}
}

// ParseMatrixKind maps a kind name ("covariance", "correlation") to its
// value.
func ParseMatrixKind(name string) (MatrixKind, error) {
	switch name {
	case "covariance", "cov":
		return Covariance, nil
	case "correlation", "corr":
		return Correlation, nil
	default:
		return 0, fmt.Errorf("ParseMatrixKind: unknown matrix kind %q", name)
	}
}

// NumericalInstabilityError reports an eigendecomposition the backend could
// not complete. Mildly negative eigenvalues from floating-point rounding are
// not errors: they are clipped to zero and the model is flagged degraded.
type NumericalInstabilityError struct {
	Op     string
	Reason string
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("%s: numerical instability: %s", e.Op, e.Reason)
}

// Options controls the decomposition. Zero values fall back to the package
// configuration and the default backend.
type Options struct {
	Kind MatrixKind

	// VarianceThreshold is the cumulative variance ratio at which factor
	// retention stops.
	VarianceThreshold float64

	Backend linalg.Backend
	Logger  *logrus.Logger
}

// Model is a completed decomposition.
//
// Eigenvalues are sorted descending and clipped at zero; Loadings holds the
// full orthonormal eigenvector basis, column k paired with eigenvalue k.
// Each column's sign is fixed so that its largest-magnitude entry is
// positive, making results reproducible across runs and backends. Degraded
// is set when clipping occurred.
type Model struct {
	Kind             MatrixKind
	Eigenvalues      []float64
	VarianceRatios   []float64
	CumulativeRatios []float64
	Loadings         *mat.Dense
	Retained         int
	Degraded         bool
}

// Decompose eigen-decomposes the covariance or correlation matrix of data,
// whose rows are aligned observations and columns are series. Retention
// keeps the smallest number of leading components whose cumulative variance
// ratio reaches opts.VarianceThreshold.
func Decompose(data *mat.Dense, opts Options) (*Model, error) {
	if data == nil {
		return nil, fmt.Errorf("Decompose: nil data matrix")
	}
	t, n := data.Dims()
	if n < 2 {
		return nil, fmt.Errorf("Decompose: need at least 2 series, got %d", n)
	}
	if t < n {
		return nil, fmt.Errorf("Decompose: %d observations for %d series, decomposition is ill-posed", t, n)
	}

	if opts.VarianceThreshold == 0 {
		opts.VarianceThreshold = config.GetConfig().VarianceThreshold
	}
	if opts.VarianceThreshold < 0 || opts.VarianceThreshold > 1 {
		return nil, fmt.Errorf("Decompose: variance threshold %v outside (0, 1]", opts.VarianceThreshold)
	}
	if opts.Backend == nil {
		opts.Backend = linalg.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	var sigma mat.SymDense
	switch opts.Kind {
	case Covariance:
		stat.CovarianceMatrix(&sigma, data, nil)
	case Correlation:
		stat.CorrelationMatrix(&sigma, data, nil)
	default:
		return nil, fmt.Errorf("Decompose: unknown matrix kind %d", opts.Kind)
	}

	values, vectors, err := opts.Backend.EigenSym(&sigma)
	if err != nil {
		return nil, &NumericalInstabilityError{Op: "Decompose", Reason: err.Error()}
	}
	if len(values) != n {
		return nil, &NumericalInstabilityError{Op: "Decompose", Reason: fmt.Sprintf("backend returned %d eigenvalues for %d series", len(values), n)}
	}

	m := &Model{
		Kind:             opts.Kind,
		Eigenvalues:      make([]float64, n),
		VarianceRatios:   make([]float64, n),
		CumulativeRatios: make([]float64, n),
		Loadings:         mat.NewDense(n, n, nil),
	}

	// Backends report eigenvalues ascending; factors are ranked by explained
	// variance, descending.
	for k := 0; k < n; k++ {
		src := n - 1 - k
		lambda := values[src]
		if lambda < 0 {
			m.Degraded = true
			opts.Logger.WithFields(logrus.Fields{
				"component":  k,
				"eigenvalue": lambda,
			}).Warn("negative eigenvalue clipped to zero, matrix not positive semi-definite after rounding")
			lambda = 0
		}
		m.Eigenvalues[k] = lambda
		for i := 0; i < n; i++ {
			m.Loadings.Set(i, k, vectors.At(i, src))
		}
	}
	fixSigns(m.Loadings)

	var total float64
	for _, lambda := range m.Eigenvalues {
		total += lambda
	}
	if total == 0 {
		return nil, &NumericalInstabilityError{Op: "Decompose", Reason: "all eigenvalues zero after clipping"}
	}

	var cum float64
	m.Retained = n
	for k, lambda := range m.Eigenvalues {
		m.VarianceRatios[k] = lambda / total
		cum += m.VarianceRatios[k]
		m.CumulativeRatios[k] = cum
	}
	for k, c := range m.CumulativeRatios {
		if c >= opts.VarianceThreshold {
			m.Retained = k + 1
			break
		}
	}
	return m, nil
}

// Scores projects data onto the first k eigenvectors, giving one factor
// score per observation per component. A non-positive k means the model's
// retained count.
func (m *Model) Scores(data *mat.Dense, k int) (*mat.Dense, error) {
	k, err := m.componentCount("Scores", k)
	if err != nil {
		return nil, err
	}
	n, _ := m.Loadings.Dims()
	if data == nil {
		return nil, fmt.Errorf("Scores: nil data matrix")
	}
	if _, cols := data.Dims(); cols != n {
		return nil, fmt.Errorf("Scores: data has %d columns, model has %d series", cols, n)
	}

	var f mat.Dense
	f.Mul(data, m.Loadings.Slice(0, n, 0, k))
	return &f, nil
}

// Reconstruct maps factor scores back to series space through the first k
// eigenvectors. With the full basis this inverts Scores exactly.
func (m *Model) Reconstruct(factorScores *mat.Dense, k int) (*mat.Dense, error) {
	k, err := m.componentCount("Reconstruct", k)
	if err != nil {
		return nil, err
	}
	if factorScores == nil {
		return nil, fmt.Errorf("Reconstruct: nil factor scores")
	}
	if _, cols := factorScores.Dims(); cols != k {
		return nil, fmt.Errorf("Reconstruct: factor scores have %d columns, want %d", cols, k)
	}

	n, _ := m.Loadings.Dims()
	var x mat.Dense
	x.Mul(factorScores, m.Loadings.Slice(0, n, 0, k).T())
	return &x, nil
}

// ---------------------------------------------------------------------------
// helpers (unexported)
// ---------------------------------------------------------------------------

func (m *Model) componentCount(op string, k int) (int, error) {
	n, _ := m.Loadings.Dims()
	if k <= 0 {
		return m.Retained, nil
	}
	if k > n {
		return 0, fmt.Errorf("%s: %d components requested, model has %d", op, k, n)
	}
	return k, nil
}

// fixSigns forces each column's largest-magnitude entry positive.
// Eigenvectors are determined only up to sign; pinning one entry makes the
// basis deterministic.
func fixSigns(loadings *mat.Dense) {
	n, k := loadings.Dims()
	for j := 0; j < k; j++ {
		pivot := 0
		for i := 1; i < n; i++ {
			if math.Abs(loadings.At(i, j)) > math.Abs(loadings.At(pivot, j)) {
				pivot = i
			}
		}
		if loadings.At(pivot, j) < 0 {
			for i := 0; i < n; i++ {
				loadings.Set(i, j, -loadings.At(i, j))
			}
		}
	}
}
