// Package returns aligns return series observed on possibly disjoint
// calendars into a dense observation matrix and standardizes it for factor
// decomposition.
package returns

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DateLayout is the key format for observation dates. ISO dates sort
// lexicographically in chronological order.
const DateLayout = time.DateOnly

// Series is one return series keyed by observation date.
type Series struct {
	ID     string
	Points map[string]float64
}

// Add records an observation, initialising the point map on first use.
func (s *Series) Add(date time.Time, value float64) {
	if s.Points == nil {
		s.Points = make(map[string]float64)
	}
	s.Points[date.Format(DateLayout)] = value
}

// AlignPolicy selects how disjoint calendars are reconciled. The policy is
// always an explicit parameter: there is no implicit default.
type AlignPolicy int

const (
	// DropMissing keeps only dates observed in every series.
	DropMissing AlignPolicy = iota

	// ForwardFill takes the union of dates and carries each series' last
	// observation forward. Rows before a series' first observation are
	// dropped.
	ForwardFill
)

// ParseAlignPolicy maps a policy name ("drop", "ffill") to its value.
func ParseAlignPolicy(name string) (AlignPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "drop":
		return DropMissing, nil
	case "ffill", "forward-fill":
		return ForwardFill, nil
	default:
		return 0, fmt.Errorf("ParseAlignPolicy: unknown policy %q", name)
	}
}

// DataAlignmentError reports series whose calendars cannot support a
// decomposition: no overlap at all, or fewer aligned rows than series.
type DataAlignmentError struct {
	Op     string
	Reason string
}

func (e *DataAlignmentError) Error() string {
	return fmt.Sprintf("%s: data alignment: %s", e.Op, e.Reason)
}

// Aligned is the dense observation matrix produced by Align: one row per
// kept date, one column per series, in the order given.
type Aligned struct {
	IDs   []string
	Dates []string
	Data  *mat.Dense
}

// Align reconciles the series' calendars under the given policy.
//
// The decomposition downstream needs at least as many observations as
// series; anything less is ill-posed and returns a DataAlignmentError
// rather than a degenerate matrix.
func Align(series []Series, policy AlignPolicy) (*Aligned, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("Align: no series")
	}
	ids := make([]string, len(series))
	for i, s := range series {
		if s.ID == "" {
			return nil, fmt.Errorf("Align: series %d has no id", i)
		}
		for j := 0; j < i; j++ {
			if ids[j] == s.ID {
				return nil, fmt.Errorf("Align: duplicate series id %q", s.ID)
			}
		}
		ids[i] = s.ID
	}

	var (
		dates []string
		data  []float64
	)
	switch policy {
	case DropMissing:
		dates, data = alignIntersection(series)
	case ForwardFill:
		dates, data = alignForwardFill(series)
	default:
		return nil, fmt.Errorf("Align: unknown alignment policy %d", policy)
	}

	if len(dates) == 0 {
		return nil, &DataAlignmentError{Op: "Align", Reason: "no overlapping dates across series"}
	}
	if len(dates) < len(series) {
		return nil, &DataAlignmentError{
			Op:     "Align",
			Reason: fmt.Sprintf("%d aligned observations for %d series, decomposition is ill-posed", len(dates), len(series)),
		}
	}

	return &Aligned{
		IDs:   ids,
		Dates: dates,
		Data:  mat.NewDense(len(dates), len(series), data),
	}, nil
}

// Standardize scales each column to zero mean and unit sample standard
// deviation over the aligned window. A constant series has no scale and is
// an error.
func (a *Aligned) Standardize() (*mat.Dense, error) {
	t, n := a.Data.Dims()
	out := mat.NewDense(t, n, nil)
	col := make([]float64, t)

	for j := 0; j < n; j++ {
		mat.Col(col, j, a.Data)
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			return nil, fmt.Errorf("Standardize: series %s has zero variance over the aligned window", a.IDs[j])
		}
		for i := 0; i < t; i++ {
			out.Set(i, j, (col[i]-mean)/std)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// alignment strategies (unexported)
// ---------------------------------------------------------------------------

func alignIntersection(series []Series) (dates []string, data []float64) {
	counts := make(map[string]int)
	for _, s := range series {
		for d := range s.Points {
			counts[d]++
		}
	}
	for d, c := range counts {
		if c == len(series) {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	data = make([]float64, 0, len(dates)*len(series))
	for _, d := range dates {
		for _, s := range series {
			data = append(data, s.Points[d])
		}
	}
	return dates, data
}

func alignForwardFill(series []Series) (dates []string, data []float64) {
	union := make(map[string]struct{})
	for _, s := range series {
		for d := range s.Points {
			union[d] = struct{}{}
		}
	}
	all := make([]string, 0, len(union))
	for d := range union {
		all = append(all, d)
	}
	sort.Strings(all)

	last := make([]float64, len(series))
	seen := make([]bool, len(series))
	row := make([]float64, len(series))

	for _, d := range all {
		complete := true
		for j, s := range series {
			if v, ok := s.Points[d]; ok {
				last[j] = v
				seen[j] = true
			}
			if !seen[j] {
				complete = false
				continue
			}
			row[j] = last[j]
		}
		if complete {
			dates = append(dates, d)
			data = append(data, row...)
		}
	}
	return dates, data
}
