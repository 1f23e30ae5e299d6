// Package curve provides the zero curve used for bond valuation and
// key-rate sensitivity work: tenors in years mapped to annualized rates,
// linear interpolation between pillars, flat extrapolation beyond them.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/meenmo/bondfactor/utils"
)

// CurveError reports an invalid curve construction or lookup.
type CurveError struct {
	Op     string
	Reason string
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Curve maps tenors (years) to annualized rates (decimal).
//
// A Curve is immutable once constructed; bump operations return new curves.
type Curve struct {
	tenors []float64
	rates  []float64
}

// New builds a curve from parallel tenor/rate slices.
//
// Tenors must be non-negative, strictly increasing and free of duplicates;
// rates must be finite. The input slices are copied.
func New(tenors, rates []float64) (*Curve, error) {
	if len(tenors) == 0 {
		return nil, &CurveError{Op: "New", Reason: "at least one tenor is required"}
	}
	if len(tenors) != len(rates) {
		return nil, &CurveError{Op: "New", Reason: fmt.Sprintf("got %d tenors and %d rates", len(tenors), len(rates))}
	}
	if tenors[0] < 0 {
		return nil, &CurveError{Op: "New", Reason: fmt.Sprintf("tenor %g is negative", tenors[0])}
	}
	for i, t := range tenors {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, &CurveError{Op: "New", Reason: fmt.Sprintf("tenor at index %d is not finite", i)}
		}
		if i > 0 && t <= tenors[i-1] {
			return nil, &CurveError{Op: "New", Reason: fmt.Sprintf("tenors must be strictly increasing: %g follows %g", t, tenors[i-1])}
		}
	}
	for i, r := range rates {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, &CurveError{Op: "New", Reason: fmt.Sprintf("rate at index %d is not finite", i)}
		}
	}

	c := &Curve{
		tenors: make([]float64, len(tenors)),
		rates:  make([]float64, len(rates)),
	}
	copy(c.tenors, tenors)
	copy(c.rates, rates)
	return c, nil
}

// FromQuotes builds a curve from tenor strings ("3M", "10Y") mapped to rates.
func FromQuotes(quotes map[string]float64) (*Curve, error) {
	if len(quotes) == 0 {
		return nil, &CurveError{Op: "FromQuotes", Reason: "at least one quote is required"}
	}

	type pillar struct {
		years float64
		rate  float64
	}
	pillars := make([]pillar, 0, len(quotes))
	for tenor, rate := range quotes {
		years, err := ParseTenor(tenor)
		if err != nil {
			return nil, &CurveError{Op: "FromQuotes", Reason: fmt.Sprintf("tenor %q: %v", tenor, err)}
		}
		pillars = append(pillars, pillar{years: years, rate: rate})
	}
	sort.Slice(pillars, func(i, j int) bool { return pillars[i].years < pillars[j].years })

	tenors := make([]float64, len(pillars))
	rates := make([]float64, len(pillars))
	for i, p := range pillars {
		tenors[i] = p.years
		rates[i] = p.rate
	}
	return New(tenors, rates)
}

// Rate returns the annualized rate at tenor t (years).
//
//	t on a pillar        -> the pillar rate
//	t between pillars    -> linear interpolation between the bracketing pillars
//	t outside the range  -> flat extrapolation from the nearest pillar
func (c *Curve) Rate(t float64) float64 {
	if len(c.tenors) == 1 {
		return c.rates[0]
	}
	if t <= c.tenors[0] {
		return c.rates[0]
	}
	last := len(c.tenors) - 1
	if t >= c.tenors[last] {
		return c.rates[last]
	}

	i, j := findBracketOrBoundary(c.tenors, t)
	t1, t2 := c.tenors[i], c.tenors[j]
	r1, r2 := c.rates[i], c.rates[j]
	if t2 == t1 {
		return r1
	}
	return utils.RoundTo(r1+(r2-r1)*(t-t1)/(t2-t1), 12)
}

// DiscountFactor returns (1 + r(t)/freq)^(-freq*t), the discount factor at
// tenor t under periodic compounding. freq must be positive.
func (c *Curve) DiscountFactor(t float64, freq int) float64 {
	if t <= 0 {
		return 1.0
	}
	m := float64(freq)
	return math.Pow(1.0+c.Rate(t)/m, -m*t)
}

// BumpTenor returns a new curve with the rate at pillar index i shifted by
// delta (decimal, e.g. 1e-4 for one basis point). All other pillars are
// unchanged.
func (c *Curve) BumpTenor(i int, delta float64) (*Curve, error) {
	if i < 0 || i >= len(c.tenors) {
		return nil, &CurveError{Op: "BumpTenor", Reason: fmt.Sprintf("pillar index %d out of range [0,%d)", i, len(c.tenors))}
	}
	bumped := c.clone()
	bumped.rates[i] += delta
	return bumped, nil
}

// ParallelShift returns a new curve with every pillar rate shifted by delta
// (decimal).
func (c *Curve) ParallelShift(delta float64) *Curve {
	shifted := c.clone()
	for i := range shifted.rates {
		shifted.rates[i] += delta
	}
	return shifted
}

// Tenors returns a copy of the pillar tenors in years.
func (c *Curve) Tenors() []float64 {
	out := make([]float64, len(c.tenors))
	copy(out, c.tenors)
	return out
}

// Rates returns a copy of the pillar rates.
func (c *Curve) Rates() []float64 {
	out := make([]float64, len(c.rates))
	copy(out, c.rates)
	return out
}

func (c *Curve) clone() *Curve {
	out := &Curve{
		tenors: make([]float64, len(c.tenors)),
		rates:  make([]float64, len(c.rates)),
	}
	copy(out.tenors, c.tenors)
	copy(out.rates, c.rates)
	return out
}
