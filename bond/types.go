package bond

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")
)

// InvalidParametersError reports bond terms that cannot describe a real
// instrument. It is raised at construction or valuation, never defaulted.
type InvalidParametersError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("%s: invalid bond parameters: %s %s", e.Op, e.Field, e.Reason)
}

// DiscountCurve supplies annualized spot rates by tenor in years.
type DiscountCurve interface {
	Rate(t float64) float64
}

// Terms describes a bullet bond in period space.
//
// CouponRate is the annual coupon as a decimal (0.05 for 5%), Frequency the
// number of coupon payments per year, Periods the total coupon periods to
// maturity, and Par the redemption value.
type Terms struct {
	CouponRate float64
	Frequency  int
	Periods    int
	Par        float64
}

// Validate checks that the terms describe a priceable bond.
func (t Terms) Validate() error {
	return t.validate("Terms.Validate")
}

func (t Terms) validate(op string) error {
	if t.Frequency <= 0 {
		return &InvalidParametersError{Op: op, Field: "Frequency", Reason: "must be positive"}
	}
	if t.Periods <= 0 {
		return &InvalidParametersError{Op: op, Field: "Periods", Reason: "must be positive"}
	}
	if t.Par <= 0 {
		return &InvalidParametersError{Op: op, Field: "Par", Reason: "must be positive"}
	}
	if t.CouponRate < 0 {
		return &InvalidParametersError{Op: op, Field: "CouponRate", Reason: "must not be negative"}
	}
	return nil
}

// validateYield rejects yields at or below -100% per period, where the
// discounting base 1+y/m stops being positive.
func (t Terms) validateYield(op string, yield float64) error {
	if 1.0+yield/float64(t.Frequency) <= 0 {
		return &InvalidParametersError{Op: op, Field: "Yield", Reason: fmt.Sprintf("%g is at or below -100%% per period", yield)}
	}
	return nil
}

// YearsToMaturity returns the bond's maturity in years.
func (t Terms) YearsToMaturity() float64 {
	return float64(t.Periods) / float64(t.Frequency)
}

// Cashflow is a single cash payment in a bond's schedule.
//
// Period is the 1-based coupon period index and Years its time in years
// (Period / Frequency). Amounts are in the same units as Par.
type Cashflow struct {
	Period    int
	Years     float64
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Schedule expands terms into the bond's cash-flow schedule: a coupon of
// CouponRate/Frequency × Par at each of the first Periods-1 periods, and
// coupon plus Par at the final period. The schedule is a pure function of
// the terms; times are strictly increasing and positive.
func Schedule(t Terms) ([]Cashflow, error) {
	if err := t.validate("Schedule"); err != nil {
		return nil, err
	}

	m := float64(t.Frequency)
	coupon := t.CouponRate / m * t.Par

	cfs := make([]Cashflow, t.Periods)
	for k := 1; k <= t.Periods; k++ {
		cf := Cashflow{
			Period: k,
			Years:  float64(k) / m,
			Coupon: coupon,
		}
		if k == t.Periods {
			cf.Principal = t.Par
		}
		cfs[k-1] = cf
	}
	return cfs, nil
}
