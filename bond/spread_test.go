package bond_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/bondfactor/bond"
	"github.com/meenmo/bondfactor/curve"
)

// spreadPrice discounts the schedule at curve rate plus z, independently of
// the solver under test.
func spreadPrice(t *testing.T, terms bond.Terms, crv *curve.Curve, z float64) float64 {
	t.Helper()

	cfs, err := bond.Schedule(terms)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	m := float64(terms.Frequency)
	price := 0.0
	for _, cf := range cfs {
		price += cf.Amount() * math.Pow(1.0+(crv.Rate(cf.Years)+z)/m, -float64(cf.Period))
	}
	return price
}

func slopedCurve(t *testing.T) *curve.Curve {
	t.Helper()
	crv, err := curve.New([]float64{1, 2, 5, 10, 30}, []float64{0.030, 0.032, 0.036, 0.040, 0.044})
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	return crv
}

func TestSpreadFromPriceRoundTrip(t *testing.T) {
	t.Parallel()
	crv := slopedCurve(t)

	cases := []struct {
		name   string
		terms  bond.Terms
		spread float64
	}{
		{"ten year wide", bond.Terms{CouponRate: 0.05, Frequency: 2, Periods: 20, Par: 100}, 0.0075},
		{"ten year tight", bond.Terms{CouponRate: 0.05, Frequency: 2, Periods: 20, Par: 100}, -0.0020},
		{"two year", bond.Terms{CouponRate: 0.03, Frequency: 4, Periods: 8, Par: 100}, 0.0150},
		{"zero coupon", bond.Terms{CouponRate: 0, Frequency: 2, Periods: 20, Par: 100}, 0.0040},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			target := spreadPrice(t, tc.terms, crv, tc.spread)

			got, err := bond.SpreadFromPrice(tc.terms, crv, target)
			if err != nil {
				t.Fatalf("SpreadFromPrice: %v", err)
			}
			if math.Abs(got.Spread-tc.spread) > 1e-9 {
				t.Fatalf("spread = %.12f, want %.12f", got.Spread, tc.spread)
			}
			if got.Price != target {
				t.Fatalf("Price = %v, want echoed target %v", got.Price, target)
			}
			if got.Iterations <= 0 {
				t.Fatalf("Iterations = %d, want positive", got.Iterations)
			}
		})
	}
}

func TestSpreadZeroAtCurvePrice(t *testing.T) {
	t.Parallel()
	crv := slopedCurve(t)
	terms := bond.Terms{CouponRate: 0.04, Frequency: 2, Periods: 20, Par: 100}

	price, err := bond.PriceFromCurve(terms, crv)
	if err != nil {
		t.Fatalf("PriceFromCurve: %v", err)
	}
	got, err := bond.SpreadFromPrice(terms, crv, price)
	if err != nil {
		t.Fatalf("SpreadFromPrice: %v", err)
	}
	if math.Abs(got.Spread) > 1e-9 {
		t.Fatalf("spread at the curve price = %.12f, want 0", got.Spread)
	}
}

func TestSpreadMatchesFlatYieldGap(t *testing.T) {
	t.Parallel()

	// On a flat curve the spread is exactly the yield gap to the curve level.
	crv, err := curve.New([]float64{1, 5, 10, 30}, []float64{0.04, 0.04, 0.04, 0.04})
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	terms := bond.Terms{CouponRate: 0.05, Frequency: 2, Periods: 20, Par: 100}

	price, err := bond.PriceFromYield(terms, 0.0450)
	if err != nil {
		t.Fatalf("PriceFromYield: %v", err)
	}
	got, err := bond.SpreadFromPrice(terms, crv, price)
	if err != nil {
		t.Fatalf("SpreadFromPrice: %v", err)
	}
	if math.Abs(got.Spread-0.0050) > 1e-9 {
		t.Fatalf("spread = %.12f, want 0.005", got.Spread)
	}
}

func TestSpreadSign(t *testing.T) {
	t.Parallel()
	crv := slopedCurve(t)
	terms := bond.Terms{CouponRate: 0.04, Frequency: 2, Periods: 20, Par: 100}

	curvePrice, err := bond.PriceFromCurve(terms, crv)
	if err != nil {
		t.Fatalf("PriceFromCurve: %v", err)
	}

	cheap, err := bond.SpreadFromPrice(terms, crv, curvePrice-2.0)
	if err != nil {
		t.Fatalf("SpreadFromPrice(cheap): %v", err)
	}
	if cheap.Spread <= 0 {
		t.Fatalf("spread for a price below the curve price = %g, want positive", cheap.Spread)
	}

	rich, err := bond.SpreadFromPrice(terms, crv, curvePrice+2.0)
	if err != nil {
		t.Fatalf("SpreadFromPrice(rich): %v", err)
	}
	if rich.Spread >= 0 {
		t.Fatalf("spread for a price above the curve price = %g, want negative", rich.Spread)
	}
}

func TestSpreadValidation(t *testing.T) {
	t.Parallel()
	crv := slopedCurve(t)
	terms := bond.Terms{CouponRate: 0.04, Frequency: 2, Periods: 20, Par: 100}

	if _, err := bond.SpreadFromPrice(terms, nil, 100); !errors.Is(err, bond.ErrNilCurve) {
		t.Fatalf("nil curve: err = %v, want ErrNilCurve", err)
	}

	var invalid *bond.InvalidParametersError
	if _, err := bond.SpreadFromPrice(terms, crv, 0); !errors.As(err, &invalid) {
		t.Fatalf("zero price: err = %v, want InvalidParametersError", err)
	}
	if _, err := bond.SpreadFromPrice(bond.Terms{Frequency: 2, Periods: 0, Par: 100}, crv, 100); !errors.As(err, &invalid) {
		t.Fatalf("zero periods: err = %v, want InvalidParametersError", err)
	}
}
