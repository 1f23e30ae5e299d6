package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/bondfactor/config"
)

// YieldResult is the output of YieldFromPrice.
type YieldResult struct {
	// Yield is the annualized yield (decimal) that reprices the bond.
	Yield float64
	// Price echoes the target price the solver converged to.
	Price float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// YieldFromPrice solves for the flat annualized yield y such that
// PriceFromYield(t, y) equals the target price.
//
// The solver uses Newton-Raphson with the analytic first derivative.
func YieldFromPrice(t Terms, price float64) (YieldResult, error) {
	if err := t.validate("YieldFromPrice"); err != nil {
		return YieldResult{}, err
	}
	if price <= 0 {
		return YieldResult{}, &InvalidParametersError{Op: "YieldFromPrice", Field: "Price", Reason: "must be positive"}
	}

	yield, iterations, err := solveYield(t, price)
	if err != nil {
		return YieldResult{}, err
	}
	return YieldResult{Yield: yield, Price: price, Iterations: iterations}, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

// solveYield finds y such that price(y) == target via Newton-Raphson.
func solveYield(t Terms, target float64) (float64, int, error) {
	cfg := config.GetConfig()

	// Initial guess: approximate YTM from coupon income plus straight-line
	// pull to par,
	//
	//	y0 = (C + (F−P)/n_years) / ((F+P)/2)
	annualCoupon := t.CouponRate * t.Par
	years := t.YearsToMaturity()
	y := (annualCoupon + (t.Par-target)/years) / ((t.Par + target) / 2.0)
	y = clamp(y, cfg.YieldFloor, cfg.YieldCeiling)

	for iter := 0; iter < cfg.YieldMaxIterations; iter++ {
		price, dPdy := priceAndDeriv(t, y)
		f := price - target

		if math.Abs(f) < cfg.YieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < cfg.DerivativeThreshold {
			return y, iter + 1, fmt.Errorf("YieldFromPrice: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, cfg.YieldFloor, cfg.YieldCeiling)
	}

	return y, cfg.YieldMaxIterations, fmt.Errorf("YieldFromPrice: did not converge after %d iterations", cfg.YieldMaxIterations)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
