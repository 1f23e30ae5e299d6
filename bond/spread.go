package bond

import (
	"fmt"
	"math"

	"github.com/meenmo/bondfactor/config"
)

// SpreadResult is the output of SpreadFromPrice.
type SpreadResult struct {
	// Spread is the annualized parallel spread (decimal) over the curve.
	Spread float64
	// Price echoes the target price the solver converged to.
	Price float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// SpreadFromPrice solves for the constant spread z such that discounting
// every cash flow at the curve rate plus z reproduces the target price:
//
//	price = Σ CF_k × (1 + (r(t_k)+z)/m)^(−k)
//
// The spread is the curve-relative analogue of yield: it measures how rich
// or cheap the price is against the discount curve as a whole rather than
// against a single flat rate.
func SpreadFromPrice(t Terms, dc DiscountCurve, price float64) (SpreadResult, error) {
	if dc == nil {
		return SpreadResult{}, fmt.Errorf("SpreadFromPrice: %w", ErrNilCurve)
	}
	if err := t.validate("SpreadFromPrice"); err != nil {
		return SpreadResult{}, err
	}
	if price <= 0 {
		return SpreadResult{}, &InvalidParametersError{Op: "SpreadFromPrice", Field: "Price", Reason: "must be positive"}
	}

	spread, iterations, err := solveSpread(t, dc, price)
	if err != nil {
		return SpreadResult{}, err
	}
	return SpreadResult{Spread: spread, Price: price, Iterations: iterations}, nil
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver (unexported)
// ---------------------------------------------------------------------------

// solveSpread finds z such that the spread-shifted curve price equals the
// target. The price is strictly decreasing in z, so Newton-Raphson from
// z = 0 (the curve itself) converges directly.
func solveSpread(t Terms, dc DiscountCurve, target float64) (float64, int, error) {
	cfg := config.GetConfig()

	cfs, err := Schedule(t)
	if err != nil {
		return 0, 0, err
	}
	m := float64(t.Frequency)

	z := 0.0
	for iter := 0; iter < cfg.YieldMaxIterations; iter++ {
		var price, dPdz float64
		for _, cf := range cfs {
			base := 1.0 + (dc.Rate(cf.Years)+z)/m
			if base <= 0 {
				return z, iter + 1, fmt.Errorf("SpreadFromPrice: rate plus spread at %g years is at or below -100%% per period", cf.Years)
			}
			disc := math.Pow(base, -float64(cf.Period))
			price += cf.Amount() * disc
			dPdz += -(float64(cf.Period) / m) * cf.Amount() * disc / base
		}

		f := price - target
		if math.Abs(f) < cfg.YieldTolerance {
			return z, iter + 1, nil
		}
		if math.Abs(dPdz) < cfg.DerivativeThreshold {
			return z, iter + 1, fmt.Errorf("SpreadFromPrice: derivative too small at iter %d", iter)
		}

		z = clamp(z-f/dPdz, cfg.YieldFloor, cfg.YieldCeiling)
	}

	return z, cfg.YieldMaxIterations, fmt.Errorf("SpreadFromPrice: did not converge after %d iterations", cfg.YieldMaxIterations)
}
