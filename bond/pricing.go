package bond

import (
	"fmt"
	"math"
)

// PriceFromYield prices the bond by discounting every cash flow at a flat
// annualized yield with periodic compounding:
//
//	price = Σ CF_k × (1 + y/m)^(−k)
//
// where k runs over coupon periods and m is the coupon frequency.
func PriceFromYield(t Terms, yield float64) (float64, error) {
	if err := t.validate("PriceFromYield"); err != nil {
		return 0, err
	}
	if err := t.validateYield("PriceFromYield", yield); err != nil {
		return 0, err
	}

	price, _ := priceAndDeriv(t, yield)
	return price, nil
}

// PriceFromCurve prices the bond from curve-implied spot rates: the cash
// flow at period k (years k/m) discounts at (1 + r(k/m)/m)^(−k), with r
// supplied by the curve's interpolation contract.
func PriceFromCurve(t Terms, dc DiscountCurve) (float64, error) {
	if dc == nil {
		return 0, fmt.Errorf("PriceFromCurve: %w", ErrNilCurve)
	}
	cfs, err := Schedule(t)
	if err != nil {
		return 0, err
	}

	m := float64(t.Frequency)
	price := 0.0
	for _, cf := range cfs {
		rate := dc.Rate(cf.Years)
		if err := t.validateYield("PriceFromCurve", rate); err != nil {
			return 0, err
		}
		price += cf.Amount() * math.Pow(1.0+rate/m, -float64(cf.Period))
	}
	return price, nil
}

// ---------------------------------------------------------------------------
// discounting internals
// ---------------------------------------------------------------------------

// priceAndDeriv returns (price, dPrice/dy) at a flat annualized yield.
//
//	price = Σ CF_k · (1+y/m)^(−k)
//	dP/dy = Σ −(k/m) · CF_k · (1+y/m)^(−k−1)
//
// Terms and yield are assumed validated by the caller.
func priceAndDeriv(t Terms, yield float64) (float64, float64) {
	m := float64(t.Frequency)
	coupon := t.CouponRate / m * t.Par
	base := 1.0 + yield/m

	var price, deriv float64
	for k := 1; k <= t.Periods; k++ {
		amt := coupon
		if k == t.Periods {
			amt += t.Par
		}
		disc := math.Pow(base, -float64(k))
		price += amt * disc
		deriv += -(float64(k) / m) * amt * disc / base
	}
	return price, deriv
}
