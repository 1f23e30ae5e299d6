package risk

import (
	"fmt"

	"github.com/meenmo/bondfactor/bond"
	"github.com/meenmo/bondfactor/config"
	"github.com/meenmo/bondfactor/curve"
)

// CurveSensitivities holds finite-difference risk measures obtained by
// repricing a bond under parallel shifts of its discount curve. Effective
// duration and convexity follow the central-difference estimators
//
//	duration  = (P(-eps) - P(+eps)) / (2*eps*P)
//	convexity = (P(-eps) - 2*P + P(+eps)) / (eps^2 * P)
//
// DV01 is quoted positive for a long position: the price decline for a +1bp
// parallel move.
type CurveSensitivities struct {
	Price              float64
	EffectiveDuration  float64
	EffectiveConvexity float64
	DV01               float64
}

// ComputeCurveSensitivities reprices t under +/-bumpBP parallel shifts of crv.
// A zero bumpBP uses the configured default bump.
func ComputeCurveSensitivities(t bond.Terms, crv *curve.Curve, bumpBP float64) (CurveSensitivities, error) {
	if crv == nil {
		return CurveSensitivities{}, fmt.Errorf("ComputeCurveSensitivities: %w", bond.ErrNilCurve)
	}
	if bumpBP == 0 {
		bumpBP = config.GetConfig().FiniteDifferenceBumpBP
	}
	if bumpBP < 0 {
		return CurveSensitivities{}, fmt.Errorf("ComputeCurveSensitivities: bump size must be positive, got %v", bumpBP)
	}

	eps := bumpBP * 1e-4

	base, err := bond.PriceFromCurve(t, crv)
	if err != nil {
		return CurveSensitivities{}, err
	}
	up, err := bond.PriceFromCurve(t, crv.ParallelShift(eps))
	if err != nil {
		return CurveSensitivities{}, err
	}
	down, err := bond.PriceFromCurve(t, crv.ParallelShift(-eps))
	if err != nil {
		return CurveSensitivities{}, err
	}

	duration := (down - up) / (2 * eps * base)
	return CurveSensitivities{
		Price:              base,
		EffectiveDuration:  duration,
		EffectiveConvexity: (down - 2*base + up) / (eps * eps * base),
		DV01:               duration * base * 1e-4,
	}, nil
}
