// Package risk computes curve-based risk measures for fixed-coupon bonds:
// finite-difference sensitivities under parallel curve shifts, key-rate
// (KR01) profiles with a reconciliation check against total DV01, and a
// per-bond portfolio risk run.
package risk

import (
	"github.com/sirupsen/logrus"

	"github.com/meenmo/bondfactor/config"
)

// Options controls bump sizes and reconciliation behaviour. Zero values fall
// back to the package configuration.
type Options struct {
	// BumpBP is the key-rate and parallel bump size in basis points.
	BumpBP float64

	// ReconciliationTolerance is the relative tolerance allowed between the
	// summed key-rate sensitivities and the parallel-shift DV01.
	ReconciliationTolerance float64

	Logger *logrus.Logger
}

func (o Options) withDefaults() Options {
	cfg := config.GetConfig()
	if o.BumpBP == 0 {
		o.BumpBP = cfg.KeyRateBumpBP
	}
	if o.ReconciliationTolerance == 0 {
		o.ReconciliationTolerance = cfg.ReconciliationTolerance
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
