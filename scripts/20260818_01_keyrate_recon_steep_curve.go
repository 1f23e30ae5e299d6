package main

import (
	"fmt"
	"log"

	"github.com/meenmo/bondfactor/bond"
	"github.com/meenmo/bondfactor/curve"
	"github.com/meenmo/bondfactor/risk"
)

// Probe: key-rate reconciliation on a steep curve.
//
// Sums the per-pillar KR01s at several bump sizes and compares the sum
// against (a) the parallel-shift DV01 off the same curve and (b) the
// flat-yield analytic DV01. The gap to (b) grows with curve steepness,
// which is why the reconciliation check targets (a).
//
// Run:
//
//	go run ./scripts/20260818_01_keyrate_recon_steep_curve.go
func main() {
	crv, err := curve.New(
		[]float64{1, 2, 5, 10, 30},
		[]float64{0.015, 0.020, 0.032, 0.043, 0.055},
	)
	if err != nil {
		log.Fatal(err)
	}
	terms := bond.Terms{CouponRate: 0.04, Frequency: 2, Periods: 20, Par: 100}

	price, err := bond.PriceFromCurve(terms, crv)
	if err != nil {
		log.Fatal(err)
	}
	implied, err := bond.YieldFromPrice(terms, price)
	if err != nil {
		log.Fatal(err)
	}
	analytic, err := bond.ComputeSensitivities(terms, implied.Yield)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("curve price %.6f, implied yield %.4f%%, flat-yield DV01 %.8f\n\n",
		price, implied.Yield*100, analytic.DV01)

	fmt.Printf("%8s %14s %14s %12s %12s\n", "bump_bp", "sum_kr01", "parallel_dv01", "resid_par", "resid_flat")
	for _, bp := range []float64{0.25, 0.5, 1, 2, 5, 10} {
		profile, err := risk.ComputeKeyRateProfile(terms, crv, risk.Options{BumpBP: bp})
		if err != nil {
			log.Fatal(err)
		}
		residFlat := (profile.Total - analytic.DV01) / analytic.DV01
		fmt.Printf("%8.2f %14.8f %14.8f %11.6f%% %11.6f%%\n",
			bp, profile.Total, profile.DV01, profile.Residual*100, residFlat*100)
	}

	profile, err := risk.ComputeKeyRateProfile(terms, crv, risk.Options{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("\nper-pillar profile at the default bump:")
	for _, kr := range profile.Sensitivities {
		fmt.Printf("  %4.0fY %12.8f\n", kr.Tenor, kr.KR01)
	}
}
