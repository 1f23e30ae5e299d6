package risk

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/bondfactor/bond"
	"github.com/meenmo/bondfactor/curve"
)

// Position identifies a bond to be risked against a curve.
type Position struct {
	ID    string
	Terms bond.Terms
}

// BondRisk is the full risk record for one position: the curve price, the
// implied flat yield, analytic sensitivities at that yield, and the
// key-rate profile.
type BondRisk struct {
	ID        string
	Price     float64
	Yield     float64
	Macaulay  float64
	Modified  float64
	Convexity float64
	DV01      float64
	KeyRates  KeyRateProfile
}

// ComputePortfolioRisk risks every position against crv. Each position is
// priced off the curve, its flat yield implied from that price, analytic
// sensitivities evaluated at the implied yield, and a key-rate profile
// computed. Positions are independent and run concurrently; the first
// failure cancels the remainder.
//
// Results are returned in position order.
func ComputePortfolioRisk(ctx context.Context, positions []Position, crv *curve.Curve, opts Options) ([]BondRisk, error) {
	if len(positions) == 0 {
		return nil, fmt.Errorf("ComputePortfolioRisk: no positions")
	}
	if crv == nil {
		return nil, fmt.Errorf("ComputePortfolioRisk: %w", bond.ErrNilCurve)
	}
	opts = opts.withDefaults()

	results := make([]BondRisk, len(positions))

	g, ctx := errgroup.WithContext(ctx)
	for i, pos := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := riskOne(pos, crv, opts)
			if err != nil {
				return fmt.Errorf("ComputePortfolioRisk: position %s: %w", pos.ID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ---------------------------------------------------------------------------
// helpers (unexported)
// ---------------------------------------------------------------------------

func riskOne(pos Position, crv *curve.Curve, opts Options) (BondRisk, error) {
	price, err := bond.PriceFromCurve(pos.Terms, crv)
	if err != nil {
		return BondRisk{}, err
	}
	sol, err := bond.YieldFromPrice(pos.Terms, price)
	if err != nil {
		return BondRisk{}, err
	}
	sens, err := bond.ComputeSensitivities(pos.Terms, sol.Yield)
	if err != nil {
		return BondRisk{}, err
	}
	profile, err := ComputeKeyRateProfile(pos.Terms, crv, opts)
	if err != nil {
		return BondRisk{}, err
	}

	return BondRisk{
		ID:        pos.ID,
		Price:     price,
		Yield:     sol.Yield,
		Macaulay:  sens.Macaulay,
		Modified:  sens.Modified,
		Convexity: sens.Convexity,
		DV01:      sens.DV01,
		KeyRates:  profile,
	}, nil
}
