// Package portfolio aggregates bond-level risk measures into portfolio-level
// ones using explicit market-value weights, and solves barbell-versus-bullet
// allocation problems.
package portfolio

import (
	"fmt"

	"github.com/meenmo/bondfactor/bond"
)

// Holding pairs a bond with the market value invested in it. Weights derived
// from holdings are fractions of total market value, never raw prices.
type Holding struct {
	Bond        *bond.Bond
	MarketValue float64
}

// Portfolio is an immutable collection of holdings.
type Portfolio struct {
	holdings []Holding
	total    float64
}

// New validates the holdings and builds a portfolio. Every holding needs a
// bond and a positive market value.
func New(holdings []Holding) (*Portfolio, error) {
	if len(holdings) == 0 {
		return nil, fmt.Errorf("New: portfolio requires at least one holding")
	}

	var total float64
	for i, h := range holdings {
		if h.Bond == nil {
			return nil, fmt.Errorf("New: holding %d has no bond", i)
		}
		if h.MarketValue <= 0 {
			return nil, fmt.Errorf("New: holding %d has non-positive market value %v", i, h.MarketValue)
		}
		total += h.MarketValue
	}

	p := &Portfolio{holdings: make([]Holding, len(holdings)), total: total}
	copy(p.holdings, holdings)
	return p, nil
}

// Holdings returns a copy of the portfolio's holdings.
func (p *Portfolio) Holdings() []Holding {
	out := make([]Holding, len(p.holdings))
	copy(out, p.holdings)
	return out
}

// Weights returns each holding's fraction of total market value, in holding
// order. The weights sum to one.
func (p *Portfolio) Weights() []float64 {
	w := make([]float64, len(p.holdings))
	for i, h := range p.holdings {
		w[i] = h.MarketValue / p.total
	}
	return w
}

// Duration returns the market-value-weighted modified duration of the
// portfolio.
func (p *Portfolio) Duration() (float64, error) {
	return p.weightedSensitivity(func(s bond.Sensitivities) float64 { return s.Modified })
}

// MacaulayDuration returns the market-value-weighted Macaulay duration.
func (p *Portfolio) MacaulayDuration() (float64, error) {
	return p.weightedSensitivity(func(s bond.Sensitivities) float64 { return s.Macaulay })
}

// Convexity returns the market-value-weighted convexity, on the same
// market-value basis as Duration.
func (p *Portfolio) Convexity() (float64, error) {
	return p.weightedSensitivity(func(s bond.Sensitivities) float64 { return s.Convexity })
}

// ---------------------------------------------------------------------------
// helpers (unexported)
// ---------------------------------------------------------------------------

func (p *Portfolio) weightedSensitivity(pick func(bond.Sensitivities) float64) (float64, error) {
	var out float64
	for i, h := range p.holdings {
		s, err := h.Bond.Sensitivities()
		if err != nil {
			return 0, fmt.Errorf("holding %d: %w", i, err)
		}
		out += h.MarketValue / p.total * pick(s)
	}
	return out, nil
}
