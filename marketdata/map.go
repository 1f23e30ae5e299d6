package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/meenmo/bondfactor/curve"
	"github.com/meenmo/bondfactor/utils"
)

// MapSeriesProvider serves observations from memory, keyed by index id and
// then by ISO date. Useful for tests and fixture-driven runs.
type MapSeriesProvider struct {
	Points map[string]map[string]float64
}

var _ SeriesProvider = (*MapSeriesProvider)(nil)

// Series returns the index's observations inside [from, to], in
// chronological order.
func (p *MapSeriesProvider) Series(ctx context.Context, indexID string, from, to time.Time) ([]Observation, error) {
	points, ok := p.Points[indexID]
	if !ok {
		return nil, fmt.Errorf("Series: unknown index %q", indexID)
	}

	dates := make([]time.Time, 0, len(points))
	for key := range points {
		d, err := time.Parse(time.DateOnly, key)
		if err != nil {
			return nil, fmt.Errorf("Series: index %q has malformed date key %q", indexID, key)
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	obs := make([]Observation, len(dates))
	for i, d := range dates {
		obs[i] = Observation{Date: d, IndexID: indexID, Value: points[d.Format(time.DateOnly)]}
	}
	return obs, nil
}

// MapCurveProvider serves curves from memory, keyed by ISO date and then by
// tenor label ("6M", "2Y", ...).
type MapCurveProvider struct {
	Quotes map[string]map[string]float64
}

var _ CurveProvider = (*MapCurveProvider)(nil)

// Curve builds the curve quoted for the given date.
func (p *MapCurveProvider) Curve(ctx context.Context, date time.Time) (*curve.Curve, error) {
	key := date.Format(time.DateOnly)
	quotes, ok := p.Quotes[key]
	if !ok {
		return nil, fmt.Errorf("Curve: no curve quoted for %s", key)
	}
	return curve.FromQuotes(quotes)
}
