// Package marketdata defines the provider boundaries the engine consumes:
// observation series with no calendar guarantees, and per-date discount
// curves. In-memory and Postgres implementations are included.
package marketdata

import (
	"context"
	"time"

	"github.com/meenmo/bondfactor/curve"
)

// Observation is one dated value of an index series.
type Observation struct {
	Date    time.Time
	IndexID string
	Value   float64
}

// SeriesProvider supplies the observations of one index over a window,
// ordered by date. Calendars differ between indices; alignment is the
// caller's job.
type SeriesProvider interface {
	Series(ctx context.Context, indexID string, from, to time.Time) ([]Observation, error)
}

// CurveProvider supplies the discount curve for an evaluation date.
type CurveProvider interface {
	Curve(ctx context.Context, date time.Time) (*curve.Curve, error)
}
