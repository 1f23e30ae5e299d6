package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/meenmo/bondfactor/curve"
)

const (
	defaultSeriesTable = "index_returns"
	defaultCurveTable  = "curve_quotes"
)

// OpenPostgres opens and pings a Postgres handle via the pq driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenPostgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenPostgres: %w", err)
	}
	return db, nil
}

// PGSeriesProvider reads observations from a table of
// (index_id TEXT, date DATE, value NUMERIC) rows. Values are scanned as
// decimals so NUMERIC columns round-trip without driver float surprises.
type PGSeriesProvider struct {
	DB    *sql.DB
	Table string
}

var _ SeriesProvider = (*PGSeriesProvider)(nil)

func (p *PGSeriesProvider) Series(ctx context.Context, indexID string, from, to time.Time) ([]Observation, error) {
	table := p.Table
	if table == "" {
		table = defaultSeriesTable
	}
	query := fmt.Sprintf(
		`SELECT date, value FROM %s WHERE index_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`,
		table,
	)

	rows, err := p.DB.QueryContext(ctx, query, indexID, from, to)
	if err != nil {
		return nil, fmt.Errorf("Series: %w", err)
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var (
			date  time.Time
			value decimal.Decimal
		)
		if err := rows.Scan(&date, &value); err != nil {
			return nil, fmt.Errorf("Series: %w", err)
		}
		f, _ := value.Float64()
		obs = append(obs, Observation{Date: date, IndexID: indexID, Value: f})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Series: %w", err)
	}
	return obs, nil
}

// PGCurveProvider reads curve quotes from a table of
// (curve_date DATE, tenor TEXT, rate NUMERIC) rows.
type PGCurveProvider struct {
	DB    *sql.DB
	Table string
}

var _ CurveProvider = (*PGCurveProvider)(nil)

func (p *PGCurveProvider) Curve(ctx context.Context, date time.Time) (*curve.Curve, error) {
	table := p.Table
	if table == "" {
		table = defaultCurveTable
	}
	query := fmt.Sprintf(
		`SELECT tenor, rate FROM %s WHERE curve_date = $1 ORDER BY tenor`,
		table,
	)

	rows, err := p.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("Curve: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]float64)
	for rows.Next() {
		var (
			tenor string
			rate  decimal.Decimal
		)
		if err := rows.Scan(&tenor, &rate); err != nil {
			return nil, fmt.Errorf("Curve: %w", err)
		}
		f, _ := rate.Float64()
		quotes[tenor] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Curve: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("Curve: no quotes for %s", date.Format(time.DateOnly))
	}
	return curve.FromQuotes(quotes)
}
