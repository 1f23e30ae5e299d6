// Package report shapes engine outputs into serializable, read-only
// snapshots for downstream consumers. Money figures are quantized decimals;
// every report carries a fresh identifier and generation timestamp.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meenmo/bondfactor/factor"
	"github.com/meenmo/bondfactor/risk"
)

const (
	pricePlaces = 6
	riskPlaces  = 8
)

// RiskRow is one bond's line in a risk report.
type RiskRow struct {
	BondID                 string            `json:"bond_id"`
	Price                  decimal.Decimal   `json:"price"`
	Yield                  float64           `json:"yield"`
	MacaulayDuration       float64           `json:"macaulay_duration"`
	ModifiedDuration       float64           `json:"modified_duration"`
	Convexity              float64           `json:"convexity"`
	DV01                   decimal.Decimal   `json:"dv01"`
	KeyRate01              []decimal.Decimal `json:"kr01"`
	ReconciliationResidual float64           `json:"reconciliation_residual"`
	ReconciliationWarning  bool              `json:"reconciliation_warning"`
}

// RiskReport is a per-bond table of durations, convexity, DV01 and key-rate
// sensitivities. KeyRate01 entries align with KeyTenors.
type RiskReport struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	KeyTenors   []float64 `json:"key_tenors"`
	Rows        []RiskRow `json:"rows"`
}

// NewRiskReport snapshots a portfolio risk run. All positions must have been
// risked against the same curve, so their key tenors agree.
func NewRiskReport(results []risk.BondRisk) (*RiskReport, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("NewRiskReport: no results")
	}

	tenors := make([]float64, len(results[0].KeyRates.Sensitivities))
	for i, s := range results[0].KeyRates.Sensitivities {
		tenors[i] = s.Tenor
	}

	rep := &RiskReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		KeyTenors:   tenors,
		Rows:        make([]RiskRow, len(results)),
	}

	for i, r := range results {
		if len(r.KeyRates.Sensitivities) != len(tenors) {
			return nil, fmt.Errorf("NewRiskReport: position %s has %d key tenors, report has %d",
				r.ID, len(r.KeyRates.Sensitivities), len(tenors))
		}
		kr01 := make([]decimal.Decimal, len(tenors))
		for j, s := range r.KeyRates.Sensitivities {
			if s.Tenor != tenors[j] {
				return nil, fmt.Errorf("NewRiskReport: position %s has key tenor %g, report has %g",
					r.ID, s.Tenor, tenors[j])
			}
			kr01[j] = decimal.NewFromFloat(s.KR01).Round(riskPlaces)
		}

		rep.Rows[i] = RiskRow{
			BondID:                 r.ID,
			Price:                  decimal.NewFromFloat(r.Price).Round(pricePlaces),
			Yield:                  r.Yield,
			MacaulayDuration:       r.Macaulay,
			ModifiedDuration:       r.Modified,
			Convexity:              r.Convexity,
			DV01:                   decimal.NewFromFloat(r.DV01).Round(riskPlaces),
			KeyRate01:              kr01,
			ReconciliationResidual: r.KeyRates.Residual,
			ReconciliationWarning:  !r.KeyRates.Consistent,
		}
	}
	return rep, nil
}

// SeriesAttribution is one series' regression line in a factor report.
type SeriesAttribution struct {
	SeriesID         string    `json:"series_id"`
	Coefficients     []float64 `json:"coefficients"`
	R2               float64   `json:"r2"`
	ResidualVariance float64   `json:"residual_variance"`
}

// FactorReport carries a completed decomposition and, when regression was
// run, the per-series attributions.
type FactorReport struct {
	ID               string              `json:"id"`
	GeneratedAt      time.Time           `json:"generated_at"`
	MatrixKind       string              `json:"matrix_kind"`
	SeriesIDs        []string            `json:"series_ids"`
	Eigenvalues      []float64           `json:"eigenvalues"`
	VarianceRatios   []float64           `json:"variance_ratios"`
	CumulativeRatios []float64           `json:"cumulative_ratios"`
	Loadings         [][]float64         `json:"loadings"`
	Retained         int                 `json:"retained"`
	Degraded         bool                `json:"degraded"`
	Attributions     []SeriesAttribution `json:"attributions,omitempty"`
}

// NewFactorReport snapshots a decomposition. ids name the model's series in
// column order; attributions may be nil when regression was skipped.
func NewFactorReport(ids []string, model *factor.Model, attributions []factor.RegressionResult) (*FactorReport, error) {
	if model == nil {
		return nil, fmt.Errorf("NewFactorReport: nil model")
	}
	n, k := model.Loadings.Dims()
	if len(ids) != n {
		return nil, fmt.Errorf("NewFactorReport: %d series ids for %d series", len(ids), n)
	}
	if attributions != nil && len(attributions) != n {
		return nil, fmt.Errorf("NewFactorReport: %d attributions for %d series", len(attributions), n)
	}

	loadings := make([][]float64, n)
	for i := 0; i < n; i++ {
		loadings[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			loadings[i][j] = model.Loadings.At(i, j)
		}
	}

	rep := &FactorReport{
		ID:               uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		MatrixKind:       model.Kind.String(),
		SeriesIDs:        append([]string(nil), ids...),
		Eigenvalues:      append([]float64(nil), model.Eigenvalues...),
		VarianceRatios:   append([]float64(nil), model.VarianceRatios...),
		CumulativeRatios: append([]float64(nil), model.CumulativeRatios...),
		Loadings:         loadings,
		Retained:         model.Retained,
		Degraded:         model.Degraded,
	}

	for i, a := range attributions {
		rep.Attributions = append(rep.Attributions, SeriesAttribution{
			SeriesID:         ids[i],
			Coefficients:     append([]float64(nil), a.Coefficients...),
			R2:               a.R2,
			ResidualVariance: a.ResidualVariance,
		})
	}
	return rep, nil
}
