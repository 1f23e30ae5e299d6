package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/bondfactor/factor"
	"github.com/meenmo/bondfactor/report"
	"github.com/meenmo/bondfactor/risk"
)

func sampleResults() []risk.BondRisk {
	return []risk.BondRisk{
		{
			ID:        "GOVT-10Y",
			Price:     101.23456789,
			Yield:     0.04,
			Macaulay:  8.3,
			Modified:  8.14,
			Convexity: 77.5,
			DV01:      0.0824123456789,
			KeyRates: risk.KeyRateProfile{
				Sensitivities: []risk.KeyRateSensitivity{
					{Tenor: 2, KR01: 0.01234567891234},
					{Tenor: 5, KR01: 0.02},
					{Tenor: 10, KR01: 0.05},
				},
				Total:      0.0823456789,
				DV01:       0.0824,
				Residual:   0.0007,
				Consistent: true,
			},
		},
		{
			ID:        "GOVT-30Y",
			Price:     95.5,
			Yield:     0.045,
			Macaulay:  16.8,
			Modified:  16.43,
			Convexity: 380.2,
			DV01:      0.157,
			KeyRates: risk.KeyRateProfile{
				Sensitivities: []risk.KeyRateSensitivity{
					{Tenor: 2, KR01: 0.001},
					{Tenor: 5, KR01: 0.01},
					{Tenor: 10, KR01: 0.14},
				},
				Total:      0.151,
				DV01:       0.157,
				Residual:   0.038,
				Consistent: false,
			},
		},
	}
}

func TestNewRiskReport(t *testing.T) {
	t.Parallel()

	rep, err := report.NewRiskReport(sampleResults())
	require.NoError(t, err)

	_, err = uuid.Parse(rep.ID)
	require.NoError(t, err, "report id must be a uuid")
	assert.WithinDuration(t, time.Now().UTC(), rep.GeneratedAt, time.Minute)

	assert.Equal(t, []float64{2, 5, 10}, rep.KeyTenors)
	require.Len(t, rep.Rows, 2)

	row := rep.Rows[0]
	assert.Equal(t, "GOVT-10Y", row.BondID)
	assert.True(t, row.Price.Equal(decimal.RequireFromString("101.234568")),
		"price = %s, want 101.234568", row.Price)
	assert.True(t, row.DV01.Equal(decimal.RequireFromString("0.08241235")),
		"dv01 = %s, want 0.08241235", row.DV01)
	require.Len(t, row.KeyRate01, 3)
	assert.True(t, row.KeyRate01[0].Equal(decimal.RequireFromString("0.01234568")),
		"kr01 = %s, want 0.01234568", row.KeyRate01[0])
	assert.False(t, row.ReconciliationWarning)

	assert.True(t, rep.Rows[1].ReconciliationWarning)
	assert.Equal(t, 0.038, rep.Rows[1].ReconciliationResidual)
}

func TestNewRiskReportErrors(t *testing.T) {
	t.Parallel()

	_, err := report.NewRiskReport(nil)
	assert.Error(t, err)

	mismatched := sampleResults()
	mismatched[1].KeyRates.Sensitivities = mismatched[1].KeyRates.Sensitivities[:2]
	_, err = report.NewRiskReport(mismatched)
	assert.Error(t, err, "tenor count mismatch must be rejected")

	shifted := sampleResults()
	shifted[1].KeyRates.Sensitivities[0].Tenor = 3
	_, err = report.NewRiskReport(shifted)
	assert.Error(t, err, "tenor value mismatch must be rejected")
}

func TestNewFactorReport(t *testing.T) {
	t.Parallel()

	model := &factor.Model{
		Kind:             factor.Correlation,
		Eigenvalues:      []float64{2, 1},
		VarianceRatios:   []float64{2.0 / 3, 1.0 / 3},
		CumulativeRatios: []float64{2.0 / 3, 1},
		Loadings: mat.NewDense(2, 2, []float64{
			0.8, 0.6,
			0.6, -0.8,
		}),
		Retained: 1,
		Degraded: true,
	}
	attrs := []factor.RegressionResult{
		{Coefficients: []float64{1.2}, R2: 0.91, ResidualVariance: 0.08},
		{Coefficients: []float64{-0.7}, R2: 0.64, ResidualVariance: 0.31},
	}

	rep, err := report.NewFactorReport([]string{"A", "B"}, model, attrs)
	require.NoError(t, err)

	_, err = uuid.Parse(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "correlation", rep.MatrixKind)
	assert.Equal(t, []string{"A", "B"}, rep.SeriesIDs)
	assert.Equal(t, []float64{2, 1}, rep.Eigenvalues)
	assert.Equal(t, 1, rep.Retained)
	assert.True(t, rep.Degraded)

	require.Len(t, rep.Loadings, 2)
	assert.Equal(t, []float64{0.8, 0.6}, rep.Loadings[0])
	assert.Equal(t, []float64{0.6, -0.8}, rep.Loadings[1])

	require.Len(t, rep.Attributions, 2)
	assert.Equal(t, "A", rep.Attributions[0].SeriesID)
	assert.Equal(t, 0.91, rep.Attributions[0].R2)

	// Attribution-free reports are valid.
	bare, err := report.NewFactorReport([]string{"A", "B"}, model, nil)
	require.NoError(t, err)
	assert.Empty(t, bare.Attributions)
}

func TestNewFactorReportErrors(t *testing.T) {
	t.Parallel()

	model := &factor.Model{
		Kind:             factor.Covariance,
		Eigenvalues:      []float64{1, 1},
		VarianceRatios:   []float64{0.5, 0.5},
		CumulativeRatios: []float64{0.5, 1},
		Loadings:         mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		Retained:         2,
	}

	_, err := report.NewFactorReport([]string{"A", "B"}, nil, nil)
	assert.Error(t, err)

	_, err = report.NewFactorReport([]string{"A"}, model, nil)
	assert.Error(t, err, "id count mismatch must be rejected")

	_, err = report.NewFactorReport([]string{"A", "B"}, model, []factor.RegressionResult{{}})
	assert.Error(t, err, "attribution count mismatch must be rejected")
}
