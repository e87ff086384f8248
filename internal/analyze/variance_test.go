package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/simulate"
)

func TestVarianceContributions_AllRiskInVolatileCategory(t *testing.T) {
	cfg := model.NewCostModelConfig(
		map[string]float64{"a": 1_000_000, "b": 1_000_000},
		map[string]float64{"a": 0.10, "b": 0},
		2_000, 3, 0.02,
	)
	_, annual := simulate.Run(cfg)
	rows := VarianceContributions(annual, cfg.Categories())

	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Category)
	assert.InDelta(t, 1.0, rows[0].VarianceShare, 1e-12)
	assert.Equal(t, "b", rows[1].Category)
	assert.InDelta(t, 0.0, rows[1].VarianceShare, 1e-12)

	total, buffer := 2_000_000.0, 0.02
	assert.Equal(t, total*(1+buffer), simulate.Budget(cfg))
}

func TestVarianceContributions_SharesSumToOne(t *testing.T) {
	cfg := model.NewCostModelConfig(
		map[string]float64{"labor": 5_400_000, "materials": 2_100_000, "maintenance": 2_300_000},
		map[string]float64{"labor": 0.05, "materials": 0.10, "maintenance": 0.20},
		3_000, 42, 0.03,
	)
	_, annual := simulate.Run(cfg)
	rows := VarianceContributions(annual, cfg.Categories())

	sum := 0.0
	for i, r := range rows {
		sum += r.VarianceShare
		if i > 0 {
			assert.GreaterOrEqual(t, rows[i-1].VarianceShare, r.VarianceShare)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// maintenance sigma 460k dominates labor 270k and materials 210k.
	assert.Equal(t, "maintenance", rows[0].Category)
}

func TestVarianceContributions_ZeroTotal(t *testing.T) {
	annual := model.AnnualSample{
		Categories: []string{"x", "y"},
		Rows: []model.AnnualRow{
			{SimID: 1, Costs: []float64{5, 7}, TotalAnnual: 12},
			{SimID: 2, Costs: []float64{5, 7}, TotalAnnual: 12},
		},
	}
	rows := VarianceContributions(annual, annual.Categories)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 0.0, r.VarianceShare)
		assert.Equal(t, 0.0, r.AnnualVariance)
	}
	assert.Equal(t, "x", rows[0].Category, "ties break by category")
}

func TestVarianceContributions_TieBreakByCategory(t *testing.T) {
	annual := model.AnnualSample{
		Categories: []string{"zeta", "alpha"},
		Rows: []model.AnnualRow{
			{SimID: 1, Costs: []float64{1, 1}},
			{SimID: 2, Costs: []float64{3, 3}},
		},
	}
	rows := VarianceContributions(annual, []string{"zeta", "alpha"})
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].Category)
	assert.Equal(t, "zeta", rows[1].Category)
	assert.InDelta(t, 0.5, rows[0].VarianceShare, 1e-12)
}
