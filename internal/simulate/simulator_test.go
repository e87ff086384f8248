package simulate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/model"
)

func threeCategoryModel(nSims int, seed int64) model.CostModelConfig {
	return model.NewCostModelConfig(
		map[string]float64{"labor": 5_400_000, "materials": 2_100_000, "maintenance": 2_300_000},
		map[string]float64{"labor": 0.05, "materials": 0.10, "maintenance": 0.20},
		nSims, seed, 0.03,
	)
}

func TestCategoryParams(t *testing.T) {
	p := CategoryParams(1_200_000, 0.12)
	assert.Equal(t, 100_000.0, p.MonthlyMean)
	assert.InDelta(t, 144_000/math.Sqrt(12), p.MonthlyStd, 1e-9)
}

func TestRun_Shape(t *testing.T) {
	cfg := threeCategoryModel(50, 42)
	monthly, annual := Run(cfg)

	assert.Equal(t, []string{"labor", "maintenance", "materials"}, monthly.Categories)
	assert.Equal(t, monthly.Categories, annual.Categories)
	require.Len(t, monthly.Rows, 50*12)
	require.Len(t, annual.Rows, 50)

	for i, r := range monthly.Rows {
		assert.Equal(t, i/12+1, r.SimID)
		assert.Equal(t, i%12+1, r.Month)
		assert.Len(t, r.Costs, 3)
	}
	for i, r := range annual.Rows {
		assert.Equal(t, i+1, r.SimID)
	}
}

func TestRun_NonNegative(t *testing.T) {
	// 150% volatility pushes a large fraction of raw draws below zero.
	cfg := model.NewCostModelConfig(
		map[string]float64{"volatile": 120_000},
		map[string]float64{"volatile": 1.5},
		400, 11, 0,
	)
	monthly, annual := Run(cfg)
	zeros := 0
	for _, r := range monthly.Rows {
		for _, v := range r.Costs {
			require.GreaterOrEqual(t, v, 0.0)
			if v == 0 {
				zeros++
			}
		}
	}
	assert.Positive(t, zeros, "expected some clipped draws")
	for _, r := range annual.Rows {
		assert.GreaterOrEqual(t, r.TotalAnnual, 0.0)
	}
}

func TestRun_Additivity(t *testing.T) {
	monthly, annual := Run(threeCategoryModel(200, 5))

	for _, r := range monthly.Rows {
		sum := 0.0
		for _, v := range r.Costs {
			sum += v
		}
		require.Equal(t, sum, r.TotalMonth)
	}

	for s, r := range annual.Rows {
		sum := 0.0
		for _, v := range r.Costs {
			sum += v
		}
		require.Equal(t, sum, r.TotalAnnual)

		// Each annual category cost is the month-order sum of its monthly draws.
		for ci := range annual.Categories {
			catSum := 0.0
			for m := 0; m < 12; m++ {
				catSum += monthly.Rows[s*12+m].Costs[ci]
			}
			require.Equal(t, catSum, r.Costs[ci])
		}

		// Summing total_month reassociates the additions, so allow rounding.
		monthSum := 0.0
		for m := 0; m < 12; m++ {
			monthSum += monthly.Rows[s*12+m].TotalMonth
		}
		require.InEpsilon(t, r.TotalAnnual, monthSum, 1e-12)
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := threeCategoryModel(300, 42)
	m1, a1 := Run(cfg)
	m2, a2 := Run(cfg)
	assert.Equal(t, m1, m2)
	assert.Equal(t, a1, a2)
}

func TestRun_SeedChangesTotals(t *testing.T) {
	_, a1 := Run(threeCategoryModel(100, 1))
	_, a2 := Run(threeCategoryModel(100, 2))
	assert.NotEqual(t, a1.Totals(), a2.Totals())
}

func TestRun_StreamsAreKeyedByCategory(t *testing.T) {
	// Adding a category must not perturb the draws of existing ones.
	base := model.NewCostModelConfig(
		map[string]float64{"labor": 1_000_000},
		map[string]float64{"labor": 0.1},
		60, 8, 0,
	)
	wider := model.NewCostModelConfig(
		map[string]float64{"labor": 1_000_000, "aaa": 10},
		map[string]float64{"labor": 0.1, "aaa": 0.5},
		60, 8, 0,
	)
	_, a1 := Run(base)
	_, a2 := Run(wider)
	assert.Equal(t, a1.Column("labor"), a2.Column("labor"))
}

func TestRun_ZeroVolatilityIsDeterministicMean(t *testing.T) {
	cfg := model.NewCostModelConfig(
		map[string]float64{"labor": 1_200_000},
		map[string]float64{"labor": 0},
		25, 99, 0.03,
	)
	monthly, annual := Run(cfg)
	for _, r := range monthly.Rows {
		require.Equal(t, 100_000.0, r.Costs[0])
	}
	for _, r := range annual.Rows {
		require.Equal(t, 1_200_000.0, r.TotalAnnual)
	}
}

func TestRun_MeanConvergesToAssumption(t *testing.T) {
	_, annual := Run(threeCategoryModel(20_000, 42))
	labor := annual.Column("labor")
	sum := 0.0
	for _, v := range labor {
		sum += v
	}
	mean := sum / float64(len(labor))
	// sigma_a = 270k, so the standard error over 20k sims is about 1.9k.
	assert.InDelta(t, 5_400_000, mean, 10_000)
}
