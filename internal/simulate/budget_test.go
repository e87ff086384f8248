package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/omrisk/internal/model"
)

func TestBudget_SingleCategory(t *testing.T) {
	cfg := model.NewCostModelConfig(
		map[string]float64{"labor": 1_200_000},
		map[string]float64{"labor": 0},
		1, 0, 0.03,
	)
	mean, buffer := 1_200_000.0, 0.03
	assert.Equal(t, mean*(1+buffer), Budget(cfg))
	assert.InDelta(t, 1_236_000, Budget(cfg), 1e-6)
}

func TestBudget_TwoCategories(t *testing.T) {
	cfg := model.NewCostModelConfig(
		map[string]float64{"a": 1_000_000, "b": 1_000_000},
		map[string]float64{"a": 0.1, "b": 0},
		10, 0, 0.05,
	)
	total, buffer := 2_000_000.0, 0.05
	assert.Equal(t, total*(1+buffer), Budget(cfg))
}

func TestBudget_IndependentOfSimsAndSeed(t *testing.T) {
	cfg := threeCategoryModel(10, 1)
	want := Budget(cfg)
	for _, n := range []int{1, 1000, 50_000} {
		for _, seed := range []int64{-5, 0, 42} {
			assert.Equal(t, want, Budget(threeCategoryModel(n, seed)))
		}
	}
}
