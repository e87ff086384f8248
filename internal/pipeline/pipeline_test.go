package pipeline

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
)

func smallConfig(nSims int, seed int64) model.CostModelConfig {
	return model.NewCostModelConfig(
		map[string]float64{"labor": 1_200_000, "materials": 600_000},
		map[string]float64{"labor": 0.05, "materials": 0.10},
		nSims, seed, 0.03,
	)
}

func TestRun_ProducesConsistentResult(t *testing.T) {
	cfg := smallConfig(500, 7)
	res, err := Run(cfg, Options{})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.False(t, res.CreatedAt.IsZero())
	assert.Equal(t, []string{"labor", "materials"}, res.Annual.Categories)
	assert.Len(t, res.Monthly.Rows, 500*model.MonthsPerYear)
	assert.Equal(t, 500, res.Annual.Len())
	assert.Equal(t, res.Budget, res.Summary.Budget)
	require.Len(t, res.Drivers, 2)
	assert.InDelta(t, 1.0, res.Drivers[0].VarianceShare+res.Drivers[1].VarianceShare, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(smallConfig(200, 99), Options{})
	require.NoError(t, err)
	b, err := Run(smallConfig(200, 99), Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Annual, b.Annual)
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.Drivers, b.Drivers)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRun_InvalidConfigDrawsNothing(t *testing.T) {
	cfg := smallConfig(0, 1)
	res, err := Run(cfg, Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "validating config")

	var cerr *config.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, config.RuleNSims, cerr.Rule)
}

func TestRun_InfiniteAssumptionsRejected(t *testing.T) {
	cases := map[string]func(*model.CostModelConfig){
		"mean":   func(c *model.CostModelConfig) { c.AnnualMean["labor"] = math.Inf(1) },
		"vol":    func(c *model.CostModelConfig) { c.AnnualVolPct["labor"] = math.Inf(1) },
		"buffer": func(c *model.CostModelConfig) { c.BudgetBufferPct = math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := smallConfig(50, 1)
			mutate(&cfg)
			res, err := Run(cfg, Options{})
			assert.Nil(t, res)
			var cerr *config.ConfigError
			assert.True(t, errors.As(err, &cerr))
		})
	}
}

func TestRun_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	_, err := Run(smallConfig(50, 1), Options{Logger: log})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "simulation complete")
	assert.Contains(t, buf.String(), `"n_sims":50`)
}

func TestRunSeeds_OrderAndStats(t *testing.T) {
	cfg := smallConfig(300, 0)
	seeds := SeedRange(10, 5)
	require.Equal(t, []int64{10, 11, 12, 13, 14}, seeds)

	var mu sync.Mutex
	var calls []int
	st, err := RunSeeds(cfg, seeds, func(current, total int) {
		mu.Lock()
		calls = append(calls, current)
		mu.Unlock()
		assert.Equal(t, 5, total)
	})
	require.NoError(t, err)
	require.Len(t, st.Seeds, 5)
	assert.Len(t, calls, 5)

	for i, sr := range st.Seeds {
		assert.Equal(t, seeds[i], sr.Seed)
		single, err := Run(smallConfig(300, seeds[i]), Options{})
		require.NoError(t, err)
		assert.Equal(t, single.Summary, sr.Summary, "seed %d should match a standalone run", sr.Seed)
	}
	assert.GreaterOrEqual(t, st.MeanProbOverBudget, 0.0)
	assert.LessOrEqual(t, st.MeanProbOverBudget, 1.0)
	assert.GreaterOrEqual(t, st.StdP95AnnualCost, 0.0)
}

func TestRunSeeds_Empty(t *testing.T) {
	st, err := RunSeeds(smallConfig(10, 0), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, st.Seeds)
	assert.Nil(t, SeedRange(1, 0))
}

func TestRunSeeds_InvalidConfig(t *testing.T) {
	_, err := RunSeeds(smallConfig(-1, 0), SeedRange(1, 3), nil)
	require.Error(t, err)
}
