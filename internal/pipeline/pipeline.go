// Package pipeline orchestrates validation, simulation and risk analysis.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/omrisk/internal/analyze"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/simulate"
)

// Options controls pipeline side channels. The zero value is usable.
type Options struct {
	Logger zerolog.Logger
}

// Result holds the output of one full simulation run.
type Result struct {
	RunID     uuid.UUID
	CreatedAt time.Time
	Config    model.CostModelConfig
	Monthly   model.MonthlySample
	Annual    model.AnnualSample
	Budget    float64
	Summary   model.SummaryMetrics
	Drivers   []model.VarianceContribution
	Elapsed   time.Duration
}

// Run validates cfg, simulates it, and scores the draws against the budget.
// Nothing is drawn when validation fails.
func Run(cfg model.CostModelConfig, opts Options) (*Result, error) {
	log := opts.Logger

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	start := time.Now()
	cats := cfg.Categories()
	log.Debug().
		Int("n_sims", cfg.NSims).
		Int64("seed", cfg.RandomSeed).
		Strs("categories", cats).
		Msg("starting simulation")

	monthly, annual := simulate.Run(cfg)
	budget := simulate.Budget(cfg)
	summary := analyze.Summarize(annual, budget)
	drivers := analyze.VarianceContributions(annual, cats)

	res := &Result{
		RunID:     uuid.New(),
		CreatedAt: start.UTC(),
		Config:    cfg,
		Monthly:   monthly,
		Annual:    annual,
		Budget:    budget,
		Summary:   summary,
		Drivers:   drivers,
		Elapsed:   time.Since(start),
	}

	log.Info().
		Str("run_id", res.RunID.String()).
		Int("n_sims", cfg.NSims).
		Float64("budget", budget).
		Float64("prob_over_budget", summary.ProbOverBudget).
		Dur("elapsed", res.Elapsed).
		Msg("simulation complete")

	return res, nil
}
