package simulate

import "github.com/theirongolddev/omrisk/internal/model"

// Budget returns the threshold sum(annual_mean) * (1 + budget_buffer_pct).
// It reads neither NSims nor RandomSeed.
func Budget(cfg model.CostModelConfig) float64 {
	expected := 0.0
	for _, c := range cfg.Categories() {
		expected += cfg.AnnualMean[c]
	}
	return expected * (1 + cfg.BudgetBufferPct)
}
