// Package model defines domain types for omrisk cost models, samples and risk metrics.
package model

import "sort"

// CostModelConfig holds the assumptions for one simulation run.
// Build it with NewCostModelConfig and treat it as read-only afterwards.
type CostModelConfig struct {
	AnnualMean      map[string]float64 // USD per year
	AnnualVolPct    map[string]float64 // one standard deviation as a fraction of the mean
	NSims           int
	RandomSeed      int64
	BudgetBufferPct float64
}

// NewCostModelConfig copies the provided maps so the returned value does not
// alias caller state.
func NewCostModelConfig(annualMean, annualVolPct map[string]float64, nSims int, seed int64, bufferPct float64) CostModelConfig {
	return CostModelConfig{
		AnnualMean:      cloneFloats(annualMean),
		AnnualVolPct:    cloneFloats(annualVolPct),
		NSims:           nSims,
		RandomSeed:      seed,
		BudgetBufferPct: bufferPct,
	}
}

// Categories returns the union of category keys sorted by identifier.
// This is the canonical category order for sampling, sums and output columns.
func (c CostModelConfig) Categories() []string {
	seen := make(map[string]struct{}, len(c.AnnualMean))
	cats := make([]string, 0, len(c.AnnualMean))
	for _, m := range []map[string]float64{c.AnnualMean, c.AnnualVolPct} {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cats = append(cats, k)
		}
	}
	sort.Strings(cats)
	return cats
}

// WithOverrides returns a copy with NSims and RandomSeed replaced when the
// given pointers are non-nil.
func (c CostModelConfig) WithOverrides(nSims *int, seed *int64) CostModelConfig {
	out := NewCostModelConfig(c.AnnualMean, c.AnnualVolPct, c.NSims, c.RandomSeed, c.BudgetBufferPct)
	if nSims != nil {
		out.NSims = *nSims
	}
	if seed != nil {
		out.RandomSeed = *seed
	}
	return out
}

// CategoryAssumption is one row of the assumptions record.
type CategoryAssumption struct {
	Category     string  `json:"category"`
	AnnualMean   float64 `json:"annual_mean"`
	AnnualVolPct float64 `json:"annual_vol_pct"`
}

// Assumptions is the read-only view of a config handed to reporting.
type Assumptions struct {
	Categories      []CategoryAssumption `json:"categories"`
	NSims           int                  `json:"n_sims"`
	RandomSeed      int64                `json:"random_seed"`
	BudgetBufferPct float64              `json:"budget_buffer_pct"`
}

// Assumptions returns a copy of the inputs in canonical category order.
func (c CostModelConfig) Assumptions() Assumptions {
	cats := c.Categories()
	rows := make([]CategoryAssumption, 0, len(cats))
	for _, name := range cats {
		rows = append(rows, CategoryAssumption{
			Category:     name,
			AnnualMean:   c.AnnualMean[name],
			AnnualVolPct: c.AnnualVolPct[name],
		})
	}
	return Assumptions{
		Categories:      rows,
		NSims:           c.NSims,
		RandomSeed:      c.RandomSeed,
		BudgetBufferPct: c.BudgetBufferPct,
	}
}

func cloneFloats(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
