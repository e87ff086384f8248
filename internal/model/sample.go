package model

// MonthsPerYear is the number of monthly draws aggregated into one scenario.
const MonthsPerYear = 12

// MonthlyRow is one (scenario, month) draw across all categories.
type MonthlyRow struct {
	SimID      int
	Month      int
	Costs      []float64 // aligned with the owning sample's Categories
	TotalMonth float64
}

// MonthlySample holds n_sims x 12 rows ordered by SimID then Month.
type MonthlySample struct {
	Categories []string
	Rows       []MonthlyRow
}

// AnnualRow is one simulated year.
type AnnualRow struct {
	SimID       int
	Costs       []float64 // aligned with the owning sample's Categories
	TotalAnnual float64
}

// AnnualSample holds one row per scenario ordered by SimID.
type AnnualSample struct {
	Categories []string
	Rows       []AnnualRow
}

// Len returns the number of scenarios.
func (a AnnualSample) Len() int { return len(a.Rows) }

// Totals returns the total_annual column.
func (a AnnualSample) Totals() []float64 {
	out := make([]float64, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.TotalAnnual
	}
	return out
}

// Column returns the annual cost column for one category, or nil when the
// category is not part of the sample.
func (a AnnualSample) Column(category string) []float64 {
	idx := indexOf(a.Categories, category)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.Costs[idx]
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
