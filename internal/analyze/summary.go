package analyze

import (
	"sort"

	"github.com/theirongolddev/omrisk/internal/model"
)

// Summarize scores total_annual against budget.
func Summarize(annual model.AnnualSample, budget float64) model.SummaryMetrics {
	totals := annual.Totals()
	out := model.SummaryMetrics{Budget: budget}
	if len(totals) == 0 {
		return out
	}

	sorted := make([]float64, len(totals))
	copy(sorted, totals)
	sort.Float64s(sorted)

	overCount := 0
	overSum := 0.0
	for _, v := range totals {
		if v > budget {
			overCount++
			overSum += v - budget
		}
	}

	n := float64(len(totals))
	out.MeanAnnualCost = Mean(totals)
	out.StdAnnualCost = SampleStdDev(totals)
	out.P50AnnualCost = percentileSorted(sorted, 50)
	out.P90AnnualCost = percentileSorted(sorted, 90)
	out.P95AnnualCost = percentileSorted(sorted, 95)
	out.P99AnnualCost = percentileSorted(sorted, 99)
	out.ProbOverBudget = float64(overCount) / n
	if overCount > 0 {
		out.AvgOverrunIfOverBudget = overSum / float64(overCount)
	}
	// max(total-budget, 0) is zero outside the over-budget set, so the
	// unconditional mean shares the same overrun sum.
	out.ExpectedOverrun = overSum / n
	return out
}
