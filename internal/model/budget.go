package model

// SummaryMetrics holds the point and tail statistics of total annual cost
// scored against one budget threshold.
type SummaryMetrics struct {
	Budget                 float64 `json:"budget"`
	MeanAnnualCost         float64 `json:"mean_annual_cost"`
	StdAnnualCost          float64 `json:"std_annual_cost"`
	P50AnnualCost          float64 `json:"p50_annual_cost"`
	P90AnnualCost          float64 `json:"p90_annual_cost"`
	P95AnnualCost          float64 `json:"p95_annual_cost"`
	P99AnnualCost          float64 `json:"p99_annual_cost"`
	ProbOverBudget         float64 `json:"prob_over_budget"`
	AvgOverrunIfOverBudget float64 `json:"avg_overrun_if_over_budget"`
	ExpectedOverrun        float64 `json:"expected_overrun"`
}
