// Package report exports a scored run as a workbook, CSV files and a
// distribution chart.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
)

// Input is everything a report needs from one run.
type Input struct {
	Assumptions model.Assumptions
	Monthly     model.MonthlySample
	Annual      model.AnnualSample
	Budget      float64
	Summary     model.SummaryMetrics
	Drivers     []model.VarianceContribution
}

// FromResult builds an Input from a pipeline result.
func FromResult(res *pipeline.Result) Input {
	return Input{
		Assumptions: res.Config.Assumptions(),
		Monthly:     res.Monthly,
		Annual:      res.Annual,
		Budget:      res.Budget,
		Summary:     res.Summary,
		Drivers:     res.Drivers,
	}
}

// summaryField is one column of the summary output, in contract order.
type summaryField struct {
	Name  string
	Value float64
	Pct   bool
}

func summaryFields(s model.SummaryMetrics) []summaryField {
	return []summaryField{
		{"budget", s.Budget, false},
		{"mean_annual_cost", s.MeanAnnualCost, false},
		{"std_annual_cost", s.StdAnnualCost, false},
		{"p50_annual_cost", s.P50AnnualCost, false},
		{"p90_annual_cost", s.P90AnnualCost, false},
		{"p95_annual_cost", s.P95AnnualCost, false},
		{"p99_annual_cost", s.P99AnnualCost, false},
		{"prob_over_budget", s.ProbOverBudget, true},
		{"avg_overrun_if_over_budget", s.AvgOverrunIfOverBudget, false},
		{"expected_overrun", s.ExpectedOverrun, false},
	}
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return nil
}
