package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
)

var flagRunBins int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate and print the budget risk summary",
	RunE:  runSummary,
}

func init() {
	runCmd.Flags().IntVar(&flagRunBins, "bins", 16, "Terminal histogram bins")
	rootCmd.AddCommand(runCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	res, _, err := simulate(cmd)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("O&M BUDGET RISK  %s scenarios", formatNumber(int64(res.Config.NSims)))))
	fmt.Println()
	fmt.Print(cli.RenderTable(summaryTable(res.Summary)))
	fmt.Println()
	fmt.Print(cli.RenderTable(driversTable(res.Drivers)))
	fmt.Println()

	bins := flagRunBins
	if bins <= 0 {
		bins = 16
	}
	fmt.Println("  Annual cost distribution")
	fmt.Print(cli.RenderHistogram(pipeline.Histogram(res.Annual.Totals(), bins), res.Budget, 40))
	fmt.Println()
	fmt.Printf("  Run %s  (%s)\n", res.RunID, res.Elapsed.Round(time.Millisecond))
	return nil
}

func summaryTable(s model.SummaryMetrics) cli.Table {
	return cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Budget", cli.FormatCost(s.Budget)},
			{"---"},
			{"Mean annual cost", cli.FormatCost(s.MeanAnnualCost)},
			{"Std dev", cli.FormatCost(s.StdAnnualCost)},
			{"P50", cli.FormatCost(s.P50AnnualCost)},
			{"P90", cli.FormatCost(s.P90AnnualCost)},
			{"P95", cli.FormatCost(s.P95AnnualCost)},
			{"P99", cli.FormatCost(s.P99AnnualCost)},
			{"---"},
			{"P(over budget)", cli.FormatPercent(s.ProbOverBudget)},
			{"Avg overrun if over", cli.FormatCost(s.AvgOverrunIfOverBudget)},
			{"Expected overrun", cli.FormatCost(s.ExpectedOverrun)},
		},
	}
}
