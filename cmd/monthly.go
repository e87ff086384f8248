package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/pipeline"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly portfolio cost profile across scenarios",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	res, _, err := simulate(cmd)
	if err != nil {
		return err
	}
	profile := pipeline.MonthlyProfile(res.Monthly)

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY COST PROFILE"))
	fmt.Println()

	rows := make([][]string, 0, len(profile))
	means := make([]float64, 0, len(profile))
	for _, m := range profile {
		rows = append(rows, []string{
			time.Month(m.Month).String()[:3],
			cli.FormatCost(m.Mean),
			cli.FormatCost(m.P50),
			cli.FormatCost(m.P90),
			cli.FormatCost(m.Min),
			cli.FormatCost(m.Max),
		})
		means = append(means, m.Mean)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Mean", "P50", "P90", "Min", "Max"},
		Rows:    rows,
	}))
	fmt.Printf("\n  Mean by month  %s\n", cli.RenderSparkline(means))
	return nil
}
