package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/model"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Rank categories by their share of annual cost variance",
	RunE:  runDrivers,
}

func init() {
	rootCmd.AddCommand(driversCmd)
}

func runDrivers(cmd *cobra.Command, _ []string) error {
	res, _, err := simulate(cmd)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("RISK DRIVERS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(driversTable(res.Drivers)))
	return nil
}

func driversTable(drivers []model.VarianceContribution) cli.Table {
	rows := make([][]string, 0, len(drivers))
	for _, d := range drivers {
		rows = append(rows, []string{
			d.Category,
			cli.FormatCost(math.Sqrt(d.AnnualVariance)),
			cli.FormatPercent(d.VarianceShare),
		})
	}
	return cli.Table{
		Title:   "Risk Drivers",
		Headers: []string{"Category", "Annual Std Dev", "Variance Share"},
		Rows:    rows,
	}
}
