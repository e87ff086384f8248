package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/pipeline"
)

var flagStabilitySeeds int

var stabilityCmd = &cobra.Command{
	Use:   "stability",
	Short: "Re-run the model across seeds to check Monte Carlo noise",
	RunE:  runStability,
}

func init() {
	stabilityCmd.Flags().IntVar(&flagStabilitySeeds, "seeds", 10, "Number of consecutive seeds, starting at the configured seed")
	rootCmd.AddCommand(stabilityCmd)
}

func runStability(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadModel(cmd)
	if err != nil {
		return err
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Seeds %s", cli.RenderProgressBar(current, total, 20))
	}

	st, err := pipeline.RunSeeds(cfg, pipeline.SeedRange(cfg.RandomSeed, flagStabilitySeeds), progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SEED STABILITY  %d seeds x %s scenarios",
		len(st.Seeds), formatNumber(int64(cfg.NSims)))))
	fmt.Println()

	rows := make([][]string, 0, len(st.Seeds)+4)
	for _, sr := range st.Seeds {
		rows = append(rows, []string{
			strconv.FormatInt(sr.Seed, 10),
			cli.FormatPercent(sr.Summary.ProbOverBudget),
			cli.FormatCost(sr.Summary.ExpectedOverrun),
			cli.FormatCost(sr.Summary.P95AnnualCost),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"mean", cli.FormatPercent(st.MeanProbOverBudget), cli.FormatCost(st.MeanExpectedOverrun), cli.FormatCost(st.MeanP95AnnualCost)},
		[]string{"std dev", cli.FormatPercent(st.StdProbOverBudget), cli.FormatCost(st.StdExpectedOverrun), cli.FormatCost(st.StdP95AnnualCost)},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Seed", "P(over budget)", "Expected Overrun", "P95"},
		Rows:    rows,
	}))
	return nil
}
