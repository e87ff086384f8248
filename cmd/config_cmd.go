package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective assumptions and where they came from",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	file, cfg, err := loadModel(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", flagConfig)
	if config.Exists(flagConfig) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	for _, env := range []string{"OMRISK_SIMS", "OMRISK_SEED"} {
		if v := os.Getenv(env); v != "" {
			fmt.Printf("  Env override: %s=%s\n", env, v)
		}
	}
	sims, seed := overrides(cmd)
	if sims != nil || seed != nil {
		fmt.Println("  Flag overrides: applied")
	}
	fmt.Println()

	fmt.Print(cli.RenderTable(assumptionsTable(cfg.Assumptions())))
	fmt.Println()

	fmt.Println("  [Report]")
	fmt.Printf("    Histogram bins: %d\n", file.Report.HistogramBins)
	fmt.Printf("    Output dir:     %s\n", file.Report.OutputDir)
	fmt.Println()
	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", file.Appearance.Theme)
	fmt.Println()
	fmt.Println("  [Daemon]")
	fmt.Printf("    Addr:     %s\n", file.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", file.Daemon.Schedule)
	fmt.Println()

	if err := config.Validate(cfg); err != nil {
		fmt.Printf("  Validation: %v\n", err)
		return err
	}
	fmt.Println("  Validation: ok")
	fmt.Println("  Run `omrisk setup` to reconfigure.")
	return nil
}

func assumptionsTable(a model.Assumptions) cli.Table {
	rows := make([][]string, 0, len(a.Categories)+4)
	total := 0.0
	for _, c := range a.Categories {
		rows = append(rows, []string{c.Category, cli.FormatCost(c.AnnualMean), cli.FormatPercent(c.AnnualVolPct)})
		total += c.AnnualMean
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", cli.FormatCost(total), ""},
		[]string{"Simulations", formatNumber(int64(a.NSims)), ""},
		[]string{"Seed", fmt.Sprintf("%d", a.RandomSeed), ""},
		[]string{"Budget buffer", cli.FormatPercent(a.BudgetBufferPct), ""},
	)
	return cli.Table{
		Title:   "Assumptions",
		Headers: []string{"Category", "Annual Mean", "Annual Vol"},
		Rows:    rows,
	}
}
