package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, newest first",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Max runs to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	db, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("\n  No runs recorded yet. Run `omrisk run` first.")
		return nil
	}

	total, err := db.RunCount()
	if err != nil {
		return fmt.Errorf("counting runs: %w", err)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RUN HISTORY  %d of %d runs", len(runs), total)))
	fmt.Println()

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID[:8],
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			formatNumber(int64(r.Assumptions.NSims)),
			fmt.Sprintf("%d", r.Assumptions.RandomSeed),
			cli.FormatCost(r.Summary.Budget),
			cli.FormatPercent(r.Summary.ProbOverBudget),
			cli.FormatCost(r.Summary.ExpectedOverrun),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Run", "Created", "Sims", "Seed", "Budget", "P(over)", "E[overrun]"},
		Rows:    rows,
	}))

	if len(runs) >= 2 {
		latest, prev := runs[0].Summary, runs[1].Summary
		fmt.Printf("\n  Since previous run: P(over) %s, expected overrun %s\n",
			cli.FormatPointDelta(latest.ProbOverBudget, prev.ProbOverBudget),
			cli.FormatDelta(latest.ExpectedOverrun, prev.ExpectedOverrun))
	}
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	db, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id, err := resolveRunID(db, args[0])
	if err != nil {
		return err
	}
	r, err := db.LoadRun(id)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("RUN " + r.RunID[:8]))
	fmt.Println()
	fmt.Printf("  Created:  %s\n", r.CreatedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Sims:     %s  Seed: %d  Buffer: %s\n",
		formatNumber(int64(r.Assumptions.NSims)), r.Assumptions.RandomSeed,
		cli.FormatPercent(r.Assumptions.BudgetBufferPct))
	fmt.Printf("  Elapsed:  %s\n\n", r.Elapsed)

	fmt.Print(cli.RenderTable(summaryTable(r.Summary)))
	fmt.Println()
	fmt.Print(cli.RenderTable(driversTable(r.Drivers)))
	fmt.Println()
	fmt.Print(cli.RenderTable(assumptionsTable(r.Assumptions)))
	return nil
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	db, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id, err := resolveRunID(db, args[0])
	if err != nil {
		return err
	}
	if err := db.DeleteRun(id); err != nil {
		return err
	}
	fmt.Printf("  Deleted run %s\n", id)
	return nil
}

// resolveRunID accepts a full id or a unique prefix as shown by `history`.
func resolveRunID(db *store.Store, arg string) (string, error) {
	if len(arg) >= 36 {
		return arg, nil
	}
	runs, err := db.ListRuns(0)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range runs {
		if len(r.RunID) >= len(arg) && r.RunID[:len(arg)] == arg {
			if match != "" {
				return "", fmt.Errorf("run id prefix %q is ambiguous", arg)
			}
			match = r.RunID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, arg)
	}
	return match, nil
}
