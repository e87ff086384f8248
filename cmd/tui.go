package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/pipeline"
	"github.com/theirongolddev/omrisk/internal/tui"
)

var flagTUIBins int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive risk dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&flagTUIBins, "bins", 24, "Histogram bins")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor so styled output survives the alt screen.
	lipgloss.SetColorProfile(termenv.TrueColor)

	sims, seed := overrides(cmd)
	opts := tui.Options{
		ConfigPath: flagConfig,
		NSims:      sims,
		Seed:       seed,
		Bins:       flagTUIBins,
		// Log lines would corrupt the alt screen.
		Logger: zerolog.Nop(),
	}
	if !flagNoStore {
		opts.OnResult = func(res *pipeline.Result) {
			_ = saveRun(res)
		}
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
