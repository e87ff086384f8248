// Package cmd implements the omrisk CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/cli"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
	"github.com/theirongolddev/omrisk/internal/store"
	"github.com/theirongolddev/omrisk/internal/theme"
)

// Exit codes.
const (
	exitError         = 1
	exitInvalidConfig = 2
)

var (
	flagConfig   string
	flagSims     int
	flagSeed     int64
	flagQuiet    bool
	flagLogLevel string
	flagNoStore  bool
	flagDB       string
)

// logger is configured in PersistentPreRunE and shared by all commands.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "omrisk",
	Short: "Monte Carlo O&M budget risk",
	Long: "Simulate annual operating and maintenance cost, score it against a\n" +
		"buffered budget, and rank the categories that drive the risk.",
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			os.Exit(exitInvalidConfig)
		}
		os.Exit(exitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.Path(), "Assumptions file (TOML, or YAML by extension)")
	rootCmd.PersistentFlags().IntVarP(&flagSims, "sims", "n", 0, "Override simulation count")
	rootCmd.PersistentFlags().Int64VarP(&flagSeed, "seed", "s", 0, "Override random seed")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Do not record runs in the history database")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", store.DefaultPath(), "Run history database")
}

func setupRuntime(_ *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil {
		return fmt.Errorf("parsing --log-level: %w", err)
	}
	if flagQuiet && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	// Theme comes from the config file; a broken file is reported by the
	// command that actually reads assumptions.
	if file, err := config.Load(flagConfig); err == nil {
		if !theme.SetActive(file.Appearance.Theme) && file.Appearance.Theme != "" {
			logger.Warn().Str("theme", file.Appearance.Theme).Msg("unknown theme, using flexoki-dark")
		}
	}
	return nil
}

// overrides returns the --sims/--seed values only when they were set.
func overrides(cmd *cobra.Command) (*int, *int64) {
	var sims *int
	var seed *int64
	if cmd.Flags().Changed("sims") {
		sims = &flagSims
	}
	if cmd.Flags().Changed("seed") {
		seed = &flagSeed
	}
	return sims, seed
}

// loadModel reads the assumptions file and applies flag overrides.
func loadModel(cmd *cobra.Command) (config.File, model.CostModelConfig, error) {
	file, err := config.Load(flagConfig)
	if err != nil {
		return file, model.CostModelConfig{}, err
	}
	sims, seed := overrides(cmd)
	return file, file.CostModel().WithOverrides(sims, seed), nil
}

// simulate is the shared run path used by the reporting commands. It records
// the run in the history database unless --no-store is set.
func simulate(cmd *cobra.Command) (*pipeline.Result, config.File, error) {
	file, cfg, err := loadModel(cmd)
	if err != nil {
		return nil, file, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Simulating %s scenarios...\n", formatNumber(int64(cfg.NSims)))
	}

	res, err := pipeline.Run(cfg, pipeline.Options{Logger: logger})
	if err != nil {
		return nil, file, err
	}

	if !flagNoStore {
		if err := saveRun(res); err != nil {
			logger.Warn().Err(err).Msg("run history unavailable")
		}
	}
	return res, file, nil
}

func saveRun(res *pipeline.Result) error {
	db, err := store.Open(flagDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.SaveRun(res)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
