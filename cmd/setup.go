package cmd

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive assumptions editor",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form's string fields before they are parsed back
// into a config file.
type setupValues struct {
	Sims    string
	Seed    string
	Buffer  string // percent, e.g. "3"
	Means   map[string]*string
	Vols    map[string]*string // percent
	Theme   string
	Confirm bool
}

func newSetupValues(cfg config.File) setupValues {
	v := setupValues{
		Sims:   strconv.Itoa(cfg.Simulation.NSims),
		Seed:   strconv.FormatInt(cfg.Simulation.RandomSeed, 10),
		Buffer: formatPct(cfg.Budget.BufferPct),
		Means:  make(map[string]*string),
		Vols:   make(map[string]*string),
		Theme:  cfg.Appearance.Theme,
	}
	for _, c := range cfg.CostModel().Categories() {
		mean := strconv.FormatFloat(cfg.AnnualMean[c], 'f', -1, 64)
		vol := formatPct(cfg.AnnualVolPct[c])
		v.Means[c] = &mean
		v.Vols[c] = &vol
	}
	return v
}

// formatPct renders a fraction as a percent, trimming float noise.
func formatPct(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e8)/1e6, 'f', -1, 64)
}

// apply parses the form values over cfg.
func (v setupValues) apply(cfg config.File) (config.File, error) {
	sims, err := strconv.Atoi(strings.TrimSpace(v.Sims))
	if err != nil {
		return cfg, fmt.Errorf("simulations: %w", err)
	}
	seed, err := strconv.ParseInt(strings.TrimSpace(v.Seed), 10, 64)
	if err != nil {
		return cfg, fmt.Errorf("seed: %w", err)
	}
	buffer, err := parsePct(v.Buffer)
	if err != nil {
		return cfg, fmt.Errorf("budget buffer: %w", err)
	}

	mean := make(map[string]float64, len(v.Means))
	vol := make(map[string]float64, len(v.Vols))
	for c, s := range v.Means {
		m, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
		if err != nil {
			return cfg, fmt.Errorf("annual mean for %s: %w", c, err)
		}
		mean[c] = m
	}
	for c, s := range v.Vols {
		p, err := parsePct(*s)
		if err != nil {
			return cfg, fmt.Errorf("annual vol for %s: %w", c, err)
		}
		vol[c] = p
	}

	cfg.Simulation.NSims = sims
	cfg.Simulation.RandomSeed = seed
	cfg.Budget.BufferPct = buffer
	cfg.AnnualMean = mean
	cfg.AnnualVolPct = vol
	cfg.Appearance.Theme = v.Theme
	return cfg, config.Validate(cfg.CostModel())
}

func parsePct(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, err
	}
	return f / 100, nil
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	vals := newSetupValues(cfg)

	general := huh.NewGroup(
		huh.NewInput().Title("Simulations").Description("Scenarios per run").Value(&vals.Sims).Validate(validateNumber),
		huh.NewInput().Title("Random seed").Value(&vals.Seed).Validate(validateNumber),
		huh.NewInput().Title("Budget buffer (%)").Description("Budget = expected total x (1 + buffer)").Value(&vals.Buffer).Validate(validateNumber),
		huh.NewSelect[string]().Title("Color theme").Options(huh.NewOptions(theme.Names()...)...).Value(&vals.Theme),
	)

	var catFields []huh.Field
	for _, c := range cfg.CostModel().Categories() {
		catFields = append(catFields,
			huh.NewInput().Title(c+" annual mean (USD)").Value(vals.Means[c]).Validate(validateNumber),
			huh.NewInput().Title(c+" annual volatility (%)").Value(vals.Vols[c]).Validate(validateNumber),
		)
	}

	confirm := huh.NewGroup(
		huh.NewConfirm().Title("Save to " + flagConfig + "?").Value(&vals.Confirm),
	)

	form := huh.NewForm(general, huh.NewGroup(catFields...).Title("Categories"), confirm)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled.")
			return nil
		}
		return err
	}
	if !vals.Confirm {
		fmt.Println("  Nothing saved.")
		return nil
	}

	updated, err := vals.apply(cfg)
	if err != nil {
		return err
	}
	if err := config.Save(flagConfig, updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	theme.SetActive(updated.Appearance.Theme)

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	fmt.Println("  Run `omrisk setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
