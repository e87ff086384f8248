// Package config loads, saves and validates omrisk cost-model assumptions.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theirongolddev/omrisk/internal/model"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is the on-disk assumptions file.
type File struct {
	Simulation   SimulationConfig   `toml:"simulation" yaml:"simulation"`
	Budget       BudgetConfig       `toml:"budget" yaml:"budget"`
	AnnualMean   map[string]float64 `toml:"annual_mean" yaml:"annual_mean"`
	AnnualVolPct map[string]float64 `toml:"annual_vol_pct" yaml:"annual_vol_pct"`
	Report       ReportConfig       `toml:"report" yaml:"report"`
	Appearance   AppearanceConfig   `toml:"appearance" yaml:"appearance"`
	Daemon       DaemonConfig       `toml:"daemon" yaml:"daemon"`
}

// SimulationConfig holds Monte Carlo sizing and reproducibility settings.
type SimulationConfig struct {
	NSims      int   `toml:"n_sims" yaml:"n_sims"`
	RandomSeed int64 `toml:"random_seed" yaml:"random_seed"`
}

// BudgetConfig holds the budget rule (budget = expected total * (1 + buffer)).
type BudgetConfig struct {
	BufferPct float64 `toml:"buffer_pct" yaml:"buffer_pct"`
}

// ReportConfig holds export settings.
type ReportConfig struct {
	HistogramBins int    `toml:"histogram_bins" yaml:"histogram_bins"`
	OutputDir     string `toml:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" yaml:"theme"`
}

// DaemonConfig holds background re-scoring settings.
type DaemonConfig struct {
	Addr         string `toml:"addr,omitempty" yaml:"addr,omitempty"`
	Schedule     string `toml:"schedule,omitempty" yaml:"schedule,omitempty"`
	EventsBuffer int    `toml:"events_buffer,omitempty" yaml:"events_buffer,omitempty"`
}

// DefaultFile returns the reference O&M assumptions.
func DefaultFile() File {
	return File{
		Simulation: SimulationConfig{
			NSims:      10_000,
			RandomSeed: 42,
		},
		Budget: BudgetConfig{BufferPct: 0.03},
		AnnualMean: map[string]float64{
			"labor":       5_400_000,
			"materials":   2_100_000,
			"maintenance": 2_300_000,
		},
		AnnualVolPct: map[string]float64{
			"labor":       0.05,
			"materials":   0.10,
			"maintenance": 0.20,
		},
		Report: ReportConfig{
			HistogramBins: 60,
			OutputDir:     "outputs",
		},
		Appearance: AppearanceConfig{Theme: "flexoki-dark"},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8790",
			Schedule:     "@every 1h",
			EventsBuffer: 200,
		},
	}
}

// CostModel converts the file into the immutable simulation input.
func (f File) CostModel() model.CostModelConfig {
	return model.NewCostModelConfig(f.AnnualMean, f.AnnualVolPct,
		f.Simulation.NSims, f.Simulation.RandomSeed, f.Budget.BufferPct)
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "omrisk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "omrisk")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the assumptions file at path, returning defaults if it doesn't exist.
// Category tables in the file replace the default categories wholesale.
func Load(path string) (File, error) {
	cfg := DefaultFile()

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg)
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	parsed, err := Parse(data, isYAML(path))
	if err != nil {
		return cfg, err
	}
	return applyEnv(parsed)
}

// Parse decodes TOML or YAML assumptions on top of the defaults.
func Parse(data []byte, asYAML bool) (File, error) {
	cfg := DefaultFile()
	cfg.AnnualMean = nil
	cfg.AnnualVolPct = nil

	if asYAML {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	} else {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.AnnualMean == nil && cfg.AnnualVolPct == nil {
		def := DefaultFile()
		cfg.AnnualMean = def.AnnualMean
		cfg.AnnualVolPct = def.AnnualVolPct
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(path string, cfg File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_ = enc.Close()
	} else if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// applyEnv layers OMRISK_SIMS and OMRISK_SEED over the file values.
func applyEnv(cfg File) (File, error) {
	if v := os.Getenv("OMRISK_SIMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing OMRISK_SIMS: %w", err)
		}
		cfg.Simulation.NSims = n
	}
	if v := os.Getenv("OMRISK_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parsing OMRISK_SEED: %w", err)
		}
		cfg.Simulation.RandomSeed = seed
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
