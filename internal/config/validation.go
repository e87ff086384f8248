package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/omrisk/internal/model"
)

// Rule identifies which consistency check a cost model failed.
type Rule int

const (
	RuleEmptyCategories Rule = iota + 1
	RuleCategoryMismatch
	RuleNSims
	RuleAnnualMean
	RuleAnnualVol
	RuleBudgetBuffer
)

func (r Rule) String() string {
	switch r {
	case RuleEmptyCategories:
		return "empty_categories"
	case RuleCategoryMismatch:
		return "category_mismatch"
	case RuleNSims:
		return "n_sims"
	case RuleAnnualMean:
		return "annual_mean"
	case RuleAnnualVol:
		return "annual_vol_pct"
	case RuleBudgetBuffer:
		return "budget_buffer_pct"
	default:
		return "unknown"
	}
}

// ConfigError reports the first violated rule with enough context to fix it.
type ConfigError struct {
	Rule     Rule
	Field    string
	Category string
	Value    float64

	// Populated for RuleCategoryMismatch.
	MissingInVol  []string
	MissingInMean []string
}

func (e *ConfigError) Error() string {
	switch e.Rule {
	case RuleEmptyCategories:
		return fmt.Sprintf("invalid config: %s must define at least one category", e.Field)
	case RuleCategoryMismatch:
		var parts []string
		if len(e.MissingInVol) > 0 {
			parts = append(parts, "missing from annual_vol_pct: "+strings.Join(e.MissingInVol, ", "))
		}
		if len(e.MissingInMean) > 0 {
			parts = append(parts, "missing from annual_mean: "+strings.Join(e.MissingInMean, ", "))
		}
		return "invalid config: annual_mean and annual_vol_pct categories differ (" + strings.Join(parts, "; ") + ")"
	case RuleNSims:
		return fmt.Sprintf("invalid config: n_sims must be > 0, got %d", int(e.Value))
	case RuleAnnualMean:
		return fmt.Sprintf("invalid config: annual_mean[%s] must be finite and > 0, got %g", e.Category, e.Value)
	case RuleAnnualVol:
		return fmt.Sprintf("invalid config: annual_vol_pct[%s] must be finite and >= 0, got %g", e.Category, e.Value)
	case RuleBudgetBuffer:
		return fmt.Sprintf("invalid config: budget_buffer_pct must be finite and >= 0, got %g", e.Value)
	default:
		return "invalid config"
	}
}

// Validate checks a cost model for internal consistency. Rules are applied in
// a fixed order and the first failure is returned as a *ConfigError.
func Validate(cfg model.CostModelConfig) error {
	if len(cfg.AnnualMean) == 0 {
		return &ConfigError{Rule: RuleEmptyCategories, Field: "annual_mean"}
	}
	if len(cfg.AnnualVolPct) == 0 {
		return &ConfigError{Rule: RuleEmptyCategories, Field: "annual_vol_pct"}
	}

	missingVol := missingKeys(cfg.AnnualMean, cfg.AnnualVolPct)
	missingMean := missingKeys(cfg.AnnualVolPct, cfg.AnnualMean)
	if len(missingVol) > 0 || len(missingMean) > 0 {
		return &ConfigError{
			Rule:          RuleCategoryMismatch,
			Field:         "annual_vol_pct",
			MissingInVol:  missingVol,
			MissingInMean: missingMean,
		}
	}

	if cfg.NSims <= 0 {
		return &ConfigError{Rule: RuleNSims, Field: "n_sims", Value: float64(cfg.NSims)}
	}

	cats := cfg.Categories()
	for _, c := range cats {
		// Negated comparisons reject NaN; infinities are rejected explicitly.
		if v := cfg.AnnualMean[c]; !(v > 0) || math.IsInf(v, 0) {
			return &ConfigError{Rule: RuleAnnualMean, Field: "annual_mean", Category: c, Value: v}
		}
	}
	for _, c := range cats {
		if v := cfg.AnnualVolPct[c]; !(v >= 0) || math.IsInf(v, 0) {
			return &ConfigError{Rule: RuleAnnualVol, Field: "annual_vol_pct", Category: c, Value: v}
		}
	}

	if v := cfg.BudgetBufferPct; !(v >= 0) || math.IsInf(v, 0) {
		return &ConfigError{Rule: RuleBudgetBuffer, Field: "budget_buffer_pct", Value: cfg.BudgetBufferPct}
	}
	return nil
}

// missingKeys returns keys of a that are absent from b, sorted.
func missingKeys(a, b map[string]float64) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
