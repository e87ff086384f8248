package simulate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/theirongolddev/omrisk/internal/model"
)

func genModel(mean, vol, buffer float64, nSims int, seed int64) model.CostModelConfig {
	return model.NewCostModelConfig(
		map[string]float64{"labor": mean, "parts": mean / 3},
		map[string]float64{"labor": vol, "parts": vol * 2},
		nSims, seed, buffer,
	)
}

// TestSimulationProperties checks non-negativity, additivity, determinism and
// budget purity over generated cost models.
func TestSimulationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	meanGen := gen.Float64Range(1, 1e7)
	volGen := gen.Float64Range(0, 2)
	bufferGen := gen.Float64Range(0, 0.5)
	simsGen := gen.IntRange(1, 40)
	seedGen := gen.Int64()

	properties.Property("draws are non-negative and totals are exact sums", prop.ForAll(
		func(mean, vol float64, nSims int, seed int64) bool {
			monthly, annual := Run(genModel(mean, vol, 0, nSims, seed))
			for _, r := range monthly.Rows {
				sum := 0.0
				for _, v := range r.Costs {
					if v < 0 {
						return false
					}
					sum += v
				}
				if sum != r.TotalMonth {
					return false
				}
			}
			for _, r := range annual.Rows {
				sum := 0.0
				for _, v := range r.Costs {
					sum += v
				}
				if sum != r.TotalAnnual {
					return false
				}
			}
			return len(monthly.Rows) == nSims*12 && len(annual.Rows) == nSims
		},
		meanGen, volGen, simsGen, seedGen,
	))

	properties.Property("same config and seed reproduce identical totals", prop.ForAll(
		func(mean, vol float64, nSims int, seed int64) bool {
			cfg := genModel(mean, vol, 0, nSims, seed)
			_, a1 := Run(cfg)
			_, a2 := Run(cfg)
			t1, t2 := a1.Totals(), a2.Totals()
			for i := range t1 {
				if t1[i] != t2[i] {
					return false
				}
			}
			return true
		},
		meanGen, volGen, simsGen, seedGen,
	))

	properties.Property("budget ignores n_sims and seed", prop.ForAll(
		func(mean, buffer float64, nSims int, seed int64) bool {
			got := Budget(genModel(mean, 0.1, buffer, nSims, seed))
			ref := Budget(genModel(mean, 0.1, buffer, 1, 0))
			return got == ref && got == (mean+mean/3)*(1+buffer)
		},
		meanGen, bufferGen, simsGen, seedGen,
	))

	properties.TestingRun(t)
}
