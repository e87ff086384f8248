// Package simulate draws Monte Carlo monthly cost scenarios for a cost model
// and derives the budget threshold they are scored against.
package simulate

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/theirongolddev/omrisk/internal/model"
)

// Params are the per-category monthly Normal parameters.
type Params struct {
	MonthlyMean float64
	MonthlyStd  float64
}

// CategoryParams converts annual assumptions to monthly Normal parameters.
// Monthly std assumes 12 independent, identically distributed monthly noise
// terms: sigma_m = sigma_a / sqrt(12).
func CategoryParams(annualMean, annualVolPct float64) Params {
	annualStd := annualMean * annualVolPct
	return Params{
		MonthlyMean: annualMean / model.MonthsPerYear,
		MonthlyStd:  annualStd / math.Sqrt(model.MonthsPerYear),
	}
}

// Run simulates cfg.NSims years of monthly costs. cfg must already be
// validated. Output is a pure function of cfg: each category draws from its
// own stream keyed by (RandomSeed, category), so the result does not depend on
// goroutine scheduling.
func Run(cfg model.CostModelConfig) (model.MonthlySample, model.AnnualSample) {
	cats := cfg.Categories()
	nSims := cfg.NSims
	cells := nSims * model.MonthsPerYear

	// draws[c][s*12+m] holds the clipped cost of category c in scenario s, month m.
	draws := make([][]float64, len(cats))
	var wg sync.WaitGroup
	for ci, name := range cats {
		draws[ci] = make([]float64, cells)
		wg.Add(1)
		go func(out []float64, name string) {
			defer wg.Done()
			p := CategoryParams(cfg.AnnualMean[name], cfg.AnnualVolPct[name])
			drawCategory(out, p, NewStream(cfg.RandomSeed, name))
		}(draws[ci], name)
	}
	wg.Wait()

	monthly := model.MonthlySample{
		Categories: cats,
		Rows:       make([]model.MonthlyRow, 0, cells),
	}
	annual := model.AnnualSample{
		Categories: cats,
		Rows:       make([]model.AnnualRow, 0, nSims),
	}

	for s := 0; s < nSims; s++ {
		yearly := make([]float64, len(cats))
		for m := 0; m < model.MonthsPerYear; m++ {
			idx := s*model.MonthsPerYear + m
			costs := make([]float64, len(cats))
			total := 0.0
			for ci := range cats {
				v := draws[ci][idx]
				costs[ci] = v
				total += v
				yearly[ci] += v
			}
			monthly.Rows = append(monthly.Rows, model.MonthlyRow{
				SimID:      s + 1,
				Month:      m + 1,
				Costs:      costs,
				TotalMonth: total,
			})
		}

		total := 0.0
		for _, v := range yearly {
			total += v
		}
		annual.Rows = append(annual.Rows, model.AnnualRow{
			SimID:       s + 1,
			Costs:       yearly,
			TotalAnnual: total,
		})
	}

	return monthly, annual
}

// drawCategory fills out with clipped Normal draws in (scenario, month) order.
func drawCategory(out []float64, p Params, rng *rand.Rand) {
	for i := range out {
		// Clipping nudges the mean up for high-volatility categories; accepted.
		out[i] = math.Max(p.MonthlyMean+p.MonthlyStd*rng.NormFloat64(), 0)
	}
}

// NewStream returns the deterministic PRNG sub-stream for one category.
func NewStream(seed int64, category string) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), streamKey(category)))
}

func streamKey(category string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(category))
	return h.Sum64()
}
