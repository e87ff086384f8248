package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/omrisk/internal/analyze"
	"github.com/theirongolddev/omrisk/internal/config"
	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/simulate"
)

// ProgressFunc is called as seeds complete.
// current is the number of seeds processed so far, total is the total count.
type ProgressFunc func(current, total int)

// SeedResult is the summary of one seed in a stability run.
type SeedResult struct {
	Seed    int64
	Summary model.SummaryMetrics
}

// StabilityResult shows how much the risk estimate moves across seeds.
type StabilityResult struct {
	Seeds []SeedResult // in input seed order

	MeanProbOverBudget  float64
	StdProbOverBudget   float64
	MeanExpectedOverrun float64
	StdExpectedOverrun  float64
	MeanP95AnnualCost   float64
	StdP95AnnualCost    float64
}

// RunSeeds scores cfg once per seed using a bounded worker pool. Each seed's
// result is independent of the others, so output is in input order and does
// not depend on which worker finishes first.
func RunSeeds(cfg model.CostModelConfig, seeds []int64, progressFn ProgressFunc) (*StabilityResult, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if len(seeds) == 0 {
		return &StabilityResult{}, nil
	}

	budget := simulate.Budget(cfg)

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(seeds) {
		numWorkers = len(seeds)
	}

	work := make(chan int, len(seeds))
	results := make([]SeedResult, len(seeds))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range seeds {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				seed := seeds[idx]
				seeded := cfg.WithOverrides(nil, &seed)
				_, annual := simulate.Run(seeded)
				results[idx] = SeedResult{Seed: seed, Summary: analyze.Summarize(annual, budget)}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(seeds))
				}
			}
		}()
	}
	wg.Wait()

	prob := make([]float64, len(results))
	overrun := make([]float64, len(results))
	p95 := make([]float64, len(results))
	for i, r := range results {
		prob[i] = r.Summary.ProbOverBudget
		overrun[i] = r.Summary.ExpectedOverrun
		p95[i] = r.Summary.P95AnnualCost
	}

	return &StabilityResult{
		Seeds:               results,
		MeanProbOverBudget:  analyze.Mean(prob),
		StdProbOverBudget:   analyze.SampleStdDev(prob),
		MeanExpectedOverrun: analyze.Mean(overrun),
		StdExpectedOverrun:  analyze.SampleStdDev(overrun),
		MeanP95AnnualCost:   analyze.Mean(p95),
		StdP95AnnualCost:    analyze.SampleStdDev(p95),
	}, nil
}

// SeedRange returns n consecutive seeds starting at base.
func SeedRange(base int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = base + int64(i)
	}
	return out
}
