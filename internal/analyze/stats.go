// Package analyze turns simulated annual costs into budget-risk decisions.
package analyze

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between order statistics: rank = p/100 * (n-1), and the
// result is sorted[floor(rank)] weighted toward sorted[ceil(rank)] by the
// fractional part. This matches the conventional "linear" definition.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower < 0 {
		lower = 0
	}
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	if lower >= upper {
		return sorted[upper]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// SampleVariance returns the unbiased (n-1) variance, or 0 when n < 2.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// SampleStdDev returns the unbiased (n-1) standard deviation, or 0 when n < 2.
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}
