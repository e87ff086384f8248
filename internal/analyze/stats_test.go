package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Percentiles use linear interpolation between order statistics at
// rank p/100*(n-1). Other definitions (nearest-rank, Hazen, Weibull) give
// different answers on these inputs.
func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{40, 10, 30, 20} // sorted: 10 20 30 40

	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 40.0, Percentile(values, 100))
	assert.InDelta(t, 25.0, Percentile(values, 50), 1e-12) // rank 1.5
	assert.InDelta(t, 37.0, Percentile(values, 90), 1e-12) // rank 2.7
	assert.InDelta(t, 38.5, Percentile(values, 95), 1e-12) // rank 2.85
	assert.InDelta(t, 39.7, Percentile(values, 99), 1e-12) // rank 2.97
}

func TestPercentile_ExactRank(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, Percentile(values, 50))
	assert.Equal(t, 2.0, Percentile(values, 25))
}

func TestPercentile_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentile_EdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 99))
}

func TestSampleVariance_Unbiased(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// Population variance is 4; the n-1 estimator is 32/7.
	assert.InDelta(t, 32.0/7.0, SampleVariance(values), 1e-12)
	assert.InDelta(t, 5.0, Mean(values), 1e-12)
}

func TestSampleVariance_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, SampleVariance(nil))
	assert.Equal(t, 0.0, SampleVariance([]float64{3}))
	assert.Equal(t, 0.0, SampleVariance([]float64{5, 5, 5}))
	assert.Equal(t, 0.0, SampleStdDev([]float64{5}))
	assert.Equal(t, 0.0, Mean(nil))
}
