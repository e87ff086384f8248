package pipeline

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/theirongolddev/omrisk/internal/analyze"
	"github.com/theirongolddev/omrisk/internal/model"
)

// MonthlyProfile summarizes the portfolio total for each calendar month
// across all scenarios. Months with no rows are reported as zeros.
func MonthlyProfile(monthly model.MonthlySample) []model.MonthStats {
	byMonth := make([][]float64, model.MonthsPerYear)
	for _, row := range monthly.Rows {
		if row.Month < 1 || row.Month > model.MonthsPerYear {
			continue
		}
		byMonth[row.Month-1] = append(byMonth[row.Month-1], row.TotalMonth)
	}

	out := make([]model.MonthStats, model.MonthsPerYear)
	for i, vals := range byMonth {
		ms := model.MonthStats{Month: i + 1}
		if len(vals) > 0 {
			ms.Mean = analyze.Mean(vals)
			ms.P50 = analyze.Percentile(vals, 50)
			ms.P90 = analyze.Percentile(vals, 90)
			ms.Min, ms.Max = floats.Min(vals), floats.Max(vals)
		}
		out[i] = ms
	}
	return out
}

// Histogram buckets values into bins equal-width intervals spanning
// [min, max]. The last bin is closed on the right. A constant input yields a
// single bin holding every value. The terminal chart and the PNG export both
// draw these bins.
func Histogram(values []float64, bins int) []model.HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		return []model.HistogramBin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram bins are half-open; nudge the last edge so hi is counted.
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	counts := stat.Histogram(nil, edges, sorted, nil)

	out := make([]model.HistogramBin, bins)
	for i, c := range counts {
		out[i] = model.HistogramBin{Lower: edges[i], Upper: edges[i+1], Count: int(c)}
	}
	out[bins-1].Upper = hi
	return out
}
