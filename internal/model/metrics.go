package model

// VarianceContribution attributes annual cost variance to one category.
type VarianceContribution struct {
	Category       string  `json:"category"`
	AnnualVariance float64 `json:"annual_variance"`
	VarianceShare  float64 `json:"variance_share"`
}

// MonthStats summarizes total_month for one calendar month across scenarios.
type MonthStats struct {
	Month int     `json:"month"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P90   float64 `json:"p90"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// HistogramBin is one equal-width bucket of a value distribution.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}
