package analyze

import (
	"sort"

	"github.com/theirongolddev/omrisk/internal/model"
)

// VarianceContributions ranks categories by their share of across-category
// annual variance, most significant first. Shares are all zero when every
// category has zero variance. Ties are ordered by category identifier.
func VarianceContributions(annual model.AnnualSample, categories []string) []model.VarianceContribution {
	rows := make([]model.VarianceContribution, 0, len(categories))
	total := 0.0
	for _, c := range categories {
		v := SampleVariance(annual.Column(c))
		rows = append(rows, model.VarianceContribution{Category: c, AnnualVariance: v})
		total += v
	}

	if total > 0 {
		for i := range rows {
			rows[i].VarianceShare = rows[i].AnnualVariance / total
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].VarianceShare != rows[j].VarianceShare {
			return rows[i].VarianceShare > rows[j].VarianceShare
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
