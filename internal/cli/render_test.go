package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/model"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Risk Drivers",
		Headers: []string{"Category", "Share"},
		Rows: [][]string{
			{"maintenance", "72.4%"},
			{"---"},
			{"labor", "8.1%"},
		},
	})

	assert.Contains(t, out, "Risk Drivers")
	assert.Contains(t, out, "maintenance")
	assert.Contains(t, out, "72.4%")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, top, header, header rule, row, separator, row, bottom
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[1], "╭"))
	assert.True(t, strings.HasPrefix(lines[5], "├"))
	assert.True(t, strings.HasPrefix(lines[7], "╰"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTable(Table{}))
}

func TestRenderHistogram_MarksBudgetBin(t *testing.T) {
	bins := []model.HistogramBin{
		{Lower: 0, Upper: 10, Count: 4},
		{Lower: 10, Upper: 20, Count: 8},
		{Lower: 20, Upper: 30, Count: 2},
	}
	out := RenderHistogram(bins, 15, 16)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.NotContains(t, lines[0], "budget")
	assert.Contains(t, lines[1], "◀ budget")
	assert.Contains(t, lines[1], strings.Repeat("█", 16))
	assert.Contains(t, lines[2], strings.Repeat("█", 4))
}

func TestRenderHistogram_BudgetAtTopEdge(t *testing.T) {
	bins := []model.HistogramBin{{Lower: 0, Upper: 10, Count: 1}, {Lower: 10, Upper: 20, Count: 1}}
	out := RenderHistogram(bins, 20, 10)
	assert.Equal(t, 1, strings.Count(out, "◀ budget"))
	assert.Equal(t, "", RenderHistogram(nil, 1, 10))
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", RenderSparkline(nil))
	assert.Equal(t, "▁▄█", RenderSparkline([]float64{10, 15, 20}))
	assert.Equal(t, "▅▅", RenderSparkline([]float64{3, 3}))
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, "", RenderProgressBar(1, 0, 10))
	assert.Equal(t, "[█████░░░░░] 5/10", RenderProgressBar(5, 10, 10))
}
