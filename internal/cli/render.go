package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/theme"
)

// Styles are derived from the active theme on each render so that
// theme.SetActive takes effect without re-initialization.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	dim    lipgloss.Style
	safe   lipgloss.Style
	over   lipgloss.Style
	budget lipgloss.Style
	accent lipgloss.Style
}

func currentStyles() styles {
	t := theme.Active
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary).Align(lipgloss.Center),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		value:  lipgloss.NewStyle().Foreground(t.TextPrimary),
		muted:  lipgloss.NewStyle().Foreground(t.TextMuted),
		dim:    lipgloss.NewStyle().Foreground(t.Border),
		safe:   lipgloss.NewStyle().Foreground(t.Safe),
		over:   lipgloss.NewStyle().Foreground(t.Over),
		budget: lipgloss.NewStyle().Bold(true).Foreground(t.Budget),
		accent: lipgloss.NewStyle().Foreground(t.Accent),
	}
}

// Table represents a bordered text table for CLI output.
// A row consisting of the single cell "---" renders as a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	st := currentStyles()
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(st.title.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned and the rest are right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	st := currentStyles()

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return st.dim.Render(b.String()) + "\n"
	}
	sep := st.dim.Render("│")

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(st.header.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(sep)
		for i, h := range t.Headers {
			b.WriteString(st.header.Render(" " + pad(h, widths[i], i == 0) + " "))
			if i < numCols-1 {
				b.WriteString(sep)
			}
		}
		b.WriteString(sep + "\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(sep)
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(st.value.Render(" " + pad(cell, widths[i], i == 0) + " "))
			if i < numCols-1 {
				b.WriteString(sep)
			}
		}
		b.WriteString(sep + "\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

func pad(s string, width int, left bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// RenderHistogram draws one horizontal bar per bin scaled to width. Bins
// entirely at or below the budget are shaded as safe, bins above it as over,
// and the bin containing the budget is marked.
func RenderHistogram(bins []model.HistogramBin, budget float64, width int) string {
	if len(bins) == 0 {
		return ""
	}
	if width < 1 {
		width = 40
	}
	st := currentStyles()

	peak := 0
	for _, bin := range bins {
		peak = max(peak, bin.Count)
	}

	labels := make([]string, len(bins))
	labelWidth := 0
	for i, bin := range bins {
		labels[i] = FormatCostCompact(bin.Lower) + " - " + FormatCostCompact(bin.Upper)
		labelWidth = max(labelWidth, len(labels[i]))
	}

	var b strings.Builder
	for i, bin := range bins {
		barLen := 0
		if peak > 0 {
			barLen = bin.Count * width / peak
		}
		if bin.Count > 0 && barLen == 0 {
			barLen = 1
		}
		bar := strings.Repeat("█", barLen) + strings.Repeat(" ", width-barLen)

		containsBudget := budget >= bin.Lower && (budget < bin.Upper || (i == len(bins)-1 && budget <= bin.Upper))
		var styled string
		switch {
		case containsBudget:
			styled = st.budget.Render(bar)
		case bin.Lower >= budget:
			styled = st.over.Render(bar)
		default:
			styled = st.safe.Render(bar)
		}

		fmt.Fprintf(&b, "  %s %s %s", st.muted.Render(fmt.Sprintf("%*s", labelWidth, labels[i])), styled, FormatNumber(int64(bin.Count)))
		if containsBudget {
			b.WriteString(" " + st.budget.Render("◀ budget "+FormatCostCompact(budget)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}
	st := currentStyles()

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		st.muted.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline renders values as unicode blocks scaled between the series
// minimum and maximum. A flat series renders at mid height.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := len(blocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return currentStyles().accent.Render(b.String())
}
