// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatCost formats a USD amount rounded to whole dollars with thousands
// separators, e.g. 5400000 -> "$5,400,000".
func FormatCost(cost float64) string {
	if cost < 0 {
		return "-" + FormatCost(-cost)
	}
	return "$" + printer().Sprintf("%d", int64(math.Round(cost)))
}

// FormatCostCompact formats a USD amount with a magnitude suffix.
// e.g., 10234567 -> "$10.23M", 4500 -> "$4.5K"
func FormatCostCompact(cost float64) string {
	if cost < 0 {
		return "-" + FormatCostCompact(-cost)
	}
	switch {
	case cost >= 1_000_000_000:
		return fmt.Sprintf("$%.2fB", cost/1_000_000_000)
	case cost >= 1_000_000:
		return fmt.Sprintf("$%.2fM", cost/1_000_000)
	case cost >= 1_000:
		return fmt.Sprintf("$%.1fK", cost/1_000)
	default:
		return fmt.Sprintf("$%.0f", cost)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer().Sprintf("%d", n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a cost change with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatCost(delta)
	}
	return "-" + FormatCost(-delta)
}

// FormatPointDelta formats a change in a 0-1 probability as percentage points.
func FormatPointDelta(current, previous float64) string {
	return fmt.Sprintf("%+.1fpp", (current-previous)*100)
}
