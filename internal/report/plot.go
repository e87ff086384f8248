package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/theirongolddev/omrisk/internal/model"
	"github.com/theirongolddev/omrisk/internal/pipeline"
)

// ChartTitle is the heading of the distribution chart.
const ChartTitle = "Simulated Annual O&M Cost Distribution"

var (
	barColor    = color.RGBA{R: 0x43, G: 0x85, B: 0xBE, A: 0xFF}
	budgetColor = color.RGBA{R: 0xD1, G: 0x4D, B: 0x41, A: 0xFF}
)

// WriteHistogramPNG draws the total_annual distribution with a vertical line
// at the budget. The image format follows the path extension.
func WriteHistogramPNG(path string, annual model.AnnualSample, budget float64, bins int) error {
	if annual.Len() == 0 {
		return errors.New("plotting histogram: no scenarios")
	}
	if bins <= 0 {
		bins = 60
	}
	if err := ensureParent(path); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = ChartTitle
	p.X.Label.Text = "Annual O&M Cost (USD)"
	p.Y.Label.Text = "Frequency"

	hist := histogramPlotter(pipeline.Histogram(annual.Totals(), bins))
	p.Add(hist)

	peak := 0.0
	for _, b := range hist.Bins {
		peak = max(peak, b.Weight)
	}
	line, err := plotter.NewLine(plotter.XYs{{X: budget, Y: 0}, {X: budget, Y: peak}})
	if err != nil {
		return fmt.Errorf("building budget line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = budgetColor
	p.Add(line)
	p.Legend.Add("budget", line)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}
	return nil
}

// histogramPlotter draws precomputed bins so the image matches the terminal
// chart bin for bin.
func histogramPlotter(bins []model.HistogramBin) *plotter.Histogram {
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(bins)),
		Width:     bins[0].Upper - bins[0].Lower,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.LineStyle.Width = vg.Length(0)
	for i, b := range bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Lower, Max: b.Upper, Weight: float64(b.Count)}
	}
	return h
}
