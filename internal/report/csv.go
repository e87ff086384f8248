package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// CSV file names written by WriteCSV.
const (
	MonthlyCSV     = "monthly.csv"
	AnnualCSV      = "annual.csv"
	SummaryCSV     = "summary.csv"
	DriversCSV     = "drivers.csv"
	AssumptionsCSV = "assumptions.csv"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func fraction(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one CSV file per output table into dir.
func WriteCSV(dir string, in Input) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	writers := []struct {
		name  string
		write func(*csv.Writer, Input) error
	}{
		{MonthlyCSV, writeMonthlyCSV},
		{AnnualCSV, writeAnnualCSV},
		{SummaryCSV, writeSummaryCSV},
		{DriversCSV, writeDriversCSV},
		{AssumptionsCSV, writeAssumptionsCSV},
	}
	for _, w := range writers {
		if err := writeCSVFile(filepath.Join(dir, w.name), in, w.write); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, in Input, write func(*csv.Writer, Input) error) error {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := write(w, in); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeMonthlyCSV(w *csv.Writer, in Input) error {
	cats := in.Monthly.Categories
	header := append(append([]string{"sim_id", "month"}, cats...), "total_month")
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, r := range in.Monthly.Rows {
		rec[0] = strconv.Itoa(r.SimID)
		rec[1] = strconv.Itoa(r.Month)
		for i, v := range r.Costs {
			rec[i+2] = money(v)
		}
		rec[len(rec)-1] = money(r.TotalMonth)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeAnnualCSV(w *csv.Writer, in Input) error {
	cats := in.Annual.Categories
	header := append(append([]string{"sim_id"}, cats...), "total_annual")
	if err := w.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, r := range in.Annual.Rows {
		rec[0] = strconv.Itoa(r.SimID)
		for i, v := range r.Costs {
			rec[i+1] = money(v)
		}
		rec[len(rec)-1] = money(r.TotalAnnual)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeSummaryCSV(w *csv.Writer, in Input) error {
	fields := summaryFields(in.Summary)
	header := make([]string, len(fields))
	rec := make([]string, len(fields))
	for i, fld := range fields {
		header[i] = fld.Name
		if fld.Pct {
			rec[i] = fraction(fld.Value)
		} else {
			rec[i] = money(fld.Value)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}
	return w.Write(rec)
}

func writeDriversCSV(w *csv.Writer, in Input) error {
	if err := w.Write([]string{"category", "annual_variance", "variance_share"}); err != nil {
		return err
	}
	for _, d := range in.Drivers {
		if err := w.Write([]string{d.Category, money(d.AnnualVariance), fraction(d.VarianceShare)}); err != nil {
			return err
		}
	}
	return nil
}

func writeAssumptionsCSV(w *csv.Writer, in Input) error {
	a := in.Assumptions
	if err := w.Write([]string{"category", "annual_mean_usd", "annual_vol_pct"}); err != nil {
		return err
	}
	for _, c := range a.Categories {
		if err := w.Write([]string{c.Category, money(c.AnnualMean), fraction(c.AnnualVolPct)}); err != nil {
			return err
		}
	}
	if err := w.Write(nil); err != nil {
		return err
	}
	if err := w.Write([]string{"n_sims", "random_seed", "budget_buffer_pct"}); err != nil {
		return err
	}
	return w.Write([]string{
		strconv.Itoa(a.NSims),
		strconv.FormatInt(a.RandomSeed, 10),
		fraction(a.BudgetBufferPct),
	})
}
