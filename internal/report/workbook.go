package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary     = "Summary"
	sheetDrivers     = "Risk Drivers"
	sheetAssumptions = "Assumptions"
	sheetAnnual      = "Annual Sims"

	moneyFormat   = "$#,##0"
	percentFormat = "0.0%"
)

type workbookStyles struct {
	header, money, percent int
}

// WriteWorkbook writes the finance-facing workbook to path.
func WriteWorkbook(path string, in Input) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newWorkbookStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	for _, name := range []string{sheetDrivers, sheetAssumptions, sheetAnnual} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}

	for _, write := range []func(*excelize.File, Input, workbookStyles) error{
		writeSummarySheet,
		writeDriversSheet,
		writeAssumptionsSheet,
		writeAnnualSheet,
	} {
		if err := write(f, in, st); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var st workbookStyles
	var err error
	money, pct := moneyFormat, percentFormat

	if st.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return st, fmt.Errorf("creating header style: %w", err)
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		return st, fmt.Errorf("creating money style: %w", err)
	}
	if st.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pct}); err != nil {
		return st, fmt.Errorf("creating percent style: %w", err)
	}
	return st, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// writeRow writes values starting at (1, row) and applies styles per column.
func writeRow(f *excelize.File, sheet string, row int, values []any, styles []int) error {
	start := cell(1, row)
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	for i, id := range styles {
		if id == 0 {
			continue
		}
		c := cell(i+1, row)
		if err := f.SetCellStyle(sheet, c, c, id); err != nil {
			return fmt.Errorf("styling %s!%s: %w", sheet, c, err)
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, row, values, nil); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, row), cell(len(headers), row), style)
}

func writeSummarySheet(f *excelize.File, in Input, st workbookStyles) error {
	fields := summaryFields(in.Summary)
	headers := make([]string, len(fields))
	values := make([]any, len(fields))
	styles := make([]int, len(fields))
	for i, fld := range fields {
		headers[i] = fld.Name
		values[i] = fld.Value
		styles[i] = st.money
		if fld.Pct {
			styles[i] = st.percent
		}
	}
	if err := writeHeader(f, sheetSummary, 1, headers, st.header); err != nil {
		return err
	}
	if err := writeRow(f, sheetSummary, 2, values, styles); err != nil {
		return err
	}
	return setWidths(f, sheetSummary, 1, len(fields), 26)
}

func writeDriversSheet(f *excelize.File, in Input, st workbookStyles) error {
	if err := writeHeader(f, sheetDrivers, 1, []string{"category", "annual_variance", "variance_share"}, st.header); err != nil {
		return err
	}
	for i, d := range in.Drivers {
		err := writeRow(f, sheetDrivers, i+2,
			[]any{d.Category, d.AnnualVariance, d.VarianceShare},
			[]int{0, st.money, st.percent})
		if err != nil {
			return err
		}
	}
	if err := setWidths(f, sheetDrivers, 1, 1, 18); err != nil {
		return err
	}
	return setWidths(f, sheetDrivers, 2, 3, 22)
}

func writeAssumptionsSheet(f *excelize.File, in Input, st workbookStyles) error {
	a := in.Assumptions
	if err := writeHeader(f, sheetAssumptions, 1, []string{"category", "annual_mean_usd", "annual_vol_pct"}, st.header); err != nil {
		return err
	}
	for i, c := range a.Categories {
		err := writeRow(f, sheetAssumptions, i+2,
			[]any{c.Category, c.AnnualMean, c.AnnualVolPct},
			[]int{0, st.money, st.percent})
		if err != nil {
			return err
		}
	}

	// Meta table sits three rows below the category table's last row.
	metaRow := len(a.Categories) + 1 + 3
	if err := writeHeader(f, sheetAssumptions, metaRow, []string{"n_sims", "random_seed", "budget_buffer_pct"}, st.header); err != nil {
		return err
	}
	if err := writeRow(f, sheetAssumptions, metaRow+1,
		[]any{a.NSims, a.RandomSeed, a.BudgetBufferPct},
		[]int{0, 0, st.percent}); err != nil {
		return err
	}
	return setWidths(f, sheetAssumptions, 1, 3, 22)
}

func writeAnnualSheet(f *excelize.File, in Input, st workbookStyles) error {
	cats := in.Annual.Categories
	headers := append(append([]string{"sim_id"}, cats...), "total_annual")
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColStyle(sheetAnnual, "B:"+lastCol, st.money); err != nil {
		return fmt.Errorf("styling %s columns: %w", sheetAnnual, err)
	}
	if err := writeHeader(f, sheetAnnual, 1, headers, st.header); err != nil {
		return err
	}

	values := make([]any, len(headers))
	for i, r := range in.Annual.Rows {
		values[0] = r.SimID
		for j, v := range r.Costs {
			values[j+1] = v
		}
		values[len(values)-1] = r.TotalAnnual
		if err := writeRow(f, sheetAnnual, i+2, values, nil); err != nil {
			return err
		}
	}
	if err := setWidths(f, sheetAnnual, 1, 1, 10); err != nil {
		return err
	}
	return setWidths(f, sheetAnnual, 2, len(headers), 20)
}

func setWidths(f *excelize.File, sheet string, from, to int, width float64) error {
	fromCol, _ := excelize.ColumnNumberToName(from)
	toCol, _ := excelize.ColumnNumberToName(to)
	if err := f.SetColWidth(sheet, fromCol, toCol, width); err != nil {
		return fmt.Errorf("sizing %s columns: %w", sheet, err)
	}
	return nil
}
