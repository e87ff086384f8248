package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/omrisk/internal/report"
)

var (
	flagExportXLSX   string
	flagExportPNG    string
	flagExportCSVDir string
	flagExportBins   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the Excel workbook, distribution chart and CSV tables",
	Long: "Write the Excel workbook, distribution chart and CSV tables.\n" +
		"Unset paths default to files under report.output_dir.",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportXLSX, "xlsx", "", "Workbook path (default <output_dir>/om_risk_report.xlsx)")
	exportCmd.Flags().StringVar(&flagExportPNG, "png", "", "Chart path (default <output_dir>/annual_cost_distribution.png)")
	exportCmd.Flags().StringVar(&flagExportCSVDir, "csv-dir", "", "CSV directory (default <output_dir>/csv)")
	exportCmd.Flags().IntVar(&flagExportBins, "bins", 0, "Chart histogram bins (default report.histogram_bins)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	res, file, err := simulate(cmd)
	if err != nil {
		return err
	}

	outDir := file.Report.OutputDir
	if outDir == "" {
		outDir = "outputs"
	}
	xlsxPath := orDefault(flagExportXLSX, filepath.Join(outDir, "om_risk_report.xlsx"))
	pngPath := orDefault(flagExportPNG, filepath.Join(outDir, "annual_cost_distribution.png"))
	csvDir := orDefault(flagExportCSVDir, filepath.Join(outDir, "csv"))
	bins := flagExportBins
	if bins <= 0 {
		bins = file.Report.HistogramBins
	}

	in := report.FromResult(res)
	if err := report.WriteWorkbook(xlsxPath, in); err != nil {
		return err
	}
	if err := report.WriteHistogramPNG(pngPath, res.Annual, res.Budget, bins); err != nil {
		return err
	}
	if err := report.WriteCSV(csvDir, in); err != nil {
		return err
	}

	logger.Info().Str("run_id", res.RunID.String()).Str("xlsx", xlsxPath).Str("png", pngPath).Str("csv_dir", csvDir).Msg("exported")
	fmt.Println()
	fmt.Printf("  Workbook: %s\n", xlsxPath)
	fmt.Printf("  Chart:    %s\n", pngPath)
	fmt.Printf("  CSV:      %s\n", csvDir)
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
