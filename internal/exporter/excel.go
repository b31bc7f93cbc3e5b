package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter writes the full analysis report as a multi-sheet workbook.
type ExcelWriter struct {
	reportDir string
	logger    *slog.Logger
}

// NewExcelWriter creates an Excel writer rooted at reportDir.
func NewExcelWriter(reportDir string, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{reportDir: reportDir, logger: logger}
}

// WriteReport writes one workbook with a sheet per report section and
// returns the written path.
func (w *ExcelWriter) WriteReport(name string, report Report) (string, error) {
	fullPath := name
	if !filepath.IsAbs(name) {
		fullPath = filepath.Join(w.reportDir, name)
	}

	w.logger.Info("writing Excel report",
		slog.String("path", fullPath),
		slog.Int("kept", len(report.Kept)),
		slog.Int("excluded", len(report.Excluded)),
		slog.Int("outliers", len(report.Detection.Outliers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{"Kept", classifiedHeaders, classifiedRows(report.Kept)},
		{"Excluded", classifiedHeaders, classifiedRows(report.Excluded)},
		{"Outliers", annotatedHeaders, annotatedRows(report.Detection.Outliers)},
		{"Group Stats", statsHeaders, statsRows(report.Detection.Stats)},
		{"Seller Summary", summaryHeaders, summaryRows(report.Summary)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return "", fmt.Errorf("create sheet %s: %w", sheet.name, err)
			}
		}
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.records); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return fullPath, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, records [][]string) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, record := range records {
		if err := setRow(f, sheet, i+2, record); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}
