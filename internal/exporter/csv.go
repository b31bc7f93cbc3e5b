package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shoppulse/internal/pipeline"
)

// utf8BOM makes Excel open exported CSV files as UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes report CSV files under a report directory.
type CSVWriter struct {
	reportDir string
	logger    *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at reportDir.
func NewCSVWriter(reportDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{reportDir: reportDir, logger: logger}
}

// WriteCSV writes a single CSV file with a UTF-8 BOM, headers and
// records. Relative names resolve under the report directory.
func (w *CSVWriter) WriteCSV(name string, headers []string, records [][]string) error {
	fullPath := w.resolvePath(name)

	w.logger.Info("writing CSV report",
		slog.String("path", fullPath),
		slog.Int("records", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// WriteReport writes the full report as a set of CSV files named after
// base, and returns the written paths.
func (w *CSVWriter) WriteReport(base string, report Report) ([]string, error) {
	files := []struct {
		suffix  string
		headers []string
		records [][]string
	}{
		{"kept", classifiedHeaders, classifiedRows(report.Kept)},
		{"excluded", classifiedHeaders, classifiedRows(report.Excluded)},
		{"annotated", annotatedHeaders, annotatedRows(report.Detection.Annotated)},
		{"outliers", annotatedHeaders, annotatedRows(report.Detection.Outliers)},
		{"group_stats", statsHeaders, statsRows(report.Detection.Stats)},
		{"seller_summary", summaryHeaders, summaryRows(report.Summary)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		name := fmt.Sprintf("%s_%s.csv", base, f.suffix)
		if err := w.WriteCSV(name, f.headers, f.records); err != nil {
			return paths, fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, w.resolvePath(name))
	}
	return paths, nil
}

// StreamWriter writes CSV records incrementally for large batches.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter opens a streaming CSV writer with the BOM and
// headers already written.
func (w *CSVWriter) CreateStreamWriter(name string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("write headers: %w", err)
		}
	}
	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes one record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.reportDir, name)
}

func classifiedRows(records []pipeline.ClassifiedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, classifiedRow(rec))
	}
	return rows
}

func annotatedRows(records []pipeline.OutlierRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, annotatedRow(rec))
	}
	return rows
}

func statsRows(stats []pipeline.GroupStats) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, statsRow(st))
	}
	return rows
}

func summaryRows(summaries []pipeline.SellerSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, summaryRow(s))
	}
	return rows
}
