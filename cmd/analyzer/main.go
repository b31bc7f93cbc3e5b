// Command analyzer runs the product analysis pipeline over one or more
// batch files and writes CSV and Excel reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"shoppulse/internal/config"
	"shoppulse/internal/exporter"
	"shoppulse/internal/infrastructure"
	"shoppulse/internal/ingest"
	"shoppulse/internal/services"
)

// maxConcurrentFiles caps how many batches are processed at once.
const maxConcurrentFiles = 4

func main() {
	inPath := flag.String("in", "", "input file or directory of batches (defaults to the configured input dir)")
	outDir := flag.String("out", "", "output directory for reports (defaults to the configured report dir)")
	configFile := flag.String("config", "", "path to a YAML config file")
	query := flag.String("query", "", "reference search query")
	method := flag.String("method", "", "outlier detection method: iqr or quantile")
	group := flag.String("group", "", "comma-separated grouping columns for IQR bounds")
	variants := flag.Bool("variants", false, "keep non-standard size variants")
	aux := flag.Bool("aux", false, "also flag records by deviation from the group median")
	auxPct := flag.Float64("aux-pct", 0, "deviation threshold in percent for the aux rule")
	quantile := flag.Float64("quantile", 0, "upper bound quantile for the quantile method")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *inPath == "" {
		*inPath = cfg.Paths.InputDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportDir
	}

	inputs, err := collectInputs(*inPath)
	if err != nil {
		logger.Error("Failed to collect input batches", "error", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		logger.Error("No input batches found", "path", *inPath)
		os.Exit(1)
	}

	req := services.AnalysisRequest{
		Query:           *query,
		Method:          *method,
		GroupCols:       splitGroupCols(*group),
		IncludeVariants: *variants,
		UseAux:          *aux,
		AuxPct:          *auxPct,
		UpperQuantile:   *quantile,
	}

	svc := services.NewAnalysisService(cfg.Pipeline, nil, logger)
	csvWriter := exporter.NewCSVWriter(*outDir, logger)
	excelWriter := exporter.NewExcelWriter(*outDir, logger)

	ctx := infrastructure.EnsureTraceID(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			return processBatch(ctx, input, svc, req, csvWriter, excelWriter, logger)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Analysis run failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Analysis run finished", "batches", len(inputs), "reports", *outDir)
}

// processBatch runs the pipeline over one input file and writes its
// reports.
func processBatch(ctx context.Context, path string, svc *services.AnalysisService, req services.AnalysisRequest, csvWriter *exporter.CSVWriter, excelWriter *exporter.ExcelWriter, logger *slog.Logger) error {
	table, err := ingest.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	result, err := svc.Analyze(ctx, table, req)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	report := exporter.Report{
		Query:     result.Query,
		Kept:      result.Kept,
		Excluded:  result.Excluded,
		Detection: result.Detection,
		Summary:   result.Summary,
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := csvWriter.WriteReport(base, report); err != nil {
		return fmt.Errorf("export CSV reports for %s: %w", path, err)
	}
	if _, err := excelWriter.WriteReport(base+".xlsx", report); err != nil {
		return fmt.Errorf("export Excel report for %s: %w", path, err)
	}

	logger.InfoContext(ctx, "batch processed",
		"input", path,
		"records", result.TotalRecords,
		"kept", len(result.Kept),
		"outliers", len(result.Detection.Outliers))
	return nil
}

// collectInputs expands a file or directory path into the list of batch
// files to process.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".json", ".xlsx":
			inputs = append(inputs, filepath.Join(path, entry.Name()))
		}
	}
	return inputs, nil
}

func splitGroupCols(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, col := range strings.Split(s, ",") {
		if col = strings.TrimSpace(col); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}
