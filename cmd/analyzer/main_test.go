package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/config"
	"shoppulse/internal/exporter"
	"shoppulse/internal/services"
)

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.json", "c.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	inputs, err := collectInputs(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "c.xlsx"),
	}, inputs)
}

func TestCollectInputs_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	inputs, err := collectInputs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, inputs)
}

func TestCollectInputs_Missing(t *testing.T) {
	_, err := collectInputs(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestSplitGroupCols(t *testing.T) {
	assert.Nil(t, splitGroupCols(""))
	assert.Equal(t, []string{"query"}, splitGroupCols("query"))
	assert.Equal(t, []string{"query", "brand"}, splitGroupCols(" query , brand ,"))
}

func TestProcessBatch_WritesReports(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	csvContent := "query,title,lprice,mall_name\n" +
		"캄프 카밍패드,캄프 카밍패드 70매,15000,m1\n" +
		"캄프 카밍패드,캄프 카밍패드 70매,21000,m2\n" +
		"캄프 카밍패드,캄프 카밍패드 70매,23000,m3\n"
	input := filepath.Join(inDir, "batch.csv")
	require.NoError(t, os.WriteFile(input, []byte(csvContent), 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	defaults := config.PipelineConfig{
		Query:         "캄프 카밍패드",
		Method:        services.MethodIQR,
		GroupCols:     []string{"query"},
		AuxPct:        50,
		UpperQuantile: 0.75,
	}
	svc := services.NewAnalysisService(defaults, nil, logger)
	csvWriter := exporter.NewCSVWriter(outDir, logger)
	excelWriter := exporter.NewExcelWriter(outDir, logger)

	err := processBatch(context.Background(), input, svc, services.AnalysisRequest{}, csvWriter, excelWriter, logger)
	require.NoError(t, err)

	for _, name := range []string{
		"batch_kept.csv", "batch_excluded.csv", "batch_annotated.csv",
		"batch_outliers.csv", "batch_group_stats.csv", "batch_seller_summary.csv",
		"batch.xlsx",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}
