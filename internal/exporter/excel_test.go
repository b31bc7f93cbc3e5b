package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelWriter_WriteReport(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, nil)

	path, err := w.WriteReport("run1.xlsx", sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run1.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Kept", "Excluded", "Outliers", "Group Stats", "Seller Summary"},
		f.GetSheetList())

	rows, err := f.GetRows("Kept")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, classifiedHeaders[0], rows[0][0])

	rows, err = f.GetRows("Seller Summary")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "smartstore.naver.com", rows[1][0])

	// Outliers sheet has headers only for this report.
	rows, err = f.GetRows("Outliers")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
