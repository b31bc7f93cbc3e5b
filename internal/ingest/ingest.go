package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"shoppulse/internal/pipeline"
)

// utf8BOM is the byte order mark Excel prepends to UTF-8 CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a product batch from a file, dispatching on the extension.
// Supported: .csv, .json, .xlsx.
func Load(path string) (pipeline.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	case ".xlsx":
		return LoadExcel(path)
	default:
		return pipeline.Table{}, fmt.Errorf("unsupported input format: %s", filepath.Ext(path))
	}
}

// LoadCSV reads a CSV file into a raw table.
func LoadCSV(path string) (pipeline.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// ReadCSV reads CSV content into a raw table. The first row is the
// header. A leading UTF-8 BOM is tolerated. Rows that fail to parse are
// logged and skipped rather than failing the batch.
func ReadCSV(r io.Reader) (pipeline.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return pipeline.Table{}, nil
	}
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("read CSV header: %w", err)
	}

	table := pipeline.Table{Columns: header}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("skipping malformed CSV record",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// LoadJSON reads a JSON file into a raw table.
func LoadJSON(path string) (pipeline.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("open JSON file: %w", err)
	}
	defer file.Close()

	table, err := ReadJSON(file)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// ReadJSON reads an array of flat objects, the shape returned by the
// shopping search API, into a raw table. Columns are the union of the
// object keys in sorted order; nested values are ignored.
func ReadJSON(r io.Reader) (pipeline.Table, error) {
	var objects []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return pipeline.Table{}, fmt.Errorf("decode JSON array: %w", err)
	}
	if len(objects) == 0 {
		return pipeline.Table{}, nil
	}

	colSet := make(map[string]struct{})
	for _, obj := range objects {
		for key := range obj {
			colSet[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(colSet))
	for key := range colSet {
		columns = append(columns, key)
	}
	sort.Strings(columns)

	table := pipeline.Table{Columns: columns}
	for _, obj := range objects {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = stringifyJSONValue(obj[col])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// LoadExcel reads the first sheet of an Excel workbook into a raw table.
// The first row is the header.
func LoadExcel(path string) (pipeline.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()
	return excelTable(f)
}

// ReadExcel reads Excel workbook content, such as an upload, into a raw
// table.
func ReadExcel(r io.Reader) (pipeline.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("open Excel content: %w", err)
	}
	defer f.Close()
	return excelTable(f)
}

func excelTable(f *excelize.File) (pipeline.Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return pipeline.Table{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return pipeline.Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return pipeline.Table{}, nil
	}

	return pipeline.Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// stringifyJSONValue renders a decoded JSON scalar as a table cell.
// Whole-number floats drop the fractional part so numeric IDs and prices
// survive the round trip; anything non-scalar becomes an empty cell.
func stringifyJSONValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
