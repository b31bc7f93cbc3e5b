package exporter

import (
	"fmt"
	"sort"
	"strconv"

	"shoppulse/internal/pipeline"
)

// Report bundles everything a finished analysis produces, ready for
// export.
type Report struct {
	Query     string
	Kept      []pipeline.ClassifiedRecord
	Excluded  []pipeline.ClassifiedRecord
	Detection pipeline.DetectResult
	Summary   []pipeline.SellerSummary
}

// classifiedHeaders is the column order for classified record sheets.
var classifiedHeaders = append(append([]string{}, pipeline.StandardColumns...),
	"size_count", "excluded_reason")

// annotatedHeaders is the column order for detector output sheets.
var annotatedHeaders = append(append([]string{}, classifiedHeaders...),
	"deviation_pct", "outlier_flag", "bound_lower", "bound_upper")

var statsHeaders = []string{
	"group", "method", "median", "q1", "q3", "iqr", "lower", "upper", "outlier_count",
}

var summaryHeaders = []string{
	"seller", "total_count", "outlier_count", "outlier_rate", "mean_deviation_pct",
}

func classifiedRow(rec pipeline.ClassifiedRecord) []string {
	row := make([]string, 0, len(classifiedHeaders))
	for _, col := range pipeline.StandardColumns {
		val, _ := rec.Field(col)
		row = append(row, val)
	}
	size := ""
	if rec.SizeCount != nil {
		size = strconv.Itoa(*rec.SizeCount)
	}
	return append(row, size, string(rec.ExcludedReason))
}

func annotatedRow(rec pipeline.OutlierRecord) []string {
	row := classifiedRow(rec.ClassifiedRecord)
	return append(row,
		formatFloat(rec.DeviationPct),
		strconv.FormatBool(rec.OutlierFlag),
		formatFloat(rec.BoundLower),
		formatFloat(rec.BoundUpper),
	)
}

func statsRow(st pipeline.GroupStats) []string {
	return []string{
		groupLabel(st.Group),
		st.Method,
		formatFloat(st.Median),
		formatFloat(st.Q1),
		formatFloat(st.Q3),
		formatFloat(st.IQR),
		formatFloat(st.Lower),
		formatFloat(st.Upper),
		strconv.Itoa(st.OutlierCount),
	}
}

func summaryRow(s pipeline.SellerSummary) []string {
	return []string{
		s.Seller,
		strconv.Itoa(s.TotalCount),
		strconv.Itoa(s.OutlierCount),
		formatFloat(s.OutlierRate),
		formatFloat(s.MeanDeviationPct),
	}
}

// groupLabel renders a group key map as "col=value" pairs in column
// order, or "(all)" for whole-population stats.
func groupLabel(group map[string]string) string {
	if len(group) == 0 {
		return "(all)"
	}
	cols := make([]string, 0, len(group))
	for col := range group {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	label := ""
	for i, col := range cols {
		if i > 0 {
			label += " "
		}
		label += fmt.Sprintf("%s=%s", col, group[col])
	}
	return label
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
