package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// groupKeySep separates grouping-column values inside a composite key.
const groupKeySep = "\x1f"

// normalizedOptions applies the documented defaults to DetectOptions.
func normalizedOptions(opts DetectOptions) DetectOptions {
	if opts.GroupCols == nil {
		opts.GroupCols = []string{ColQuery}
	}
	if opts.AuxPct == 0 {
		opts.AuxPct = DefaultAuxPct
	}
	if opts.UpperQuantile == 0 {
		opts.UpperQuantile = DefaultUpperQuantile
	}
	return opts
}

// validGroupCols keeps only grouping columns that exist in the standard
// schema. After normalization every standard column exists on every
// record, so anything else cannot group.
func validGroupCols(cols []string) []string {
	var valid []string
	for _, col := range cols {
		if _, ok := (Product{}).Field(col); ok {
			valid = append(valid, col)
		}
	}
	return valid
}

// groupKey builds the composite key of a record over the grouping columns.
func groupKey(p Product, cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i], _ = p.Field(col)
	}
	return strings.Join(parts, groupKeySep)
}

// positivePriced filters the statistical population: records with a
// non-positive price are excluded entirely, never flagged or counted.
func positivePriced(records []ClassifiedRecord) []ClassifiedRecord {
	var out []ClassifiedRecord
	for _, rec := range records {
		if rec.Price > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func emptyDetectResult() DetectResult {
	return DetectResult{
		Annotated: []OutlierRecord{},
		Inliers:   []OutlierRecord{},
		Outliers:  []OutlierRecord{},
		Stats:     []GroupStats{},
	}
}

// DetectOutliersIQR flags price outliers using per-group IQR bounds:
// lower = Q1 - 1.5*IQR, upper = Q3 + 1.5*IQR. A record is an outlier when
// its price falls outside [lower, upper], or additionally when the
// auxiliary deviation rule is enabled and fires. Zero or empty input
// returns empty, correctly shaped output without error.
func DetectOutliersIQR(records []ClassifiedRecord, opts DetectOptions) DetectResult {
	opts = normalizedOptions(opts)

	population := positivePriced(records)
	if len(population) == 0 {
		return emptyDetectResult()
	}

	cols := validGroupCols(opts.GroupCols)

	// One stats row per composite group key, built in a single pass and
	// joined back to rows by key lookup.
	groups := make(map[string][]float64)
	for _, rec := range population {
		key := groupKey(rec.Product, cols)
		groups[key] = append(groups[key], float64(rec.Price))
	}

	statsByKey := make(map[string]GroupStats, len(groups))
	for key, prices := range groups {
		q1 := quantile(prices, 0.25)
		q3 := quantile(prices, 0.75)
		iqr := q3 - q1
		statsByKey[key] = GroupStats{
			Q1:     q1,
			Q3:     q3,
			IQR:    iqr,
			Lower:  q1 - 1.5*iqr,
			Upper:  q3 + 1.5*iqr,
			Median: median(prices),
			Method: "IQR",
		}
	}

	result := emptyDetectResult()
	outlierCounts := make(map[string]int, len(groups))

	for _, rec := range population {
		key := groupKey(rec.Product, cols)
		st := statsByKey[key]
		price := float64(rec.Price)

		annotated := OutlierRecord{
			ClassifiedRecord: rec,
			DeviationPct:     deviationPct(price, st.Median),
			BoundLower:       st.Lower,
			BoundUpper:       st.Upper,
		}
		annotated.OutlierFlag = price < st.Lower || price > st.Upper
		if opts.UseAux && math.Abs(annotated.DeviationPct) >= opts.AuxPct {
			annotated.OutlierFlag = true
		}

		result.Annotated = append(result.Annotated, annotated)
		if annotated.OutlierFlag {
			result.Outliers = append(result.Outliers, annotated)
			outlierCounts[key]++
		} else {
			result.Inliers = append(result.Inliers, annotated)
		}
	}

	keys := make([]string, 0, len(statsByKey))
	for key := range statsByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		st := statsByKey[key]
		st.OutlierCount = outlierCounts[key]
		st.Group = groupValues(key, cols)
		result.Stats = append(result.Stats, st)
	}
	return result
}

// DetectOutliersQuantile flags price outliers using a quantile cap:
// lower = Q1, upper = the configured upper quantile, a deliberately
// tighter ceiling than the IQR bound. Bounds are computed over the entire
// filtered population rather than per group; the grouping columns are
// accepted for interface parity with the IQR strategy but do not change
// the bounds. The auxiliary deviation rule composes as a union, exactly
// as in the IQR strategy.
func DetectOutliersQuantile(records []ClassifiedRecord, opts DetectOptions) DetectResult {
	opts = normalizedOptions(opts)

	population := positivePriced(records)
	if len(population) == 0 {
		return emptyDetectResult()
	}

	prices := make([]float64, len(population))
	for i, rec := range population {
		prices[i] = float64(rec.Price)
	}

	q1 := quantile(prices, 0.25)
	upperQ := quantile(prices, opts.UpperQuantile)
	med := median(prices)

	stats := GroupStats{
		Q1:     q1,
		UpperQ: upperQ,
		Lower:  q1,
		Upper:  upperQ,
		Median: med,
		Method: "Q" + strconv.FormatFloat(opts.UpperQuantile, 'g', -1, 64),
	}

	result := emptyDetectResult()
	for _, rec := range population {
		price := float64(rec.Price)
		annotated := OutlierRecord{
			ClassifiedRecord: rec,
			DeviationPct:     deviationPct(price, med),
			BoundLower:       stats.Lower,
			BoundUpper:       stats.Upper,
		}
		annotated.OutlierFlag = price < stats.Lower || price > stats.Upper
		if opts.UseAux && math.Abs(annotated.DeviationPct) >= opts.AuxPct {
			annotated.OutlierFlag = true
		}

		result.Annotated = append(result.Annotated, annotated)
		if annotated.OutlierFlag {
			result.Outliers = append(result.Outliers, annotated)
		} else {
			result.Inliers = append(result.Inliers, annotated)
		}
	}

	stats.OutlierCount = len(result.Outliers)
	result.Stats = append(result.Stats, stats)
	return result
}

// groupValues rebuilds the column -> value map from a composite key.
func groupValues(key string, cols []string) map[string]string {
	if len(cols) == 0 {
		return nil
	}
	parts := strings.SplitN(key, groupKeySep, len(cols))
	values := make(map[string]string, len(cols))
	for i, col := range cols {
		if i < len(parts) {
			values[col] = parts[i]
		}
	}
	return values
}
