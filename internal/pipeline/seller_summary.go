package pipeline

import (
	"sort"
	"strings"
)

// BuildSellerSummary aggregates outlier rates per seller from a detector's
// annotated records. Grouping prefers the seller field; when no record has
// a usable seller the mall name is used instead. Records with a blank
// group key are dropped from the aggregation. The result is sorted by
// outlier rate descending and is empty, never nil, when nothing can be
// aggregated.
func BuildSellerSummary(annotated []OutlierRecord) []SellerSummary {
	useSeller := false
	for _, rec := range annotated {
		if strings.TrimSpace(rec.Seller) != "" {
			useSeller = true
			break
		}
	}

	key := func(rec OutlierRecord) string {
		if useSeller {
			return rec.Seller
		}
		return rec.MallName
	}

	type agg struct {
		total    int
		outliers int
		devSum   float64
	}
	bysSeller := make(map[string]*agg)
	for _, rec := range annotated {
		k := key(rec)
		if strings.TrimSpace(k) == "" {
			continue
		}
		a := bysSeller[k]
		if a == nil {
			a = &agg{}
			bysSeller[k] = a
		}
		a.total++
		if rec.OutlierFlag {
			a.outliers++
		}
		a.devSum += rec.DeviationPct
	}

	summaries := make([]SellerSummary, 0, len(bysSeller))
	for seller, a := range bysSeller {
		summaries = append(summaries, SellerSummary{
			Seller:           seller,
			TotalCount:       a.total,
			OutlierCount:     a.outliers,
			OutlierRate:      round2(float64(a.outliers) / float64(a.total) * 100),
			MeanDeviationPct: round2(a.devSum / float64(a.total)),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].OutlierRate != summaries[j].OutlierRate {
			return summaries[i].OutlierRate > summaries[j].OutlierRate
		}
		return summaries[i].Seller < summaries[j].Seller
	})
	return summaries
}
