package pipeline

import (
	"strconv"
	"strings"
)

// columnSynonym maps one known source column name onto a standard column.
// The table is ordered: for a given target the first synonym found in the
// input wins, later ones are skipped once the target is claimed.
type columnSynonym struct {
	source string
	target string
}

// columnSynonyms covers the column names seen in shopping search exports,
// both the API's English names and the Korean names used by downloaded
// monitoring sheets. lprice precedes hprice so the low price wins when a
// source carries both.
var columnSynonyms = []columnSynonym{
	{"title", ColProductName},
	{"product_title", ColProductName},
	{"productname", ColProductName},
	{"상품명", ColProductName},
	{"제품명", ColProductName},

	{"image", ColImageURL},
	{"img_url", ColImageURL},
	{"thumbnail", ColImageURL},
	{"이미지", ColImageURL},

	{"lprice", ColPrice},
	{"hprice", ColPrice},
	{"가격", ColPrice},
	{"판매가", ColPrice},

	{"쇼핑몰명", ColMallName},
	{"판매처", ColMallName},
	{"shop_name", ColMallName},
	{"store_name", ColMallName},
	{"mallname", ColMallName},

	{"판매자", ColSeller},
	{"seller_name", ColSeller},

	{"productid", ColProductID},
	{"검색어", ColQuery},
	{"keyword", ColQuery},
	{"rank", ColPageRank},
	{"순위", ColPageRank},
}

// Normalize maps a raw table with arbitrary column names onto the fixed
// 14-column standard schema. Header matching is case-insensitive and
// whitespace-trimmed. Columns already named after a standard column claim
// it first; afterwards the synonym table is applied in order, skipping any
// synonym whose target is already claimed. Standard columns absent from
// the source come out empty, and price is coerced to a non-negative
// integer (unparseable values become 0). Normalize never fails.
func Normalize(t Table) []Product {
	// Lowercased header -> source column index, first occurrence wins.
	byHeader := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, seen := byHeader[key]; !seen {
			byHeader[key] = i
		}
	}

	// Standard target -> source column index.
	claimed := make(map[string]int, len(StandardColumns))
	for _, std := range StandardColumns {
		if idx, ok := byHeader[std]; ok {
			claimed[std] = idx
		}
	}
	for _, syn := range columnSynonyms {
		if _, taken := claimed[syn.target]; taken {
			continue
		}
		if idx, ok := byHeader[syn.source]; ok {
			claimed[syn.target] = idx
		}
	}

	cell := func(row []string, target string) string {
		idx, ok := claimed[target]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	products := make([]Product, 0, len(t.Rows))
	for _, row := range t.Rows {
		products = append(products, Product{
			Query:       cell(row, ColQuery),
			ProductID:   cell(row, ColProductID),
			PageRank:    parseOptionalInt(cell(row, ColPageRank)),
			ProductName: cell(row, ColProductName),
			Brand:       cell(row, ColBrand),
			Maker:       cell(row, ColMaker),
			Price:       coercePrice(cell(row, ColPrice)),
			Category1:   cell(row, ColCategory1),
			Category2:   cell(row, ColCategory2),
			Category3:   cell(row, ColCategory3),
			Link:        cell(row, ColLink),
			ImageURL:    cell(row, ColImageURL),
			Seller:      cell(row, ColSeller),
			MallName:    cell(row, ColMallName),
		})
	}
	return products
}

// coercePrice converts a raw price cell to a non-negative integer.
// Decimal values are truncated; anything unparseable or negative is 0.
func coercePrice(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}

// parseOptionalInt parses an integer cell, returning nil when the cell is
// blank or not numeric.
func parseOptionalInt(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}
