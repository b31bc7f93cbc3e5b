package pipeline

import (
	"strconv"
)

// Standard column names produced by Normalize. Every Product carries
// exactly these 14 fields regardless of how the source batch named them.
const (
	ColQuery       = "query"
	ColProductID   = "product_id"
	ColPageRank    = "page_rank"
	ColProductName = "product_name"
	ColBrand       = "brand"
	ColMaker       = "maker"
	ColPrice       = "price"
	ColCategory1   = "category1"
	ColCategory2   = "category2"
	ColCategory3   = "category3"
	ColLink        = "link"
	ColImageURL    = "image_url"
	ColSeller      = "seller"
	ColMallName    = "mall_name"
)

// StandardColumns lists the normalized schema in output order.
var StandardColumns = []string{
	ColQuery, ColProductID, ColPageRank, ColProductName, ColBrand, ColMaker,
	ColPrice, ColCategory1, ColCategory2, ColCategory3, ColLink, ColImageURL,
	ColSeller, ColMallName,
}

// Table is a raw tabular batch as loaded from CSV, JSON or Excel, before
// any schema normalization. Column order is preserved from the source.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows in the table.
func (t Table) NumRows() int { return len(t.Rows) }

// Product is one normalized input record.
type Product struct {
	Query       string `json:"query"`
	ProductID   string `json:"product_id"`
	PageRank    *int   `json:"page_rank"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	Maker       string `json:"maker"`
	Price       int    `json:"price"`
	Category1   string `json:"category1"`
	Category2   string `json:"category2"`
	Category3   string `json:"category3"`
	Link        string `json:"link"`
	ImageURL    string `json:"image_url"`
	Seller      string `json:"seller"`
	MallName    string `json:"mall_name"`
}

// Field returns the product's value for a standard column name, formatted
// as a string. Unknown column names return ok=false.
func (p Product) Field(col string) (string, bool) {
	switch col {
	case ColQuery:
		return p.Query, true
	case ColProductID:
		return p.ProductID, true
	case ColPageRank:
		if p.PageRank == nil {
			return "", true
		}
		return strconv.Itoa(*p.PageRank), true
	case ColProductName:
		return p.ProductName, true
	case ColBrand:
		return p.Brand, true
	case ColMaker:
		return p.Maker, true
	case ColPrice:
		return strconv.Itoa(p.Price), true
	case ColCategory1:
		return p.Category1, true
	case ColCategory2:
		return p.Category2, true
	case ColCategory3:
		return p.Category3, true
	case ColLink:
		return p.Link, true
	case ColImageURL:
		return p.ImageURL, true
	case ColSeller:
		return p.Seller, true
	case ColMallName:
		return p.MallName, true
	}
	return "", false
}

// Reason identifies why the classifier excluded a record. The empty
// reason means the record was kept.
type Reason string

const (
	ReasonKept               Reason = ""
	ReasonNotMatchingProduct Reason = "NOT_MATCHING_PRODUCT"
	ReasonBundleFreeGift     Reason = "BUNDLE_FREE_GIFT"
	ReasonMultipack          Reason = "MULTIPACK"
	ReasonRefillSample       Reason = "REFILL_SAMPLE"
	ReasonOtherProductCombo  Reason = "OTHER_PRODUCT_COMBO"
	ReasonNonStandardSize    Reason = "NON_STANDARD_SIZE"
)

// ClassifiedRecord is a Product annotated by the match classifier.
type ClassifiedRecord struct {
	Product
	SizeCount      *int   `json:"size_count"`
	ExcludedReason Reason `json:"excluded_reason"`
}

// Kept reports whether the record survived classification.
func (r ClassifiedRecord) Kept() bool { return r.ExcludedReason == ReasonKept }

// OutlierRecord is a kept record annotated by an outlier detector.
type OutlierRecord struct {
	ClassifiedRecord
	DeviationPct float64 `json:"deviation_pct"`
	OutlierFlag  bool    `json:"outlier_flag"`
	BoundLower   float64 `json:"bound_lower"`
	BoundUpper   float64 `json:"bound_upper"`
}

// GroupStats holds the per-group price statistics computed by a detector.
// Group maps each grouping column to the group's value; it is empty when
// the bounds were computed over the whole population.
type GroupStats struct {
	Group        map[string]string `json:"group,omitempty"`
	Q1           float64           `json:"q1"`
	Q3           float64           `json:"q3,omitempty"`
	IQR          float64           `json:"iqr,omitempty"`
	UpperQ       float64           `json:"upper_q,omitempty"`
	Lower        float64           `json:"lower"`
	Upper        float64           `json:"upper"`
	Median       float64           `json:"median"`
	Method       string            `json:"method"`
	OutlierCount int               `json:"outlier_count"`
}

// SellerSummary is one row of the per-seller outlier aggregation.
type SellerSummary struct {
	Seller           string  `json:"seller"`
	TotalCount       int     `json:"total_count"`
	OutlierCount     int     `json:"outlier_count"`
	OutlierRate      float64 `json:"outlier_rate"`
	MeanDeviationPct float64 `json:"mean_deviation_pct"`
}

// DetectOptions configures the outlier detectors.
type DetectOptions struct {
	// GroupCols selects the grouping columns for per-group bounds.
	// Nil defaults to ["query"]; names outside the standard schema are
	// ignored.
	GroupCols []string
	// UseAux additionally flags records whose absolute deviation from
	// the group median meets AuxPct, as a union with the bound decision.
	UseAux bool
	// AuxPct is the auxiliary rule threshold in percent.
	AuxPct float64
	// UpperQuantile is the upper bound quantile for the quantile-cap
	// strategy. Zero defaults to DefaultUpperQuantile.
	UpperQuantile float64
}

// DefaultUpperQuantile is the quantile-cap strategy's default upper bound.
const DefaultUpperQuantile = 0.75

// DefaultAuxPct is the default auxiliary rule threshold in percent.
const DefaultAuxPct = 50.0

// DetectResult is the full output of an outlier detector.
type DetectResult struct {
	// Annotated contains every record of the statistical population
	// (positive price) with deviation, bounds and the outlier flag set.
	Annotated []OutlierRecord `json:"annotated"`
	// Inliers and Outliers partition Annotated by the outlier flag.
	Inliers  []OutlierRecord `json:"inliers"`
	Outliers []OutlierRecord `json:"outliers"`
	// Stats holds one row per group (IQR strategy) or a single row for
	// the whole population (quantile-cap strategy).
	Stats []GroupStats `json:"stats"`
}
