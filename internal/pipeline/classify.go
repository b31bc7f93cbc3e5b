package pipeline

import (
	"regexp"
	"strings"
)

// MatchRule describes the target product for the inclusion gate.
type MatchRule struct {
	// TargetBrands auto-pass the gate when the record's brand matches
	// one of them case-insensitively.
	TargetBrands []string
	// AnchorTerm must appear in the product name together with one of
	// the VariantPhrases for a non-brand record to pass the gate.
	AnchorTerm string
	// VariantPhrases are the accepted spellings of the product type,
	// including space variants.
	VariantPhrases []string
}

// DefaultMatchRule targets the Calmf calming pad, the product the
// monitoring sheets track.
func DefaultMatchRule() MatchRule {
	return MatchRule{
		TargetBrands:   []string{"캄프", "calmf"},
		AnchorTerm:     "캄프",
		VariantPhrases: []string{"카밍패드", "카밍 패드"},
	}
}

// passes reports whether a record clears the inclusion gate.
func (r MatchRule) passes(p Product) bool {
	brand := strings.ToLower(strings.TrimSpace(p.Brand))
	for _, b := range r.TargetBrands {
		if brand == strings.ToLower(b) {
			return true
		}
	}
	name := strings.ToLower(p.ProductName)
	if !strings.Contains(name, strings.ToLower(r.AnchorTerm)) {
		return false
	}
	for _, v := range r.VariantPhrases {
		if strings.Contains(name, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// exclusionPattern pairs a reason code with its vocabulary. The slice
// order is the rule priority: the first match wins and later patterns are
// not evaluated.
type exclusionPattern struct {
	reason  Reason
	pattern *regexp.Regexp
}

var exclusionPatterns = []exclusionPattern{
	{ReasonBundleFreeGift, regexp.MustCompile(`(?i)세트|2종|3종|기획|패키징|한정|구성|bundle|패키지|증정|사은품|쇼핑백|스타벅스|상품권|쿠폰|구매시`)},
	{ReasonMultipack, regexp.MustCompile(`(?i)1\+1|2개|3개|4개|[xX]2|2팩|묶음|더블|듀오|트리오`)},
	{ReasonRefillSample, regexp.MustCompile(`(?i)리필|sample|샘플|테스터`)},
}

// matchExclusion returns the first exclusion reason whose vocabulary
// matches the lowercased product name. A bare "+" with no earlier match
// marks a combination with another product.
func matchExclusion(productName string) Reason {
	name := strings.ToLower(productName)
	for _, ep := range exclusionPatterns {
		if ep.pattern.MatchString(name) {
			return ep.reason
		}
	}
	if strings.Contains(name, "+") {
		return ReasonOtherProductCombo
	}
	return ReasonKept
}

// ClassifyOptions configures a classification pass.
type ClassifyOptions struct {
	// Query is the reference search term, carried for reporting only.
	Query string
	// IncludeVariants keeps records that would otherwise be excluded as
	// NON_STANDARD_SIZE.
	IncludeVariants bool
	// Rule is the inclusion gate definition. The zero value falls back
	// to DefaultMatchRule.
	Rule MatchRule
}

// ClassifyResult is the classifier's output.
type ClassifyResult struct {
	Kept     []ClassifiedRecord `json:"kept"`
	Excluded []ClassifiedRecord `json:"excluded"`
	// ModalSize is the most frequent unit count among kept records,
	// nil when no kept record carries a parsable size.
	ModalSize *int `json:"modal_size"`
}

// Classify partitions a normalized batch into kept and excluded records.
// Rules form a priority chain per record: the inclusion gate first, then
// the exclusion patterns in their fixed order, then the non-standard-size
// check against the modal size of the provisionally kept records. Each
// excluded record carries exactly one reason, the first that applied.
func Classify(products []Product, opts ClassifyOptions) ClassifyResult {
	rule := opts.Rule
	if rule.AnchorTerm == "" && len(rule.TargetBrands) == 0 {
		rule = DefaultMatchRule()
	}

	records := make([]ClassifiedRecord, 0, len(products))
	for _, p := range products {
		rec := ClassifiedRecord{Product: p, SizeCount: ParseSize(p.ProductName)}
		if !rule.passes(p) {
			rec.ExcludedReason = ReasonNotMatchingProduct
		} else {
			rec.ExcludedReason = matchExclusion(p.ProductName)
		}
		records = append(records, rec)
	}

	// Modal size over the provisionally kept records. Ties break toward
	// the smallest value so the result is deterministic.
	var sizes []int
	for _, rec := range records {
		if rec.Kept() && rec.SizeCount != nil {
			sizes = append(sizes, *rec.SizeCount)
		}
	}
	modal := modeInt(sizes)

	if modal != nil {
		for i := range records {
			if !records[i].Kept() {
				continue
			}
			if records[i].SizeCount == nil || *records[i].SizeCount != *modal {
				records[i].ExcludedReason = ReasonNonStandardSize
			}
		}
	}

	if opts.IncludeVariants {
		for i := range records {
			if records[i].ExcludedReason == ReasonNonStandardSize {
				records[i].ExcludedReason = ReasonKept
			}
		}
	}

	result := ClassifyResult{ModalSize: modal}
	for _, rec := range records {
		if rec.Kept() {
			result.Kept = append(result.Kept, rec)
		} else {
			result.Excluded = append(result.Excluded, rec)
		}
	}
	return result
}
