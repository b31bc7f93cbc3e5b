package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedProduct(name string) Product {
	return Product{ProductName: name, Query: "캄프 카밍패드", Price: 10000}
}

func TestClassify_InclusionGate(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		excluded bool
	}{
		{"anchor and variant present", namedProduct("캄프 카밍패드 70매"), false},
		{"space variant accepted", namedProduct("캄프 카밍 패드 70매"), false},
		{"anchor missing", namedProduct("타사 카밍패드 70매"), true},
		{"variant missing", namedProduct("캄프 수분크림"), true},
		{"brand auto-pass", Product{ProductName: "진정 패드 70매", Brand: "Calmf", Price: 10000}, false},
		{"brand auto-pass korean", Product{ProductName: "진정 패드 70매", Brand: "캄프", Price: 10000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify([]Product{tt.product}, ClassifyOptions{Query: "캄프 카밍패드"})
			if tt.excluded {
				require.Len(t, result.Excluded, 1)
				assert.Equal(t, ReasonNotMatchingProduct, result.Excluded[0].ExcludedReason)
			} else {
				require.Len(t, result.Kept, 1)
				assert.Equal(t, ReasonKept, result.Kept[0].ExcludedReason)
			}
		})
	}
}

func TestClassify_ExclusionPriority(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected Reason
	}{
		{"bundle vocabulary", "캄프 카밍패드 70매 2종 세트", ReasonBundleFreeGift},
		{"multipack", "캄프 카밍패드 70매 1+1", ReasonMultipack},
		{"refill", "캄프 카밍패드 리필 70매", ReasonRefillSample},
		{"combo via plus", "캄프 카밍패드 70매+수분크림", ReasonOtherProductCombo},
		// A title matching both the bundle vocabulary and "+" takes the
		// first rule in priority order, not OTHER_PRODUCT_COMBO.
		{"bundle beats combo", "캄프 카밍패드 70매 증정+쇼핑백", ReasonBundleFreeGift},
		{"multipack beats combo", "캄프 카밍패드 1+1 70매", ReasonMultipack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify([]Product{namedProduct(tt.title)}, ClassifyOptions{})
			require.Len(t, result.Excluded, 1)
			assert.Equal(t, tt.expected, result.Excluded[0].ExcludedReason)
		})
	}
}

func TestClassify_GateBeforeExclusions(t *testing.T) {
	// A record failing the inclusion gate never reaches the exclusion
	// patterns even when it matches them.
	result := Classify([]Product{namedProduct("타사 패드 1+1 세트")}, ClassifyOptions{})
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, ReasonNotMatchingProduct, result.Excluded[0].ExcludedReason)
}

func TestClassify_ModalSizeAndNonStandard(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드 70매"),
		namedProduct("캄프 카밍패드 70매 대용량"),
		namedProduct("캄프 카밍패드 30매"),
		namedProduct("캄프 카밍패드"), // no size -> non-standard
	}

	result := Classify(products, ClassifyOptions{})
	require.NotNil(t, result.ModalSize)
	assert.Equal(t, 70, *result.ModalSize)
	assert.Len(t, result.Kept, 2)
	require.Len(t, result.Excluded, 2)
	for _, rec := range result.Excluded {
		assert.Equal(t, ReasonNonStandardSize, rec.ExcludedReason)
	}
}

func TestClassify_ModalSizeTieBreaksSmallest(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드 30매"),
		namedProduct("캄프 카밍패드 70매"),
	}

	result := Classify(products, ClassifyOptions{})
	require.NotNil(t, result.ModalSize)
	assert.Equal(t, 30, *result.ModalSize)
}

func TestClassify_NoSizesSkipsNonStandardCheck(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드"),
		namedProduct("캄프 카밍패드 프리미엄"),
	}

	result := Classify(products, ClassifyOptions{})
	assert.Nil(t, result.ModalSize)
	assert.Len(t, result.Kept, 2)
	assert.Empty(t, result.Excluded)
}

func TestClassify_IncludeVariants(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드 70매"),
		namedProduct("캄프 카밍패드 70매 리뉴얼"),
		namedProduct("캄프 카밍패드 30매"),
	}

	result := Classify(products, ClassifyOptions{IncludeVariants: true})
	require.NotNil(t, result.ModalSize)
	assert.Equal(t, 70, *result.ModalSize)
	// The 30-sheet variant is kept; other exclusion reasons still apply.
	assert.Len(t, result.Kept, 3)
	assert.Empty(t, result.Excluded)
}

func TestClassify_ReasonExclusivity(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드 70매"),
		namedProduct("캄프 카밍패드 2개 묶음"),
		namedProduct("타사 패드"),
		namedProduct("캄프 카밍패드 샘플"),
	}

	result := Classify(products, ClassifyOptions{})
	for _, rec := range result.Kept {
		assert.Equal(t, ReasonKept, rec.ExcludedReason)
	}
	for _, rec := range result.Excluded {
		assert.NotEqual(t, ReasonKept, rec.ExcludedReason)
	}
}

func TestClassify_IdempotentOnKeptOutput(t *testing.T) {
	products := []Product{
		namedProduct("캄프 카밍패드 70매"),
		namedProduct("캄프 카밍패드 70매 리뉴얼"),
		namedProduct("캄프 카밍패드 30매"),
		namedProduct("캄프 카밍패드 세트"),
	}

	first := Classify(products, ClassifyOptions{})

	kept := make([]Product, 0, len(first.Kept))
	for _, rec := range first.Kept {
		kept = append(kept, rec.Product)
	}
	second := Classify(kept, ClassifyOptions{})

	require.Equal(t, len(first.Kept), len(second.Kept))
	assert.Empty(t, second.Excluded)
	require.NotNil(t, second.ModalSize)
	assert.Equal(t, *first.ModalSize, *second.ModalSize)
}

func TestClassify_EmptyInput(t *testing.T) {
	result := Classify(nil, ClassifyOptions{})
	assert.Empty(t, result.Kept)
	assert.Empty(t, result.Excluded)
	assert.Nil(t, result.ModalSize)
}
