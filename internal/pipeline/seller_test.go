package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSellers(t *testing.T) {
	tests := []struct {
		name         string
		product      Product
		expectedMall string
		expectedSell string
	}{
		{
			name:         "mall and seller filled from link host",
			product:      Product{Link: "https://smartstore.naver.com/calmf/products/123"},
			expectedMall: "smartstore.naver.com",
			expectedSell: "smartstore.naver.com",
		},
		{
			name:         "existing mall name kept, seller backfilled",
			product:      Product{MallName: "캄프 공식몰", Link: "https://other.example.com/x"},
			expectedMall: "캄프 공식몰",
			expectedSell: "캄프 공식몰",
		},
		{
			name:         "existing seller untouched",
			product:      Product{Seller: "직접판매", Link: "https://shop.example.com/1"},
			expectedMall: "shop.example.com",
			expectedSell: "직접판매",
		},
		{
			name:         "blank link yields empty strings",
			product:      Product{},
			expectedMall: "",
			expectedSell: "",
		},
		{
			name:         "schemeless link has no host",
			product:      Product{Link: "smartstore.naver.com/calmf"},
			expectedMall: "",
			expectedSell: "",
		},
		{
			name:         "unparseable link degrades to empty",
			product:      Product{Link: "http://[::1"},
			expectedMall: "",
			expectedSell: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResolveSellers([]Product{tt.product})
			require.Len(t, out, 1)
			assert.Equal(t, tt.expectedMall, out[0].MallName)
			assert.Equal(t, tt.expectedSell, out[0].Seller)
		})
	}
}

func TestResolveSellers_DoesNotMutateInput(t *testing.T) {
	in := []Product{{Link: "https://smartstore.naver.com/x"}}
	_ = ResolveSellers(in)
	assert.Empty(t, in[0].MallName)
	assert.Empty(t, in[0].Seller)
}
