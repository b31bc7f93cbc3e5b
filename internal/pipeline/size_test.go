package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected *int
	}{
		{"count with unit glyph", "캄프 카밍패드 70매", intPtr(70)},
		{"count with suffix", "100매입 대용량", intPtr(100)},
		{"no count", "캄프 카밍패드", nil},
		{"whitespace before unit", "60 매", intPtr(60)},
		{"first match wins", "캄프 카밍패드 70매 + 30매", intPtr(70)},
		{"empty title", "", nil},
		{"digits without unit", "캄프 카밍패드 70", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSize(tt.title)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func intPtr(n int) *int { return &n }
