package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestHeader(t *testing.T) {
	candidates := []string{"Boots Direct Jan24 Price", "Lexon T&R Sept2023", "Boots Jan24"}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"subsequence prefers closest", "boots jan24", "Boots Jan24", true},
		{"dropped letter", "Lexon T&R Sept", "Lexon T&R Sept2023", true},
		{"edit distance", "Boots Jan 24", "Boots Jan24", true},
		{"nothing close", "Completely Different Header", "", false},
		{"blank", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestHeader(tt.input, candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := SuggestHeader("Boots", nil)
	assert.False(t, ok)
}
