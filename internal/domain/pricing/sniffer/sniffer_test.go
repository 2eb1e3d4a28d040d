package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("strips BOM", func(t *testing.T) {
		got, err := Normalize([]byte("\xEF\xBB\xBFColumn,Bucket\n"))
		require.NoError(t, err)
		assert.Equal(t, "Column,Bucket\n", string(got))
	})

	t.Run("transcodes latin1", func(t *testing.T) {
		got, err := Normalize([]byte("Column\nCaf\xe9 Price\n"))
		require.NoError(t, err)
		assert.Equal(t, "Column\nCafé Price\n", string(got))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Normalize([]byte("\xEF\xBB\xBF  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Column,Bucket,Notes\n", ','},
		{"semicolon", "Column;Bucket;Notes\n", ';'},
		{"tab", "Column\tBucket\tNotes\n", '\t'},
		{"pipe", "Column|Bucket\n", '|'},
		{"single column defaults to comma", "Column\nfoo\n", ','},
		{"skips leading blank lines", "\n\r\nColumn;Bucket\n", ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.data)))
		})
	}
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint([]string{"MediCare PIPCode", "Product Name", "Boots Jan24"})

	assert.Len(t, base, 64)
	assert.Equal(t, base, Fingerprint([]string{"medicare pipcode", "Product-Name", "BOOTS JAN24"}))
	assert.NotEqual(t, base, Fingerprint([]string{"Product Name", "MediCare PIPCode", "Boots Jan24"}))
	assert.NotEqual(t, base, Fingerprint([]string{"MediCare PIPCode", "Product Name"}))
}
