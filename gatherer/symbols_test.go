package gatherer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSymbol(t *testing.T) {
	for _, tc := range []struct {
		alt      string
		expected string
	}{
		{"Green", "G"},
		{" Blue ", "U"},
		{"Variable Colorless", "X"},
		{"10", "10"},
		{"0", "0"},
		{"White or Blue", "W/U"},
		{"Two or Black", "2/B"},
		{"Phyrexian Red", "R/P"},
		{"Phyrexian Green or Blue", "G/U/P"},
		{"Half a Red", "HR"},
		{"Tap", "T"},
	} {
		symbol, err := parseSymbol(tc.alt)
		if assert.NoError(t, err, tc.alt) {
			assert.Equal(t, tc.expected, symbol, tc.alt)
		}
	}
}

func TestParseSymbolUnknown(t *testing.T) {
	for _, alt := range []string{"", "Purple", "White or", "Phyrexian Purple"} {
		_, err := parseSymbol(alt)
		assert.Error(t, err, alt)
	}
}
