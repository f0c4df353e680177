package gatherer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected string
	}{
		{"Creature  — Bear", "Creature - Bear"},
		{"Æther Vial", "AEther Vial"},
		{"Jötun Grunt", "Jotun Grunt"},
		{"Dandân", "Dandan"},
		{"“Quoted” and ‘single’", `"Quoted" and 'single'`},
		{"−1: Draw a card.", "-1: Draw a card."},
		{"\n   Grizzly Bears\n  ", "Grizzly Bears"},
		{"Little Girl ½", "Little Girl 1/2"},
		{"• Choose one", "* Choose one"},
	} {
		assert.Equal(t, tc.expected, cleanText(tc.input), tc.input)
	}
}
