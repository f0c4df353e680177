package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeandeaual/mtg-setxml/card"
)

func TestDefaultSpecial(t *testing.T) {
	special, err := DefaultSpecial()
	require.NoError(t, err)

	dir := special.Directory()
	assert.Equal(t, len(special.DoubleFaced), dir.Len())

	df, found := dir.Lookup("245250")
	require.True(t, found)
	assert.Equal(t, card.DoubleFaced{Side: card.Front, Other: "245251"}, df)
	assert.True(t, dir.IsBack("245251"))

	assert.True(t, special.IsExcluded("UGL", "9780"))
	assert.True(t, special.IsExcluded("ugl", "9780"))
	assert.False(t, special.IsExcluded("ISD", "9780"))
	assert.False(t, special.IsExcluded("UGL", "12345"))
}

func TestParseSpecialErrors(t *testing.T) {
	_, err := ParseSpecial([]byte(`[double_faced]
"1" = "1"`))
	assert.Error(t, err)

	_, err = ParseSpecial([]byte(`[double_faced]
"1" = "3"
"2" = "3"`))
	assert.Error(t, err)

	_, err = ParseSpecial([]byte(`[double_faced]
"1" = "2"
"2" = "3"`))
	assert.Error(t, err)
}
