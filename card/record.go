// Package card assembles, cross-references and validates the record of a
// single card printing.
package card

// Attribute is the name of a field returned by an attribute extractor.
// The names double as the XML element names of the generated documents.
type Attribute string

const (
	// AttrName is the card name.
	AttrName Attribute = "name"
	// AttrManaCost is the mana cost, as a sequence of symbols.
	AttrManaCost Attribute = "manacost"
	// AttrType is the type line.
	AttrType Attribute = "type"
	// AttrRules is the rules text.
	AttrRules Attribute = "rules"
	// AttrRarity is the rarity of the printing.
	AttrRarity Attribute = "rarity"
	// AttrNumber is the collector number.
	AttrNumber Attribute = "number"
	// AttrArtist is the illustrator.
	AttrArtist Attribute = "artist"
	// AttrPower is the creature power.
	AttrPower Attribute = "power"
	// AttrToughness is the creature toughness.
	AttrToughness Attribute = "toughness"
	// AttrLoyalty is the starting loyalty of a planeswalker.
	AttrLoyalty Attribute = "loyalty"
	// AttrFlavorText is the flavor text.
	AttrFlavorText Attribute = "flavor_text"
)

// Value of an extracted attribute. Symbols is only used by symbol sequences
// such as the mana cost; every other attribute uses Text.
type Value struct {
	Text    string
	Symbols []string
}

// Text returns a Value holding a string.
func Text(s string) Value {
	return Value{Text: s}
}

// Symbols returns a Value holding a symbol sequence. A nil slice is
// normalized to an empty one so the value stays distinguishable from an
// absent attribute.
func Symbols(symbols ...string) Value {
	if symbols == nil {
		symbols = []string{}
	}
	return Value{Symbols: symbols}
}

// Attributes are the values extracted from one page. An attribute that
// wasn't found on the page is not present in the map.
type Attributes map[Attribute]Value

// Side of a double-faced card.
type Side string

const (
	// Front face of a double-faced card.
	Front Side = "front"
	// Back face of a double-faced card.
	Back Side = "back"
)

// DoubleFaced links a face to its counterpart.
type DoubleFaced struct {
	Side Side
	// Other is the identifier of the other face.
	Other string
}

// Record of a card printing. Optional fields are nil when the extractor
// didn't produce a value.
type Record struct {
	// ID is the multiverse ID of the printing.
	ID string

	Name       *string
	ManaCost   []string
	Rarity     *string
	Number     *string
	Artist     *string
	Power      *string
	Toughness  *string
	Loyalty    *string
	FlavorText *string

	TypeOracle   *string
	RulesOracle  *string
	TypePrinted  *string
	RulesPrinted *string

	DoubleFaced *DoubleFaced
}

// Field is a named string field of a record.
type Field struct {
	Name  string
	Value string
}

// Fields returns the string fields that are set, in the order they are
// serialized.
func (r *Record) Fields() []Field {
	fields := []Field{{Name: "multiverseid", Value: r.ID}}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", r.Name},
		{"type_oracle", r.TypeOracle},
		{"rules_oracle", r.RulesOracle},
		{"type_printed", r.TypePrinted},
		{"rules_printed", r.RulesPrinted},
		{"rarity", r.Rarity},
		{"number", r.Number},
		{"artist", r.Artist},
		{"power", r.Power},
		{"toughness", r.Toughness},
		{"loyalty", r.Loyalty},
		{"flavor_text", r.FlavorText},
	} {
		if f.value != nil {
			fields = append(fields, Field{Name: f.name, Value: *f.value})
		}
	}

	return fields
}

func stringPtr(s string) *string {
	return &s
}
