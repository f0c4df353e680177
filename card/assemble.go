package card

import (
	"errors"
	"fmt"
)

// ErrIncomplete is returned when a record is missing one of its type lines
// after assembly.
var ErrIncomplete = errors.New("incomplete card record")

// Assemble merges the attributes extracted from the oracle page and the
// printed page of the same card.
//
// Every oracle attribute is copied as is, except for the type line and the
// rules text which are stored as their oracle variant. The printed page only
// contributes its own type line and rules text.
func Assemble(id string, oracle, printed Attributes) (*Record, error) {
	if oracle == nil || printed == nil {
		return nil, fmt.Errorf("card %s: %w: missing attribute set", id, ErrIncomplete)
	}

	rec := &Record{ID: id}

	for attr, value := range oracle {
		switch attr {
		case AttrType:
			rec.TypeOracle = stringPtr(value.Text)
		case AttrRules:
			rec.RulesOracle = stringPtr(value.Text)
		case AttrManaCost:
			rec.ManaCost = append([]string{}, value.Symbols...)
		default:
			target := rec.field(attr)
			if target == nil {
				return nil, fmt.Errorf("card %s: unknown attribute %q", id, attr)
			}
			*target = stringPtr(value.Text)
		}
	}

	if value, found := printed[AttrType]; found {
		rec.TypePrinted = stringPtr(value.Text)
	}
	if value, found := printed[AttrRules]; found {
		rec.RulesPrinted = stringPtr(value.Text)
	}

	if rec.TypeOracle == nil {
		return nil, fmt.Errorf("card %s: %w: no oracle type line", id, ErrIncomplete)
	}
	if rec.TypePrinted == nil {
		return nil, fmt.Errorf("card %s: %w: no printed type line", id, ErrIncomplete)
	}

	return rec, nil
}

func (r *Record) field(attr Attribute) **string {
	switch attr {
	case AttrName:
		return &r.Name
	case AttrRarity:
		return &r.Rarity
	case AttrNumber:
		return &r.Number
	case AttrArtist:
		return &r.Artist
	case AttrPower:
		return &r.Power
	case AttrToughness:
		return &r.Toughness
	case AttrLoyalty:
		return &r.Loyalty
	case AttrFlavorText:
		return &r.FlavorText
	default:
		return nil
	}
}
