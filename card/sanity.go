package card

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation rules. A failed check returns a *Violation wrapping one of them.
var (
	ErrHighASCII             = errors.New("character outside of the 7-bit range")
	ErrEntity                = errors.New("HTML entity in string")
	ErrMissingField          = errors.New("required field missing")
	ErrMissingLoyalty        = errors.New("planeswalker without loyalty")
	ErrMissingPowerToughness = errors.New("creature without power or toughness")
)

var htmlEntityRegex = regexp.MustCompile(`&\S+;`)

// Violation describes a failed sanity check.
type Violation struct {
	// Field is the name of the offending field.
	Field string
	// Index is the rune position of the offending character, or -1.
	Index int
	// Value of the field, if it is set.
	Value string
	// Rule is the check that failed.
	Rule error
}

func (v *Violation) Error() string {
	switch {
	case v.Index >= 0:
		return fmt.Sprintf("%s: %s at position %d: %q", v.Field, v.Rule, v.Index, v.Value)
	case len(v.Value) > 0:
		return fmt.Sprintf("%s: %s: %q", v.Field, v.Rule, v.Value)
	default:
		return fmt.Sprintf("%s: %s", v.Field, v.Rule)
	}
}

func (v *Violation) Unwrap() error {
	return v.Rule
}

func checkHighASCII(field, s string) error {
	for idx, r := range []rune(s) {
		if r > 127 {
			return &Violation{Field: field, Index: idx, Value: s, Rule: ErrHighASCII}
		}
	}
	return nil
}

func checkEntities(field, s string) error {
	if htmlEntityRegex.MatchString(s) {
		return &Violation{Field: field, Index: -1, Value: s, Rule: ErrEntity}
	}
	return nil
}

func checkString(field, s string) error {
	if err := checkHighASCII(field, s); err != nil {
		return err
	}
	return checkEntities(field, s)
}

func missing(field string, rule error) error {
	return &Violation{Field: field, Index: -1, Rule: rule}
}

// Validate runs the sanity checks on an assembled record. dir is used to
// recognize the back faces of double-faced cards, and can be nil.
func Validate(rec *Record, dir *Directory) error {
	for _, f := range rec.Fields() {
		if err := checkString(f.Name, f.Value); err != nil {
			return err
		}
	}
	for i, symbol := range rec.ManaCost {
		if err := checkString(fmt.Sprintf("manacost[%d]", i), symbol); err != nil {
			return err
		}
	}

	if rec.TypePrinted == nil {
		return missing("type_printed", ErrMissingField)
	}
	if rec.TypeOracle == nil {
		return missing("type_oracle", ErrMissingField)
	}
	if rec.Name == nil {
		return missing("name", ErrMissingField)
	}

	typeLine := strings.ToLower(*rec.TypeOracle)

	// The back face of a transforming planeswalker has no printed loyalty
	if strings.Contains(typeLine, "planeswalker") && !dir.IsBack(rec.ID) && rec.Loyalty == nil {
		return missing("loyalty", ErrMissingLoyalty)
	}

	// "Enchant Creature" auras (e.g. in Unglued, not updated by the oracle)
	// aren't creatures
	if strings.Contains(typeLine, "creature") && !strings.Contains(typeLine, "enchant ") {
		if rec.Power == nil {
			return missing("power", ErrMissingPowerToughness)
		}
		if rec.Toughness == nil {
			return missing("toughness", ErrMissingPowerToughness)
		}
	}

	return nil
}
