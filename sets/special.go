package sets

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/jeandeaual/mtg-setxml/card"
)

//go:embed data/special.toml
var defaultSpecial []byte

// Special holds the cards that need special treatment.
type Special struct {
	// DoubleFaced maps the front face of a double-faced card to its back
	// face.
	DoubleFaced map[string]string `toml:"double_faced"`
	// Excluded lists, per set code, the identifiers to skip.
	Excluded map[string][]string `toml:"excluded"`

	excluded map[string]map[string]struct{}
}

// DefaultSpecial returns the special tables embedded in the binary.
func DefaultSpecial() (*Special, error) {
	return ParseSpecial(defaultSpecial)
}

// LoadSpecial reads the special tables from a TOML file.
func LoadSpecial(path string) (*Special, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read special tables: %w", err)
	}
	return ParseSpecial(data)
}

// ParseSpecial decodes the special tables.
func ParseSpecial(data []byte) (*Special, error) {
	var s Special
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse special tables: %w", err)
	}

	backs := make(map[string]string, len(s.DoubleFaced))
	for front, back := range s.DoubleFaced {
		if front == back {
			return nil, fmt.Errorf("double-faced card %s is its own back face", front)
		}
		if other, found := backs[back]; found {
			return nil, fmt.Errorf("back face %s is shared by %s and %s", back, other, front)
		}
		backs[back] = front
	}
	for back := range backs {
		if _, found := s.DoubleFaced[back]; found {
			return nil, fmt.Errorf("card %s is both a front and a back face", back)
		}
	}

	s.excluded = make(map[string]map[string]struct{}, len(s.Excluded))
	for code, ids := range s.Excluded {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		s.excluded[NormalizeCode(code)] = set
	}

	return &s, nil
}

// Directory returns the double-faced card directory.
func (s *Special) Directory() *card.Directory {
	if s == nil {
		return nil
	}
	return card.NewDirectory(s.DoubleFaced)
}

// IsExcluded reports whether a card must be skipped when generating a set.
func (s *Special) IsExcluded(code, id string) bool {
	if s == nil {
		return false
	}
	_, found := s.excluded[NormalizeCode(code)][id]
	return found
}
