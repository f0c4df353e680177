// Package sets provides the set metadata catalogs and the per-set special
// tables (double-faced pairs, excluded cards).
package sets

import (
	"context"
	"errors"
	"strings"
)

// Tag is a flag that can be attached to a set.
type Tag string

const (
	// TagDeck marks a preconstructed deck or special package.
	TagDeck Tag = "deck"
	// TagOnline marks a set only released on Magic Online.
	TagOnline Tag = "online"
)

// Tags is the tag vocabulary, in serialization order.
var Tags = []Tag{TagDeck, TagOnline}

// ErrUnknownSet is returned when a catalog doesn't know a set code.
var ErrUnknownSet = errors.New("unknown set")

// Info is the metadata of a set.
type Info struct {
	// Code is the short set code, in upper case.
	Code string
	Name string
	// GathererName is the name of the set on Gatherer, when it differs
	// from Name.
	GathererName string
	// Cards is the number of cards in the set.
	Cards int
	// ReleaseDate is formatted as YYYY-MM-DD.
	ReleaseDate string
	Flags       map[Tag]bool
}

// Has reports whether the set carries the given tag.
func (i Info) Has(tag Tag) bool {
	return i.Flags[tag]
}

// SearchName returns the name used to search the set on Gatherer.
func (i Info) SearchName() string {
	if len(i.GathererName) > 0 {
		return i.GathererName
	}
	return i.Name
}

// Catalog gives access to set metadata.
type Catalog interface {
	// Lookup returns the metadata of a set.
	Lookup(ctx context.Context, code string) (Info, error)
	// Codes returns all the known set codes, sorted.
	Codes() []string
}

// NormalizeCode returns the canonical form of a set code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
