// Package setdoc builds, stores and scans the XML document generated for
// each set.
package setdoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jeandeaual/mtg-setxml/card"
	"github.com/jeandeaual/mtg-setxml/sets"
)

// SchemaVersion of the generated documents.
// Bump it every time the output changes, directly or indirectly, or when a
// sanity check is added, so that "update" regenerates the existing files.
// Versions are compared numerically component by component (see
// CompareVersions), so 1.10.0 is newer than 1.9.0.
const SchemaVersion = "1.3.2"

// Header is the first line of every document.
const Header = `<?xml version="1.0" ?>`

// Document is the root element of a set document.
type Document struct {
	XMLName xml.Name `xml:"root"`
	Meta    Meta     `xml:"meta"`
	Set     Set      `xml:"set"`
}

// Meta holds the document metadata. It is always the first element of the
// document, so the version can be read without parsing the whole file.
type Meta struct {
	Version string `xml:"version"`
}

// Set is the set metadata and its cards.
type Set struct {
	Name          string `xml:"name"`
	ShortName     string `xml:"shortname"`
	NumberOfCards int    `xml:"number_of_cards"`
	ReleaseDate   string `xml:"release_date"`
	Tags          Tags   `xml:"tags"`
	Cards         Cards  `xml:"cards"`
}

// Tags contains one empty element per tag of the set.
type Tags struct {
	Tags []Flag `xml:",any"`
}

// Flag is an empty element named after a tag.
type Flag struct {
	XMLName xml.Name
}

// Cards is the ordered list of cards.
type Cards struct {
	Cards []Card `xml:"card"`
}

// Card element. The scalar fields come first, in a fixed order.
type Card struct {
	XMLName     xml.Name     `xml:"card"`
	Fields      []Field      `xml:",any"`
	ManaCost    *ManaCost    `xml:"manacost"`
	DoubleFaced *DoubleFaced `xml:"doublefaced"`
}

// Field is a scalar card field.
type Field struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// MarshalXML keeps the line breaks of multi-line values (rules text, flavor
// text) as is.
func (f Field) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = f.XMLName
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if len(f.Value) > 0 {
		if err := e.EncodeToken(xml.CharData(f.Value)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// ManaCost is the sequence of mana symbols of a card.
type ManaCost struct {
	Symbols []string `xml:"symbol"`
}

// DoubleFaced links a face to the other face of the card.
type DoubleFaced struct {
	Side  string `xml:"side"`
	Other string `xml:"other"`
}

// Get returns the value of a scalar field of the card.
func (c *Card) Get(name string) (string, bool) {
	for _, f := range c.Fields {
		if f.XMLName.Local == name {
			return f.Value, true
		}
	}
	return "", false
}

// ID returns the multiverse ID of the card.
func (c *Card) ID() string {
	id, _ := c.Get("multiverseid")
	return id
}

// Has reports whether the set element carries the given tag.
func (s *Set) Has(tag sets.Tag) bool {
	for _, f := range s.Tags.Tags {
		if f.XMLName.Local == string(tag) {
			return true
		}
	}
	return false
}

// Builder assembles a Document card by card.
type Builder struct {
	doc *Document
}

// NewBuilder creates a document builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Begin starts a new document for a set. Any document in progress is
// discarded.
func (b *Builder) Begin(info sets.Info) {
	doc := &Document{
		Meta: Meta{Version: SchemaVersion},
		Set: Set{
			Name:          info.Name,
			ShortName:     info.Code,
			NumberOfCards: info.Cards,
			ReleaseDate:   info.ReleaseDate,
		},
	}

	for _, tag := range sets.Tags {
		if info.Has(tag) {
			doc.Set.Tags.Tags = append(doc.Set.Tags.Tags, Flag{XMLName: xml.Name{Local: string(tag)}})
		}
	}

	b.doc = doc
}

// AddCard appends a card to the document. Cards are kept in call order.
func (b *Builder) AddCard(rec *card.Record) {
	if b.doc == nil {
		panic("setdoc: AddCard called before Begin")
	}

	fields := rec.Fields()
	c := Card{Fields: make([]Field, 0, len(fields))}

	for _, f := range fields {
		c.Fields = append(c.Fields, Field{XMLName: xml.Name{Local: f.Name}, Value: f.Value})
	}
	if rec.ManaCost != nil {
		c.ManaCost = &ManaCost{Symbols: append([]string{}, rec.ManaCost...)}
	}
	if rec.DoubleFaced != nil {
		c.DoubleFaced = &DoubleFaced{
			Side:  string(rec.DoubleFaced.Side),
			Other: rec.DoubleFaced.Other,
		}
	}

	b.doc.Set.Cards.Cards = append(b.doc.Set.Cards.Cards, c)
}

// Len returns the number of cards added so far.
func (b *Builder) Len() int {
	if b.doc == nil {
		return 0
	}
	return len(b.doc.Set.Cards.Cards)
}

// Finish returns the completed document. The builder has to be restarted
// with Begin before being reused.
func (b *Builder) Finish() *Document {
	doc := b.doc
	b.doc = nil
	return doc
}

// Encode writes the document with its header line.
func (d *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("couldn't encode the document of set %s: %w", d.Set.ShortName, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document

	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Check verifies the structure of a decoded document.
func (d *Document) Check() error {
	if len(d.Meta.Version) == 0 {
		return errors.New("no version")
	}
	if len(d.Set.ShortName) == 0 {
		return errors.New("no set short name")
	}

	seen := make(map[string]struct{}, len(d.Set.Cards.Cards))

	for i := range d.Set.Cards.Cards {
		c := &d.Set.Cards.Cards[i]

		id := c.ID()
		if len(id) == 0 {
			return fmt.Errorf("card %d has no multiverse ID", i+1)
		}
		if _, err := strconv.Atoi(id); err != nil {
			return fmt.Errorf("card %d has an invalid multiverse ID %q", i+1, id)
		}
		if _, found := seen[id]; found {
			return fmt.Errorf("card %s is duplicated", id)
		}
		seen[id] = struct{}{}

		if _, found := c.Get("name"); !found {
			return fmt.Errorf("card %s has no name", id)
		}
	}

	return nil
}
