package sets

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

//go:embed data/sets.toml
var defaultSets []byte

type setEntry struct {
	Code         string `toml:"code"`
	Name         string `toml:"name"`
	GathererName string `toml:"gatherer_name"`
	Cards        int    `toml:"cards"`
	ReleaseDate  string `toml:"release_date"`
	Deck         bool   `toml:"deck"`
	Online       bool   `toml:"online"`
}

type setFile struct {
	Sets []setEntry `toml:"set"`
}

// StaticCatalog is a catalog read from a TOML file.
type StaticCatalog struct {
	sets  map[string]Info
	codes []string
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*StaticCatalog, error) {
	return ParseCatalog(defaultSets)
}

// LoadCatalog reads a catalog from a TOML file.
func LoadCatalog(path string) (*StaticCatalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open set catalog: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read set catalog %s: %w", path, err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes a TOML catalog.
func ParseCatalog(data []byte) (*StaticCatalog, error) {
	var file setFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse set catalog: %w", err)
	}

	c := &StaticCatalog{sets: make(map[string]Info, len(file.Sets))}

	for i, entry := range file.Sets {
		code := NormalizeCode(entry.Code)
		if len(code) == 0 {
			return nil, fmt.Errorf("set catalog entry %d has no code", i+1)
		}
		if _, found := c.sets[code]; found {
			return nil, fmt.Errorf("duplicate set code %s in catalog", code)
		}
		if len(entry.Name) == 0 {
			return nil, fmt.Errorf("set %s has no name", code)
		}

		c.sets[code] = Info{
			Code:         code,
			Name:         entry.Name,
			GathererName: entry.GathererName,
			Cards:        entry.Cards,
			ReleaseDate:  entry.ReleaseDate,
			Flags: map[Tag]bool{
				TagDeck:   entry.Deck,
				TagOnline: entry.Online,
			},
		}
		c.codes = append(c.codes, code)
	}

	sort.Strings(c.codes)

	return c, nil
}

// Lookup returns the metadata of a set.
func (c *StaticCatalog) Lookup(_ context.Context, code string) (Info, error) {
	info, found := c.sets[NormalizeCode(code)]
	if !found {
		return Info{}, fmt.Errorf("%w: %s", ErrUnknownSet, code)
	}
	return info, nil
}

// Codes returns all the set codes of the catalog, sorted.
func (c *StaticCatalog) Codes() []string {
	return append([]string(nil), c.codes...)
}
