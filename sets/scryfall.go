package sets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	scryfall "github.com/BlueMonday/go-scryfall"

	"github.com/jeandeaual/mtg-setxml/log"
)

const dateFormat = "2006-01-02"

// See https://scryfall.com/docs/api#rate-limits-and-good-citizenship
var rateLimiter = time.NewTicker(100 * time.Millisecond)

// Scryfall set types that are sold as a preconstructed product
var deckSetTypes = map[string]bool{
	"duel_deck":      true,
	"premium_deck":   true,
	"box":            true,
	"from_the_vault": true,
	"commander":      true,
	"planechase":     true,
	"archenemy":      true,
}

// ScryfallCatalog retrieves the set metadata from Scryfall. The list of
// known sets still comes from a static catalog, since Scryfall also lists
// token, promo and memorabilia sets.
type ScryfallCatalog struct {
	client *scryfall.Client
	known  Catalog

	mutex sync.Mutex
	sets  map[string]scryfall.Set
}

// NewScryfallCatalog creates a catalog backed by the Scryfall API.
func NewScryfallCatalog(known Catalog, options ...scryfall.ClientOption) (*ScryfallCatalog, error) {
	client, err := scryfall.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("create Scryfall client: %w", err)
	}

	return &ScryfallCatalog{
		client: client,
		known:  known,
	}, nil
}

func (c *ScryfallCatalog) getSets(ctx context.Context) (map[string]scryfall.Set, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.sets == nil {
		<-rateLimiter.C
		setList, err := c.client.ListSets(ctx)
		if err != nil {
			return nil, fmt.Errorf("Scryfall client error: %w", err)
		}
		log.Debugf("Retrieved %d sets from Scryfall", len(setList))
		c.sets = make(map[string]scryfall.Set, len(setList))
		for _, set := range setList {
			c.sets[strings.ToLower(set.Code)] = set
		}
	}

	return c.sets, nil
}

// Lookup returns the metadata of a set, as known by Scryfall.
func (c *ScryfallCatalog) Lookup(ctx context.Context, code string) (Info, error) {
	known, err := c.known.Lookup(ctx, code)
	if err != nil {
		return Info{}, err
	}

	sets, err := c.getSets(ctx)
	if err != nil {
		return Info{}, err
	}

	set, found := sets[strings.ToLower(known.Code)]
	if !found {
		for _, candidate := range sets {
			if strings.EqualFold(candidate.MTGOCode, known.Code) {
				set = candidate
				found = true
				break
			}
		}
	}
	if !found {
		log.Warnf("Set %s not found on Scryfall, using the static catalog", known.Code)
		return known, nil
	}

	info := Info{
		Code:         known.Code,
		Name:         set.Name,
		GathererName: known.SearchName(),
		Cards:        set.CardCount,
		ReleaseDate:  known.ReleaseDate,
		Flags: map[Tag]bool{
			TagDeck:   deckSetTypes[string(set.SetType)],
			TagOnline: set.Digital,
		},
	}
	if set.ReleasedAt != nil {
		info.ReleaseDate = set.ReleasedAt.Format(dateFormat)
	}

	return info, nil
}

// Codes returns the set codes of the static catalog.
func (c *ScryfallCatalog) Codes() []string {
	return c.known.Codes()
}
