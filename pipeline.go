// Package setxml generates a versioned XML document for each Magic: The
// Gathering set, from the oracle and printed text of its cards.
//
// The Pipeline drives the generation of a set: it lists the cards of the
// set, fetches and extracts both text variants of each card, merges them
// into a record, links double-faced cards, validates the record and writes
// the document once every card succeeded. Any card failure aborts the set,
// and the previous document is left untouched.
package setxml

import (
	"context"
	"fmt"

	"github.com/jeandeaual/mtg-setxml/card"
	"github.com/jeandeaual/mtg-setxml/log"
	"github.com/jeandeaual/mtg-setxml/setdoc"
	"github.com/jeandeaual/mtg-setxml/sets"
)

// PageFetcher retrieves the card list of a set and the pages of its cards.
type PageFetcher interface {
	// IDs returns the identifiers of the cards of a set, in set order.
	IDs(ctx context.Context, info sets.Info) ([]string, error)
	// Pages returns the oracle and printed pages of a card.
	Pages(ctx context.Context, code, id string) (oracle []byte, printed []byte, err error)
}

// AttributeExtractor reads the attributes of a card from one of its pages.
// Attributes not found on the page are omitted from the result.
type AttributeExtractor interface {
	Extract(page []byte, id string) (card.Attributes, error)
}

// SetCatalog provides the set metadata.
type SetCatalog interface {
	Lookup(ctx context.Context, code string) (sets.Info, error)
	Codes() []string
}

// DocumentStore persists the generated documents.
type DocumentStore interface {
	Write(doc *setdoc.Document) error
}

// StaleFinder lists the sets whose document has to be regenerated.
type StaleFinder interface {
	Stale(codes []string) []string
}

// Options of a Pipeline.
type Options struct {
	// DebugLimit stops the generation of each set after that many cards.
	// 0 disables the limit.
	DebugLimit int
	// DebugStore receives the documents generated with a debug limit, so
	// truncated sets never replace the real ones. Without it, nothing is
	// written in debug mode.
	DebugStore DocumentStore
	// Special contains the double-faced card pairs and the excluded cards.
	Special *sets.Special
}

// Pipeline generates set documents.
type Pipeline struct {
	fetcher   PageFetcher
	extractor AttributeExtractor
	catalog   SetCatalog
	store     DocumentStore
	stale     StaleFinder
	directory *card.Directory
	options   Options
}

// NewPipeline creates a pipeline.
func NewPipeline(
	fetcher PageFetcher,
	extractor AttributeExtractor,
	catalog SetCatalog,
	store DocumentStore,
	stale StaleFinder,
	options Options,
) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		catalog:   catalog,
		store:     store,
		stale:     stale,
		directory: options.Special.Directory(),
		options:   options,
	}
}

func (p *Pipeline) lookup(ctx context.Context, code string) (sets.Info, []string, error) {
	info, err := p.catalog.Lookup(ctx, code)
	if err != nil {
		return sets.Info{}, nil, fmt.Errorf("set %s: %w", code, err)
	}

	ids, err := p.fetcher.IDs(ctx, info)
	if err != nil {
		return sets.Info{}, nil, fmt.Errorf("set %s: couldn't list the cards: %w", code, err)
	}

	return info, ids, nil
}

// Generate builds and writes the document of a set.
func (p *Pipeline) Generate(ctx context.Context, code string) error {
	code = sets.NormalizeCode(code)

	info, ids, err := p.lookup(ctx, code)
	if err != nil {
		return err
	}

	log.Infof("Generating set %s (%s), %d cards", code, info.Name, len(ids))

	builder := setdoc.NewBuilder()
	builder.Begin(info)

	var lastID string

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.options.Special.IsExcluded(code, id) {
			log.Infof("Skipping excluded card %s of set %s", id, code)
			continue
		}

		rec, err := p.card(ctx, code, id)
		if err != nil {
			return err
		}

		builder.AddCard(rec)
		lastID = id

		if p.options.DebugLimit > 0 && builder.Len() >= p.options.DebugLimit {
			log.Infof("Debug mode: stopping set %s after %d cards", code, builder.Len())
			break
		}
	}

	store := p.store
	if p.options.DebugLimit > 0 {
		if p.options.DebugStore == nil {
			log.Infof("Debug mode: set %s not written (%d cards)", code, builder.Len())
			return nil
		}
		store = p.options.DebugStore
	}

	if err := store.Write(builder.Finish()); err != nil {
		return &CardError{Set: code, ID: lastID, Stage: StageWrite, Err: err}
	}

	return nil
}

// card builds the validated record of a card.
func (p *Pipeline) card(ctx context.Context, code, id string) (*card.Record, error) {
	fail := func(stage Stage, err error) error {
		log.Errorw("Card generation failed", "set", code, "id", id, "stage", stage, "error", err)
		return &CardError{Set: code, ID: id, Stage: stage, Err: err}
	}

	oraclePage, printedPage, err := p.fetcher.Pages(ctx, code, id)
	if err != nil {
		return nil, fail(StageFetch, err)
	}

	oracle, err := p.extractor.Extract(oraclePage, id)
	if err != nil {
		return nil, fail(StageExtract, fmt.Errorf("oracle page: %w", err))
	}
	printed, err := p.extractor.Extract(printedPage, id)
	if err != nil {
		return nil, fail(StageExtract, fmt.Errorf("printed page: %w", err))
	}

	rec, err := card.Assemble(id, oracle, printed)
	if err != nil {
		return nil, fail(StageAssemble, err)
	}

	p.directory.Link(rec)

	if err := card.Validate(rec, p.directory); err != nil {
		return nil, fail(StageValidate, err)
	}

	log.Debugw("Card generated", "set", code, "id", id, "name", *rec.Name)

	return rec, nil
}

// RunSets generates the documents of the given sets. A failed set doesn't
// stop the generation of the others; one error is returned per failed set.
func (p *Pipeline) RunSets(ctx context.Context, codes []string) []error {
	var errs []error

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := p.Generate(ctx, code); err != nil {
			log.Errorf("Couldn't generate set %s: %v", sets.NormalizeCode(code), err)
			errs = append(errs, err)
		}
	}

	return errs
}

// RunAll generates the documents of every set of the catalog.
func (p *Pipeline) RunAll(ctx context.Context) []error {
	return p.RunSets(ctx, p.catalog.Codes())
}

// RunStale regenerates the documents that are missing, corrupt or generated
// with an older schema version.
func (p *Pipeline) RunStale(ctx context.Context) []error {
	stale := p.stale.Stale(p.catalog.Codes())
	if len(stale) == 0 {
		log.Info("All the sets are up to date")
		return nil
	}

	log.Infof("%d sets to update: %v", len(stale), stale)

	return p.RunSets(ctx, stale)
}

// Prefetch lists the cards of the given sets and downloads their pages,
// without generating any document.
func (p *Pipeline) Prefetch(ctx context.Context, codes []string) []error {
	var errs []error

	for _, code := range codes {
		code = sets.NormalizeCode(code)

		if err := p.prefetch(ctx, code); err != nil {
			log.Errorf("Couldn't fetch set %s: %v", code, err)
			errs = append(errs, err)
		}
	}

	return errs
}

func (p *Pipeline) prefetch(ctx context.Context, code string) error {
	_, ids, err := p.lookup(ctx, code)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if p.options.Special.IsExcluded(code, id) {
			continue
		}
		if _, _, err := p.fetcher.Pages(ctx, code, id); err != nil {
			return &CardError{Set: code, ID: id, Stage: StageFetch, Err: err}
		}
	}

	log.Infof("Fetched %d cards of set %s", len(ids), code)

	return nil
}
