package setxml

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeandeaual/mtg-setxml/card"
	"github.com/jeandeaual/mtg-setxml/log"
	"github.com/jeandeaual/mtg-setxml/setdoc"
	"github.com/jeandeaual/mtg-setxml/sets"
)

func init() {
	logger := zap.NewExample()
	log.SetLogger(logger.Sugar())
}

var errFetch = errors.New("connection reset")

type fakeCatalog struct {
	sets map[string]sets.Info
}

func (c *fakeCatalog) Lookup(_ context.Context, code string) (sets.Info, error) {
	info, found := c.sets[code]
	if !found {
		return sets.Info{}, fmt.Errorf("%w %q", sets.ErrUnknownSet, code)
	}
	return info, nil
}

func (c *fakeCatalog) Codes() []string {
	codes := make([]string, 0, len(c.sets))
	for code := range c.sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// fakeFetcher returns "<id>-o" and "<id>-p" as the pages of a card.
type fakeFetcher struct {
	ids     map[string][]string
	failing map[string]bool
	fetched []string
}

func (f *fakeFetcher) IDs(_ context.Context, info sets.Info) ([]string, error) {
	ids, found := f.ids[info.Code]
	if !found {
		return nil, errFetch
	}
	return ids, nil
}

func (f *fakeFetcher) Pages(_ context.Context, code, id string) ([]byte, []byte, error) {
	if f.failing[id] {
		return nil, nil, errFetch
	}
	f.fetched = append(f.fetched, code+"/"+id)
	return []byte(id + "-o"), []byte(id + "-p"), nil
}

// fakeExtractor returns the attributes registered for a page.
type fakeExtractor struct {
	pages map[string]card.Attributes
}

func (e *fakeExtractor) Extract(page []byte, id string) (card.Attributes, error) {
	attrs, found := e.pages[string(page)]
	if !found {
		return nil, fmt.Errorf("unexpected page %q for card %s", page, id)
	}
	return attrs, nil
}

func (e *fakeExtractor) add(id string, oracle, printed card.Attributes) {
	e.pages[id+"-o"] = oracle
	e.pages[id+"-p"] = printed
}

type failingStore struct{}

func (failingStore) Write(*setdoc.Document) error {
	return errors.New("disk full")
}

func grizzlyBears() card.Attributes {
	return card.Attributes{
		card.AttrType:      card.Text("Creature - Bear"),
		card.AttrRules:     card.Text(""),
		card.AttrPower:     card.Text("2"),
		card.AttrToughness: card.Text("2"),
		card.AttrName:      card.Text("Grizzly Bears"),
	}
}

func jace(loyalty bool) card.Attributes {
	attrs := card.Attributes{
		card.AttrName:     card.Text("Jace Beleren"),
		card.AttrManaCost: card.Symbols("1", "U", "U"),
		card.AttrType:     card.Text("Planeswalker - Jace"),
		card.AttrRules:    card.Text("+2: Each player draws a card."),
	}
	if loyalty {
		attrs[card.AttrLoyalty] = card.Text("3")
	}
	return attrs
}

type fixture struct {
	catalog   *fakeCatalog
	fetcher   *fakeFetcher
	extractor *fakeExtractor
	store     *setdoc.Store
	scanner   *setdoc.Scanner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := setdoc.NewStore(t.TempDir())

	return &fixture{
		catalog: &fakeCatalog{sets: map[string]sets.Info{
			"LEA": {Code: "LEA", Name: "Limited Edition Alpha", Cards: 295, ReleaseDate: "1993-08-05"},
			"LRW": {Code: "LRW", Name: "Lorwyn", Cards: 301, ReleaseDate: "2007-10-12"},
		}},
		fetcher:   &fakeFetcher{ids: map[string][]string{}, failing: map[string]bool{}},
		extractor: &fakeExtractor{pages: map[string]card.Attributes{}},
		store:     store,
		scanner:   setdoc.NewScanner(store),
	}
}

func (f *fixture) pipeline(options Options) *Pipeline {
	return NewPipeline(f.fetcher, f.extractor, f.catalog, f.store, f.scanner, options)
}

func (f *fixture) addBears(code string, ids ...string) {
	f.fetcher.ids[code] = append(f.fetcher.ids[code], ids...)
	for _, id := range ids {
		f.extractor.add(id, grizzlyBears(), grizzlyBears())
	}
}

func cardIDs(t *testing.T, store *setdoc.Store, code string) []string {
	t.Helper()

	doc, err := store.Read(code)
	require.NoError(t, err)

	ids := make([]string, 0, len(doc.Set.Cards.Cards))
	for i := range doc.Set.Cards.Cards {
		ids = append(ids, doc.Set.Cards.Cards[i].ID())
	}
	return ids
}

func requireCardError(t *testing.T, err error) *CardError {
	t.Helper()

	var cardErr *CardError
	require.ErrorAs(t, err, &cardErr)
	return cardErr
}

func TestGenerateGrizzlyBears(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "12345")

	require.NoError(t, f.pipeline(Options{}).Generate(context.Background(), "lea"))

	doc, err := f.store.Read("LEA")
	require.NoError(t, err)
	assert.Equal(t, setdoc.SchemaVersion, doc.Meta.Version)
	assert.Equal(t, "Limited Edition Alpha", doc.Set.Name)
	assert.Equal(t, "LEA", doc.Set.ShortName)
	require.Len(t, doc.Set.Cards.Cards, 1)

	c := doc.Set.Cards.Cards[0]
	assert.Equal(t, "12345", c.ID())

	for _, pair := range [][2]string{{"type_oracle", "type_printed"}, {"rules_oracle", "rules_printed"}} {
		oracle, found := c.Get(pair[0])
		require.True(t, found, pair[0])
		printed, found := c.Get(pair[1])
		require.True(t, found, pair[1])
		assert.Equal(t, oracle, printed)
	}
	value, _ := c.Get("type_oracle")
	assert.Equal(t, "Creature - Bear", value)

	for _, name := range []string{"type", "rules"} {
		_, found := c.Get(name)
		assert.False(t, found, name)
	}
	assert.Nil(t, c.DoubleFaced)
	assert.Nil(t, c.ManaCost)

	assert.Equal(t, setdoc.StatusCurrent, f.scanner.Check("LEA"))
}

func TestGeneratePlaneswalkerWithoutLoyalty(t *testing.T) {
	f := newFixture(t)
	f.fetcher.ids["LRW"] = []string{"140222"}
	f.extractor.add("140222", jace(false), jace(false))

	err := f.pipeline(Options{}).Generate(context.Background(), "LRW")

	cardErr := requireCardError(t, err)
	assert.Equal(t, "LRW", cardErr.Set)
	assert.Equal(t, "140222", cardErr.ID)
	assert.Equal(t, StageValidate, cardErr.Stage)
	assert.ErrorIs(t, err, card.ErrMissingLoyalty)

	var violation *card.Violation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "loyalty", violation.Field)

	// Nothing is written for an aborted set
	assert.Equal(t, setdoc.StatusMissing, f.scanner.Check("LRW"))
}

func TestGenerateDoubleFaced(t *testing.T) {
	special, err := sets.ParseSpecial([]byte("[double_faced]\n\"1\" = \"2\"\n"))
	require.NoError(t, err)

	f := newFixture(t)
	f.fetcher.ids["LRW"] = []string{"1", "2", "3"}
	f.extractor.add("1", jace(true), jace(true))
	// The back face of a planeswalker has no loyalty
	f.extractor.add("2", jace(false), jace(false))
	f.extractor.add("3", grizzlyBears(), grizzlyBears())

	require.NoError(t, f.pipeline(Options{Special: special}).Generate(context.Background(), "LRW"))

	doc, err := f.store.Read("LRW")
	require.NoError(t, err)
	require.Len(t, doc.Set.Cards.Cards, 3)

	assert.Equal(t, &setdoc.DoubleFaced{Side: "front", Other: "2"}, doc.Set.Cards.Cards[0].DoubleFaced)
	assert.Equal(t, &setdoc.DoubleFaced{Side: "back", Other: "1"}, doc.Set.Cards.Cards[1].DoubleFaced)
	assert.Nil(t, doc.Set.Cards.Cards[2].DoubleFaced)
	assert.Equal(t, []string{"1", "U", "U"}, doc.Set.Cards.Cards[0].ManaCost.Symbols)

	// Without the pairs, the back face is an invalid planeswalker
	f2 := newFixture(t)
	f2.fetcher = f.fetcher
	f2.extractor = f.extractor
	err = f2.pipeline(Options{}).Generate(context.Background(), "LRW")
	assert.ErrorIs(t, err, card.ErrMissingLoyalty)
	assert.Equal(t, "2", requireCardError(t, err).ID)
}

func TestGenerateExcluded(t *testing.T) {
	special, err := sets.ParseSpecial([]byte("[excluded]\nLEA = [\"2\"]\n"))
	require.NoError(t, err)

	f := newFixture(t)
	f.addBears("LEA", "1", "3")
	f.fetcher.ids["LEA"] = []string{"1", "2", "3"}

	require.NoError(t, f.pipeline(Options{Special: special}).Generate(context.Background(), "LEA"))
	assert.Equal(t, []string{"1", "3"}, cardIDs(t, f.store, "LEA"))
	assert.Equal(t, []string{"LEA/1", "LEA/3"}, f.fetcher.fetched)
}

func TestGenerateKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "3", "1", "2")

	require.NoError(t, f.pipeline(Options{}).Generate(context.Background(), "LEA"))
	assert.Equal(t, []string{"3", "1", "2"}, cardIDs(t, f.store, "LEA"))
}

func TestGenerateDebugLimit(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1", "2", "3", "4", "5")

	debugStore := setdoc.NewStore(t.TempDir())

	require.NoError(t, f.pipeline(Options{DebugLimit: 3, DebugStore: debugStore}).Generate(context.Background(), "LEA"))
	assert.Equal(t, []string{"1", "2", "3"}, cardIDs(t, debugStore, "LEA"))
	assert.Len(t, f.fetcher.fetched, 3)

	// A truncated set is never stored as up to date
	assert.Equal(t, setdoc.StatusMissing, f.scanner.Check("LEA"))
	assert.Equal(t, []string{"LEA"}, f.scanner.Stale([]string{"LEA"}))
}

func TestGenerateDebugLimitWithoutDebugStore(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1", "2", "3", "4", "5")
	p := f.pipeline(Options{})

	require.NoError(t, p.Generate(context.Background(), "LEA"))

	p = f.pipeline(Options{DebugLimit: 2})
	require.NoError(t, p.Generate(context.Background(), "LEA"))

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, cardIDs(t, f.store, "LEA"))
}

func TestGenerateFailureKeepsPreviousDocument(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1", "2")
	p := f.pipeline(Options{})

	require.NoError(t, p.Generate(context.Background(), "LEA"))

	f.addBears("LEA", "3")
	f.fetcher.failing["3"] = true

	err := p.Generate(context.Background(), "LEA")
	cardErr := requireCardError(t, err)
	assert.Equal(t, StageFetch, cardErr.Stage)
	assert.Equal(t, "3", cardErr.ID)
	assert.ErrorIs(t, err, errFetch)
	assert.Equal(t, "set LEA, card 3: fetch failed: connection reset", err.Error())

	assert.Equal(t, []string{"1", "2"}, cardIDs(t, f.store, "LEA"))
}

func TestGenerateStages(t *testing.T) {
	printedWithoutType := card.Attributes{card.AttrRules: card.Text("")}

	for _, tc := range []struct {
		name    string
		oracle  card.Attributes
		printed card.Attributes
		stage   Stage
		target  error
	}{
		{"missing printed page", grizzlyBears(), nil, StageExtract, nil},
		{"missing printed type", grizzlyBears(), printedWithoutType, StageAssemble, card.ErrIncomplete},
		{"non-ASCII name", card.Attributes{
			card.AttrName:      card.Text("Jötun Grunt"),
			card.AttrType:      card.Text("Creature - Giant Soldier"),
			card.AttrRules:     card.Text(""),
			card.AttrPower:     card.Text("4"),
			card.AttrToughness: card.Text("4"),
		}, grizzlyBears(), StageValidate, card.ErrHighASCII},
		{"creature without toughness", card.Attributes{
			card.AttrName:  card.Text("Grizzly Bears"),
			card.AttrType:  card.Text("Creature - Bear"),
			card.AttrRules: card.Text(""),
			card.AttrPower: card.Text("2"),
		}, grizzlyBears(), StageValidate, card.ErrMissingPowerToughness},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.fetcher.ids["LEA"] = []string{"7"}
			f.extractor.pages["7-o"] = tc.oracle
			if tc.printed != nil {
				f.extractor.pages["7-p"] = tc.printed
			}

			err := f.pipeline(Options{}).Generate(context.Background(), "LEA")
			cardErr := requireCardError(t, err)
			assert.Equal(t, tc.stage, cardErr.Stage)
			assert.Equal(t, "7", cardErr.ID)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
			assert.Equal(t, setdoc.StatusMissing, f.scanner.Check("LEA"))
		})
	}
}

func TestGenerateWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1", "2")

	p := NewPipeline(f.fetcher, f.extractor, f.catalog, failingStore{}, f.scanner, Options{})

	cardErr := requireCardError(t, p.Generate(context.Background(), "LEA"))
	assert.Equal(t, StageWrite, cardErr.Stage)
	assert.Equal(t, "2", cardErr.ID)
}

func TestGenerateUnknownSet(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline(Options{}).Generate(context.Background(), "XXX")
	assert.ErrorIs(t, err, sets.ErrUnknownSet)

	// Known set, but its cards can't be listed
	err = f.pipeline(Options{}).Generate(context.Background(), "LRW")
	assert.ErrorIs(t, err, errFetch)
}

func TestGenerateCanceled(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.pipeline(Options{}).Generate(ctx, "LEA")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.fetcher.fetched)
}

func TestRunSets(t *testing.T) {
	f := newFixture(t)
	f.addBears("LRW", "10")
	f.fetcher.ids["LEA"] = []string{"1"}
	f.fetcher.failing["1"] = true

	errs := f.pipeline(Options{}).RunSets(context.Background(), []string{"LEA", "LRW"})
	require.Len(t, errs, 1)
	assert.Equal(t, "LEA", requireCardError(t, errs[0]).Set)

	assert.Equal(t, []string{"10"}, cardIDs(t, f.store, "LRW"))
}

func TestRunAll(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1")
	f.addBears("LRW", "10")

	assert.Empty(t, f.pipeline(Options{}).RunAll(context.Background()))
	assert.Equal(t, []string{"LEA/1", "LRW/10"}, f.fetcher.fetched)
}

func TestRunStale(t *testing.T) {
	f := newFixture(t)
	f.addBears("LEA", "1")
	f.addBears("LRW", "10")
	p := f.pipeline(Options{})

	require.NoError(t, p.Generate(context.Background(), "LEA"))
	f.fetcher.fetched = nil

	assert.Empty(t, p.RunStale(context.Background()))
	assert.Equal(t, []string{"LRW/10"}, f.fetcher.fetched)

	// Everything is up to date
	f.fetcher.fetched = nil
	assert.Empty(t, p.RunStale(context.Background()))
	assert.Empty(t, f.fetcher.fetched)
}

func TestPrefetch(t *testing.T) {
	special, err := sets.ParseSpecial([]byte("[excluded]\nLEA = [\"2\"]\n"))
	require.NoError(t, err)

	f := newFixture(t)
	f.fetcher.ids["LEA"] = []string{"1", "2", "3"}

	errs := f.pipeline(Options{Special: special}).Prefetch(context.Background(), []string{"lea", "XXX"})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], sets.ErrUnknownSet)

	assert.Equal(t, []string{"LEA/1", "LEA/3"}, f.fetcher.fetched)
	assert.Equal(t, setdoc.StatusMissing, f.scanner.Check("LEA"))
}
