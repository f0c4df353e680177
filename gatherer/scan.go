package gatherer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/jeandeaual/mtg-setxml/log"
	"github.com/jeandeaual/mtg-setxml/sets"
)

var checklistLinkXPath *xpath.Expr

func init() {
	checklistLinkXPath = xpath.MustCompile(`//tr[contains(@class,'cardItem')]/td[contains(@class,'name')]/a`)
}

func (f *Fetcher) checklistURL(info sets.Info) string {
	q := url.Values{}
	q.Set("output", "checklist")
	q.Set("set", `["`+info.SearchName()+`"]`)

	return f.options.BaseURL + "/Pages/Search/Default.aspx?" + q.Encode()
}

// Scan downloads the checklist of a set and returns the multiverse IDs it
// lists, without duplicates.
func (f *Fetcher) Scan(ctx context.Context, info sets.Info) ([]string, error) {
	checklistURL := f.checklistURL(info)

	log.Infof("Scanning set %s with %s", info.Code, checklistURL)

	data, err := f.get(ctx, checklistURL)
	if err != nil {
		return nil, err
	}

	ids, err := ParseChecklist(data)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", info.Code, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no card found in %s (XPath: %s)", checklistURL, checklistLinkXPath)
	}

	if info.Cards > 0 && len(ids) != info.Cards {
		log.Warnf("Found %d cards in set %s, expected %d", len(ids), info.Code, info.Cards)
	}

	return ids, nil
}

// ParseChecklist returns the multiverse IDs linked from a checklist page, in
// page order.
func ParseChecklist(page []byte) ([]string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the checklist: %w", err)
	}

	var ids []string
	seen := make(map[string]struct{})

	for _, link := range htmlquery.QuerySelectorAll(doc, checklistLinkXPath) {
		matches := multiverseIDRegex.FindStringSubmatch(htmlquery.SelectAttr(link, "href"))
		if matches == nil {
			log.Debugf("Ignoring checklist link %q", htmlquery.InnerText(link))
			continue
		}

		id := matches[1]
		if _, found := seen[id]; found {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
