package gatherer

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/jeandeaual/mtg-setxml/card"
)

// ErrNoCard is returned when a page doesn't contain any card details.
var ErrNoCard = errors.New("no card details found")

// Compiled in the var block rather than in init(), since
// attributeExtractors captures them during package initialization.
var (
	componentXPath = xpath.MustCompile(`//td[contains(@class,'cardComponentContainer')]`)
	cardImageXPath = xpath.MustCompile(`.//img[contains(@id,'cardImage')]`)
	nameXPath      = xpath.MustCompile(`.//div[contains(@id,'nameRow')]/div[contains(@class,'value')]`)
	manaXPath      = xpath.MustCompile(`.//div[contains(@id,'manaRow')]/div[contains(@class,'value')]`)
	typeXPath      = xpath.MustCompile(`.//div[contains(@id,'typeRow')]/div[contains(@class,'value')]`)
	textXPath      = xpath.MustCompile(`.//div[contains(@id,'textRow')]/div[contains(@class,'value')]`)
	flavorXPath    = xpath.MustCompile(`.//div[contains(@id,'flavorRow')]/div[contains(@class,'value')]`)
	ptLabelXPath   = xpath.MustCompile(`.//div[contains(@id,'ptRow')]/div[contains(@class,'label')]`)
	ptValueXPath   = xpath.MustCompile(`.//div[contains(@id,'ptRow')]/div[contains(@class,'value')]`)
	rarityXPath    = xpath.MustCompile(`.//div[contains(@id,'rarityRow')]/div[contains(@class,'value')]`)
	numberXPath    = xpath.MustCompile(`.//div[contains(@id,'numberRow')]/div[contains(@class,'value')]`)
	artistXPath    = xpath.MustCompile(`.//div[contains(@id,'artistRow')]/div[contains(@class,'value')]`)
	textBoxXPath   = xpath.MustCompile(`.//div[contains(@class,'cardtextbox')]`)
	imageXPath     = xpath.MustCompile(`.//img`)
)

var multiverseIDRegex = regexp.MustCompile(`multiverseid=(\d+)`)

// extractFunc returns the value of an attribute found in a card component,
// and false if the attribute isn't present.
type extractFunc func(component *html.Node) (card.Value, bool, error)

// The attributes gathered for each card, in extraction order.
// Add an entry to support a new attribute.
var attributeExtractors = []struct {
	attr    card.Attribute
	extract extractFunc
}{
	{card.AttrName, rowText(nameXPath)},
	{card.AttrManaCost, manaCost},
	{card.AttrType, rowText(typeXPath)},
	{card.AttrRules, rules},
	{card.AttrRarity, rowText(rarityXPath)},
	{card.AttrNumber, rowText(numberXPath)},
	{card.AttrArtist, rowText(artistXPath)},
	{card.AttrPower, powerToughness(0)},
	{card.AttrToughness, powerToughness(1)},
	{card.AttrLoyalty, loyalty},
	{card.AttrFlavorText, flavorText},
}

// Extractor reads the card attributes from a Gatherer card details page.
type Extractor struct{}

// NewExtractor creates a Gatherer page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the attributes of card id found in page. Attributes that
// aren't on the page are omitted.
func (e *Extractor) Extract(page []byte, id string) (card.Attributes, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the page of card %s: %w", id, err)
	}

	component := findComponent(doc, id)
	if component == nil {
		return nil, fmt.Errorf("card %s: %w", id, ErrNoCard)
	}

	attrs := make(card.Attributes)

	for _, ae := range attributeExtractors {
		value, found, err := ae.extract(component)
		if err != nil {
			return nil, fmt.Errorf("card %s: couldn't extract %s: %w", id, ae.attr, err)
		}
		if found {
			attrs[ae.attr] = value
		}
	}

	return attrs, nil
}

// findComponent returns the part of the page describing card id. Pages of
// double-faced and flip cards describe both halves.
func findComponent(doc *html.Node, id string) *html.Node {
	var fallback *html.Node

	for _, component := range htmlquery.QuerySelectorAll(doc, componentXPath) {
		if htmlquery.QuerySelector(component, nameXPath) == nil {
			continue
		}
		if fallback == nil {
			fallback = component
		}

		image := htmlquery.QuerySelector(component, cardImageXPath)
		if image == nil {
			continue
		}
		matches := multiverseIDRegex.FindStringSubmatch(htmlquery.SelectAttr(image, "src"))
		if matches != nil && matches[1] == id {
			return component
		}
	}

	if fallback != nil {
		return fallback
	}

	// Older page layouts don't have component containers
	if htmlquery.QuerySelector(doc, nameXPath) != nil {
		return doc
	}

	return nil
}

// renderText returns the text of a node, with the symbol images replaced
// by their symbol between braces.
func renderText(node *html.Node) (string, error) {
	var sb strings.Builder

	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "img":
			symbol, err := parseSymbol(htmlquery.SelectAttr(n, "alt"))
			if err != nil {
				return err
			}
			sb.WriteString("{")
			sb.WriteString(symbol)
			sb.WriteString("}")
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
		default:
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(node); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func rowText(expr *xpath.Expr) extractFunc {
	return func(component *html.Node) (card.Value, bool, error) {
		node := htmlquery.QuerySelector(component, expr)
		if node == nil {
			return card.Value{}, false, nil
		}
		text := cleanText(htmlquery.InnerText(node))
		if len(text) == 0 {
			return card.Value{}, false, nil
		}
		return card.Text(text), true, nil
	}
}

func manaCost(component *html.Node) (card.Value, bool, error) {
	node := htmlquery.QuerySelector(component, manaXPath)
	if node == nil {
		return card.Value{}, false, nil
	}

	images := htmlquery.QuerySelectorAll(node, imageXPath)
	symbols := make([]string, 0, len(images))

	for _, image := range images {
		symbol, err := parseSymbol(htmlquery.SelectAttr(image, "alt"))
		if err != nil {
			return card.Value{}, false, err
		}
		symbols = append(symbols, symbol)
	}

	return card.Symbols(symbols...), true, nil
}

// textBoxes returns the paragraphs of a row, one per line.
func textBoxes(node *html.Node) (string, error) {
	boxes := htmlquery.QuerySelectorAll(node, textBoxXPath)
	if len(boxes) == 0 {
		boxes = []*html.Node{node}
	}

	lines := make([]string, 0, len(boxes))
	for _, box := range boxes {
		text, err := renderText(box)
		if err != nil {
			return "", err
		}
		if text = cleanText(text); len(text) > 0 {
			lines = append(lines, text)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// rules is always present, cards without rules text have an empty one.
func rules(component *html.Node) (card.Value, bool, error) {
	node := htmlquery.QuerySelector(component, textXPath)
	if node == nil {
		return card.Text(""), true, nil
	}

	text, err := textBoxes(node)
	if err != nil {
		return card.Value{}, false, err
	}

	return card.Text(text), true, nil
}

func flavorText(component *html.Node) (card.Value, bool, error) {
	node := htmlquery.QuerySelector(component, flavorXPath)
	if node == nil {
		return card.Value{}, false, nil
	}

	text, err := textBoxes(node)
	if err != nil {
		return card.Value{}, false, err
	}
	if len(text) == 0 {
		return card.Value{}, false, nil
	}

	return card.Text(text), true, nil
}

// ptRow returns the label ("P/T:" or "Loyalty:") and value of the
// power/toughness row.
func ptRow(component *html.Node) (string, string, bool) {
	label := htmlquery.QuerySelector(component, ptLabelXPath)
	value := htmlquery.QuerySelector(component, ptValueXPath)
	if label == nil || value == nil {
		return "", "", false
	}

	return strings.ToLower(cleanText(htmlquery.InnerText(label))), cleanText(htmlquery.InnerText(value)), true
}

func splitPowerToughness(value string) ([]string, bool) {
	parts := strings.Split(value, " / ")
	if len(parts) != 2 {
		parts = strings.Split(value, "/")
	}
	if len(parts) != 2 {
		return nil, false
	}
	return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}, true
}

func powerToughness(index int) extractFunc {
	return func(component *html.Node) (card.Value, bool, error) {
		label, value, found := ptRow(component)
		if !found || !strings.HasPrefix(label, "p/t") {
			return card.Value{}, false, nil
		}

		parts, ok := splitPowerToughness(value)
		if !ok {
			return card.Value{}, false, fmt.Errorf("invalid power/toughness %q", value)
		}

		return card.Text(parts[index]), true, nil
	}
}

func loyalty(component *html.Node) (card.Value, bool, error) {
	label, value, found := ptRow(component)
	if !found || !strings.HasPrefix(label, "loyalty") || len(value) == 0 {
		return card.Value{}, false, nil
	}

	return card.Text(value), true, nil
}
