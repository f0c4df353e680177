// Package gatherer downloads card pages from Gatherer, caches them on disk
// and extracts the card attributes they contain.
package gatherer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeandeaual/mtg-setxml/log"
	"github.com/jeandeaual/mtg-setxml/sets"
)

// DefaultBaseURL is the address of the Gatherer website.
const DefaultBaseURL = "https://gatherer.wizards.com"

// Variant of the text displayed on a card page.
type Variant string

const (
	// Oracle is the current wording of the card.
	Oracle Variant = "o"
	// Printed is the wording as it appears on the printed card.
	Printed Variant = "p"
)

// Options of a Fetcher.
type Options struct {
	// BaseURL of the Gatherer website.
	BaseURL string
	// IDsDir contains the multiverse IDs of each set, one file per set.
	IDsDir string
	// CacheDir contains the downloaded card pages.
	CacheDir string
	// UserAgent sent with each request.
	UserAgent string
	// Interval is the minimum delay between two requests.
	Interval time.Duration
	// Timeout of a single request.
	Timeout time.Duration
}

// Fetcher retrieves the multiverse IDs of a set and the pages of its cards.
// Everything downloaded is cached, so a set is only downloaded once.
type Fetcher struct {
	options     Options
	client      *http.Client
	rateLimiter *time.Ticker
}

// NewFetcher creates a Fetcher. Close should be called once it isn't needed
// anymore.
func NewFetcher(options Options) *Fetcher {
	if len(options.BaseURL) == 0 {
		options.BaseURL = DefaultBaseURL
	}
	options.BaseURL = strings.TrimSuffix(options.BaseURL, "/")

	f := &Fetcher{
		options: options,
		client:  &http.Client{Timeout: options.Timeout},
	}
	if options.Interval > 0 {
		f.rateLimiter = time.NewTicker(options.Interval)
	}

	return f
}

// Close releases the resources used by the fetcher.
func (f *Fetcher) Close() {
	if f.rateLimiter != nil {
		f.rateLimiter.Stop()
	}
}

func (f *Fetcher) idsPath(code string) string {
	return filepath.Join(f.options.IDsDir, code+".txt")
}

func (f *Fetcher) pagePath(code, id string, variant Variant) string {
	return filepath.Join(f.options.CacheDir, code, fmt.Sprintf("%s-%s.html", id, variant))
}

func (f *Fetcher) pageURL(id string, variant Variant) string {
	q := url.Values{}
	q.Set("multiverseid", id)
	if variant == Printed {
		q.Set("printed", "true")
	} else {
		q.Set("printed", "false")
	}

	return f.options.BaseURL + "/Pages/Card/Details.aspx?" + q.Encode()
}

// IDs returns the multiverse IDs of a set, in checklist order. The IDs file
// of the set is used if it exists, otherwise the set checklist is scanned
// and the IDs file written.
func (f *Fetcher) IDs(ctx context.Context, info sets.Info) ([]string, error) {
	path := f.idsPath(info.Code)

	ids, err := ReadIDs(path)
	if err == nil {
		log.Debugf("Read %d IDs from %s", len(ids), path)
		return ids, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	ids, err = f.Scan(ctx, info)
	if err != nil {
		return nil, err
	}

	if err := WriteIDs(path, ids); err != nil {
		return nil, err
	}

	log.Infof("Wrote %d IDs to %s", len(ids), path)

	return ids, nil
}

// Pages returns the oracle and printed pages of a card.
func (f *Fetcher) Pages(ctx context.Context, code, id string) ([]byte, []byte, error) {
	oracle, err := f.Page(ctx, code, id, Oracle)
	if err != nil {
		return nil, nil, err
	}

	printed, err := f.Page(ctx, code, id, Printed)
	if err != nil {
		return nil, nil, err
	}

	return oracle, printed, nil
}

// Page returns a card page from the cache, downloading it first if needed.
func (f *Fetcher) Page(ctx context.Context, code, id string, variant Variant) ([]byte, error) {
	path := f.pagePath(code, id, variant)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("couldn't read %s: %w", path, err)
	}

	data, err = f.get(ctx, f.pageURL(id, variant))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("couldn't create the cache directory for %s: %w", code, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("couldn't write %s: %w", path, err)
	}

	return data, nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	if f.rateLimiter != nil {
		select {
		case <-f.rateLimiter.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	log.Debugf("Downloading %s", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create a request for %s: %w", pageURL, err)
	}
	if len(f.options.UserAgent) > 0 {
		req.Header.Set("User-Agent", f.options.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't query %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("couldn't query %s: status %s", pageURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the response of %s: %w", pageURL, err)
	}

	return data, nil
}

// ReadIDs reads an IDs file, containing one multiverse ID per line.
func ReadIDs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ids []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", path, err)
	}

	return ids, nil
}

// WriteIDs writes an IDs file, creating its directory if needed.
func WriteIDs(path string, ids []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("couldn't create the directory of %s: %w", path, err)
	}

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}

	return nil
}
