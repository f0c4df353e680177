package gatherer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeandeaual/mtg-setxml/sets"
)

const testUserAgent = "mtg-setxml-test"

type testServer struct {
	*httptest.Server
	requests atomic.Int32
}

func setupGathererTestServer(t *testing.T) *testServer {
	t.Helper()

	checklist := readFixture(t, "checklist.html")
	page := readFixture(t, "grizzly_bears.html")

	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/Pages/Search/Default.aspx", func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		if r.URL.Query().Get("output") != "checklist" || r.URL.Query().Get("set") != `["Limited Edition Alpha"]` {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		_, _ = w.Write(checklist)
	})
	mux.HandleFunc("/Pages/Card/Details.aspx", func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		if r.Header.Get("User-Agent") != testUserAgent {
			http.Error(w, "bad user agent", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("multiverseid") != "12345" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(page)
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func newTestFetcher(t *testing.T, baseURL string) (*Fetcher, string) {
	t.Helper()

	dir := t.TempDir()
	f := NewFetcher(Options{
		BaseURL:   baseURL + "/",
		IDsDir:    filepath.Join(dir, "ids"),
		CacheDir:  filepath.Join(dir, "html"),
		UserAgent: testUserAgent,
		Interval:  time.Millisecond,
		Timeout:   5 * time.Second,
	})
	t.Cleanup(f.Close)

	return f, dir
}

var alpha = sets.Info{Code: "LEA", Name: "Limited Edition Alpha", Cards: 3}

func TestFetcherIDs(t *testing.T) {
	ts := setupGathererTestServer(t)
	f, dir := newTestFetcher(t, ts.URL)

	ids, err := f.IDs(context.Background(), alpha)
	require.NoError(t, err)
	assert.Equal(t, []string{"94", "48", "3"}, ids)
	assert.Equal(t, int32(1), ts.requests.Load())

	data, err := os.ReadFile(filepath.Join(dir, "ids", "LEA.txt"))
	require.NoError(t, err)
	assert.Equal(t, "94\n48\n3\n", string(data))

	// The IDs file is used from now on
	ids, err = f.IDs(context.Background(), alpha)
	require.NoError(t, err)
	assert.Equal(t, []string{"94", "48", "3"}, ids)
	assert.Equal(t, int32(1), ts.requests.Load())
}

func TestFetcherIDsFromFile(t *testing.T) {
	f, dir := newTestFetcher(t, "http://127.0.0.1:1")

	path := filepath.Join(dir, "ids", "LEA.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# Alpha\n1\n\n 2 \n3\n"), 0o644))

	ids, err := f.IDs(context.Background(), alpha)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestFetcherPages(t *testing.T) {
	ts := setupGathererTestServer(t)
	f, dir := newTestFetcher(t, ts.URL)

	oracle, printed, err := f.Pages(context.Background(), "LEA", "12345")
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "grizzly_bears.html"), oracle)
	assert.Equal(t, oracle, printed)
	assert.Equal(t, int32(2), ts.requests.Load())

	assert.FileExists(t, filepath.Join(dir, "html", "LEA", "12345-o.html"))
	assert.FileExists(t, filepath.Join(dir, "html", "LEA", "12345-p.html"))

	// Served from the cache
	_, _, err = f.Pages(context.Background(), "LEA", "12345")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ts.requests.Load())
}

func TestFetcherPageNotFound(t *testing.T) {
	ts := setupGathererTestServer(t)
	f, dir := newTestFetcher(t, ts.URL)

	_, err := f.Page(context.Background(), "LEA", "1", Oracle)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NoFileExists(t, filepath.Join(dir, "html", "LEA", "1-o.html"))
}

func TestFetcherCanceled(t *testing.T) {
	ts := setupGathererTestServer(t)
	f, _ := newTestFetcher(t, ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Page(ctx, "LEA", "12345", Printed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageURL(t *testing.T) {
	f := NewFetcher(Options{})
	defer f.Close()

	assert.Equal(t, DefaultBaseURL+"/Pages/Card/Details.aspx?multiverseid=94&printed=false", f.pageURL("94", Oracle))
	assert.Equal(t, DefaultBaseURL+"/Pages/Card/Details.aspx?multiverseid=94&printed=true", f.pageURL("94", Printed))
}

func TestParseChecklist(t *testing.T) {
	ids, err := ParseChecklist(readFixture(t, "checklist.html"))
	require.NoError(t, err)
	assert.Equal(t, []string{"94", "48", "3"}, ids)

	ids, err = ParseChecklist([]byte("<html></html>"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
