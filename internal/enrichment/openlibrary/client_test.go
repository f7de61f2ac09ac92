package openlibrary

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookshelf/internal/cache"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/ratelimit"
)

func newIPv4TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("IPv4 loopback unavailable: %v", err)
	}
	srv := &httptest.Server{Listener: ln, Config: &http.Server{Handler: handler}}
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

const sapiensJSON = `{"ISBN:9780143127741": {
	"title": "Sapiens",
	"subtitle": "A Brief History of Humankind",
	"authors": [{"name": "Yuval Noah Harari"}],
	"publishers": [{"name": "Harper"}],
	"publish_date": "2015",
	"identifiers": {"isbn_13": ["9780143127741"], "openlibrary": ["OL27227327M"]}
}}`

func newTestClient(t *testing.T, srv *httptest.Server, c *cache.CacheDB) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Limiter:    ratelimit.Unlimited("OpenLibrary"),
		Cache:      c,
	})
}

func TestClient_Enrich(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
		switch r.URL.Query().Get("bibkeys") {
		case "ISBN:9780143127741":
			_, _ = w.Write([]byte(sapiensJSON))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	client := newTestClient(t, srv, nil)

	rec, err := client.Enrich(context.Background(), "978-0-14-312774-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Sapiens - A Brief History of Humankind", rec.Title)
	assert.Equal(t, "9780143127741", rec.ISBN13)
	assert.Equal(t, "OL27227327M", rec.OLID)

	rec, err = client.Enrich(context.Background(), "0261102214")
	require.NoError(t, err)
	assert.Nil(t, rec, "empty response means not found")
}

func TestClient_EnrichInvalidISBN(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Enrich(context.Background(), "---")
	assert.Error(t, err)
}

func TestClient_EnrichInconsistent(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"ISBN:9780143127741": {"title": "Other", "authors": [{"name": "X"}],
			"identifiers": {"isbn_13": ["9780261102217"]}}}`)
	}))
	client := newTestClient(t, srv, nil)

	_, err := client.Enrich(context.Background(), "9780143127741")
	require.Error(t, err)
	assert.True(t, errors.IsInconsistencyError(err))
}

func TestClient_EnrichUsesCache(t *testing.T) {
	var calls int32
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(sapiensJSON))
	}))

	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	client := newTestClient(t, srv, c)
	for i := 0; i < 3; i++ {
		rec, err := client.Enrich(context.Background(), "9780143127741")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "Yuval Noah Harari", rec.Authors)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_LookupOtherKinds(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("bibkeys")
		_, _ = fmt.Fprintf(w, `{%q: {"title": "By %s", "authors": [{"name": "A"}]}}`, key, key)
	}))
	client := newTestClient(t, srv, nil)

	for _, key := range []BibKey{
		{Kind: KindOLID, Value: "OL1M"},
		{Kind: KindLCCN, Value: "38005196"},
		{Kind: KindOCLC, Value: "1827184"},
	} {
		rec, err := client.Lookup(context.Background(), key)
		require.NoError(t, err, key.String())
		require.NotNil(t, rec)
		assert.Equal(t, "By "+key.String(), rec.Title)
	}
}

func TestClient_SearchAndWorkRecord(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search.json":
			assert.Equal(t, "Into Thin Air", r.URL.Query().Get("title"))
			assert.Equal(t, "Jon Krakauer", r.URL.Query().Get("author"))
			_, _ = w.Write([]byte(`{"numFound": 1, "docs": [
				{"key": "/works/OL1W", "title": "Into Thin Air", "author_name": ["Jon Krakauer"], "edition_count": 2}
			]}`))
		case "/works/OL1W/editions.json":
			_, _ = w.Write([]byte(`{"size": 3, "entries": [
				{"key": "/books/OL10M"}, {"key": "/books/OL11M"}, {"key": "/books/OL12M"}
			]}`))
		case "/api/books":
			switch r.URL.Query().Get("bibkeys") {
			case "OLID:OL10M":
				_, _ = w.Write([]byte(`{"OLID:OL10M": {"title": "Into Thin Air", "authors": [{"name": "Jon Krakauer"}],
					"identifiers": {"openlibrary": ["OL10M"]}}}`))
			case "OLID:OL11M":
				_, _ = w.Write([]byte(`{"OLID:OL11M": {"title": "", "authors": []}}`))
			case "OLID:OL12M":
				_, _ = w.Write([]byte(`{"OLID:OL12M": {"title": "Into Thin Air (pbk)", "authors": [{"name": "Jon Krakauer"}],
					"number_of_pages": 293, "publishers": [{"name": "Villard"}],
					"identifiers": {"openlibrary": ["OL12M"], "isbn_10": ["0385494785"]}}}`))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	client := newTestClient(t, srv, nil)
	ctx := context.Background()

	works, err := client.Search(ctx, "Into Thin Air", "Jon Krakauer")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "OL1W", works[0].OLID())
	assert.Equal(t, "Jon Krakauer", works[0].Author())

	rec, err := client.WorkRecord(ctx, "OL1W")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Into Thin Air", rec.Title, "first edition wins")
	assert.Equal(t, "OL10M", rec.OLID)
	assert.Equal(t, "293", rec.Pages, "later edition fills the gap")
	assert.Equal(t, "Villard", rec.Publisher)
	assert.Equal(t, "0385494785", rec.ISBN10)
}

func TestClient_EditionsCapped(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"entries": [{"key": "/books/OL1M"}, {"key": "/books/OL2M"}, {"key": "/books/OL3M"}]}`))
	}))
	client := NewClient(Options{
		BaseURL:     srv.URL,
		HTTPClient:  srv.Client(),
		Limiter:     ratelimit.Unlimited("OpenLibrary"),
		MaxEditions: 2,
	})

	olids, err := client.Editions(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.Equal(t, []string{"OL1M", "OL2M"}, olids)
}

func TestClient_SearchEmptyTitle(t *testing.T) {
	client := NewClient(Options{})
	works, err := client.Search(context.Background(), "  ", "anyone")
	assert.NoError(t, err)
	assert.Nil(t, works)
}

func TestClient_Ping(t *testing.T) {
	srv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
	}))
	client := newTestClient(t, srv, nil)
	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, "OpenLibrary", client.Name())
	assert.Equal(t, 1, client.Priority())
}
