package catalog

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookshelf/internal/datastore"
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/enrichment/googlebooks"
	"github.com/lepinkainen/bookshelf/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookshelf/internal/legacy"
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

const legacyCSV = `ISBN-nr,Titel,Forfatter,Forlag,Årstal,Sprog,Sideantal,Beskrivelse,Land
978-0-14-312774-1,Sapiens,"Harari, Yuval Noah",Gyldendal,2014,Engelsk,,Biografi/Erindringer/Historie,
0261102214,The Hobbit,"Tolkien, J. R. R.",,1937,Engelsk,310,Fiktion,
,Into Thin Air,"Krakauer, Jon",,1997,Engelsk,,Område/Guide/Ekspedition,Østrig
,Fjeldvandring,"Jensen, Ole",,1980,Dansk,120,Håndbog/Medicin/Sikkerhed,
`

func TestPipeline_EndToEnd(t *testing.T) {
	olSrv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/books":
			switch r.URL.Query().Get("bibkeys") {
			case "ISBN:9780143127741":
				_, _ = w.Write([]byte(`{"ISBN:9780143127741": {
					"title": "Sapiens", "subtitle": "A Brief History of Humankind",
					"authors": [{"name": "Yuval Noah Harari"}],
					"publishers": [{"name": "Harper"}], "publish_date": "2015",
					"identifiers": {"isbn_13": ["9780143127741"], "openlibrary": ["OL27227327M"]}}}`))
			case "OLID:OL10M":
				_, _ = w.Write([]byte(`{"OLID:OL10M": {"title": "Into Thin Air",
					"authors": [{"name": "Jon Krakauer"}], "number_of_pages": 293,
					"identifiers": {"openlibrary": ["OL10M"]}}}`))
			default:
				_, _ = w.Write([]byte(`{}`))
			}
		case "/search.json":
			if r.URL.Query().Get("title") == "Into Thin Air" {
				_, _ = w.Write([]byte(`{"numFound": 1, "docs": [{"key": "/works/OL1W", "title": "Into Thin Air"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"numFound": 0, "docs": []}`))
		case "/works/OL1W/editions.json":
			_, _ = w.Write([]byte(`{"entries": [{"key": "/books/OL10M"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	gbSrv := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "isbn:0261102214" {
			_, _ = w.Write([]byte(`{"items": [{"volumeInfo": {"title": "The Hobbit",
				"authors": ["J. R. R. Tolkien"], "publisher": "\"HarperCollins\"",
				"industryIdentifiers": [{"type": "ISBN_10", "identifier": "0261102214"}]}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	}))

	ol := openlibrary.NewClient(openlibrary.Options{
		BaseURL: olSrv.URL, HTTPClient: olSrv.Client(), Limiter: ratelimit.Unlimited("OpenLibrary"),
	})
	gb := googlebooks.NewClient(googlebooks.Options{
		BaseURL: gbSrv.URL, HTTPClient: gbSrv.Client(), Limiter: ratelimit.Unlimited("Google Books"),
	})

	csvPath := filepath.Join(t.TempDir(), "dbkk.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(legacyCSV), 0o644))
	rows, err := legacy.Load(csvPath, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	store, ids := openTestStore(t)
	p := New(Options{Store: store, Locations: ids, Primary: ol, Secondary: gb, Search: ol})

	summary, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Cataloged)
	assert.Equal(t, map[string]int{
		book.SourceOpenLibrary:  2,
		book.SourceGoogleBooks:  1,
		book.SourceNoIdentifier: 1,
	}, summary.BySource)
	require.Len(t, summary.Unresolved, 1)
	assert.Equal(t, "Fjeldvandring", summary.Unresolved[0].Row.Title)

	ctx := context.Background()
	sapiens, err := store.Find(ctx, datastore.Key{ISBN: "9780143127741"})
	require.NoError(t, err)
	require.NotNil(t, sapiens)
	assert.Equal(t, "Sapiens - A Brief History of Humankind", sapiens.Record.Title)
	assert.Equal(t, "Harper", sapiens.Record.Publisher)
	assert.Equal(t, "2015", sapiens.Record.Year)
	assert.Equal(t, "English", sapiens.Record.Language)
	assert.Equal(t, "5", sapiens.Record.Location)

	hobbit, err := store.Find(ctx, datastore.Key{ISBN10: "0261102214"})
	require.NoError(t, err)
	require.NotNil(t, hobbit)
	assert.Equal(t, "HarperCollins", hobbit.Record.Publisher)
	assert.Equal(t, "310", hobbit.Record.Pages, "legacy fills what Google Books lacks")

	everest, err := store.Find(ctx, datastore.Key{Title: "Into Thin Air", Authors: "Jon Krakauer"})
	require.NoError(t, err)
	require.NotNil(t, everest)
	assert.Equal(t, "OL10M", everest.Record.OLID)
	assert.Equal(t, "293", everest.Record.Pages)
	assert.Equal(t, "2.5", everest.Record.Location)

	// a second pass finds everything cataloged
	summary, err = p.Run(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Skipped)
}
