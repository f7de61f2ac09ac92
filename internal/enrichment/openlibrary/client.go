// Package openlibrary is the primary catalog source: bibkey lookups, title and
// author search, and edition enumeration against the OpenLibrary APIs.
package openlibrary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/bookshelf/internal/cache"
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/httputil"
	"github.com/lepinkainen/bookshelf/internal/isbn"
	"github.com/lepinkainen/bookshelf/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public OpenLibrary endpoint.
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultMaxEditions bounds how many editions of a work are fetched.
	DefaultMaxEditions = 10

	openLibraryPriority = 1
	bookCacheTable      = "openlibrary_cache"
	searchCacheTable    = "openlibrary_search_cache"
	searchLimit         = 10
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Timeout     time.Duration
	Limiter     *ratelimit.Limiter
	Cache       *cache.CacheDB
	MaxEditions int
}

// Client implements book.Enricher for OpenLibrary.
type Client struct {
	baseURL     string
	fetcher     *httputil.Fetcher
	cache       *cache.CacheDB
	maxEditions int
}

// Compile-time check that Client implements book.Enricher.
var _ book.Enricher = (*Client)(nil)

// NewClient creates an OpenLibrary client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.New("OpenLibrary", ratelimit.OpenLibraryRate)
	}
	maxEditions := opts.MaxEditions
	if maxEditions <= 0 {
		maxEditions = DefaultMaxEditions
	}

	return &Client{
		baseURL:     baseURL,
		fetcher:     &httputil.Fetcher{Client: httpClient, Limiter: limiter},
		cache:       opts.Cache,
		maxEditions: maxEditions,
	}
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return book.SourceOpenLibrary
}

// Priority returns the merge priority (lower = higher precedence).
func (c *Client) Priority() int {
	return openLibraryPriority
}

// Ping tests the connection to OpenLibrary.
func (c *Client) Ping(ctx context.Context) error {
	return c.fetcher.Ping(ctx, c.baseURL+"/search.json?q=test&limit=1")
}

// Enrich looks a book up by ISBN. Returns nil, nil when OpenLibrary has no record.
func (c *Client) Enrich(ctx context.Context, isbnValue string) (*book.Record, error) {
	canonical := isbn.Canonical(isbnValue)
	if canonical == "" {
		return nil, book.ErrInvalidISBN
	}
	return c.Lookup(ctx, BibKey{Kind: KindISBN, Value: canonical})
}

// Lookup fetches and maps the record addressed by key.
func (c *Client) Lookup(ctx context.Context, key BibKey) (*book.Record, error) {
	data, err := c.fetchBook(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return MapBook(key, data)
}

func (c *Client) fetchBook(ctx context.Context, key BibKey) (*BookData, error) {
	cached, _, err := cache.GetOrFetchWithTTL(c.cache, bookCacheTable, key.String(), func() (*cachedBook, error) {
		return c.fetchBookFromAPI(ctx, key)
	}, cache.SelectNegativeCacheTTL(func(r *cachedBook) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}
	if cached == nil || cached.NotFound {
		return nil, nil
	}
	return cached.Data, nil
}

func (c *Client) fetchBookFromAPI(ctx context.Context, key BibKey) (*cachedBook, error) {
	q := url.Values{}
	q.Set("bibkeys", key.String())
	q.Set("format", "json")
	q.Set("jscmd", "data")
	endpoint := c.baseURL + "/api/books?" + q.Encode()

	slog.Debug("Querying OpenLibrary", "bibkey", key.String())

	var resp booksResponse
	found, err := c.fetcher.GetJSON(ctx, endpoint, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return &cachedBook{NotFound: true}, nil
	}

	data, ok := resp[key.String()]
	if !ok {
		slog.Debug("No data from OpenLibrary", "bibkey", key.String())
		return &cachedBook{NotFound: true}, nil
	}
	return &cachedBook{Data: &data}, nil
}

// Search runs a title/author search and returns the matching works.
func (c *Client) Search(ctx context.Context, title, author string) ([]Work, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("search:%s|%s", strings.ToLower(title), strings.ToLower(author))
	cached, _, err := cache.GetOrFetch(c.cache, searchCacheTable, cacheKey, func() (*cachedSearch, error) {
		q := url.Values{}
		q.Set("title", title)
		if author != "" {
			q.Set("author", author)
		}
		q.Set("fields", "key,title,author_name,first_publish_year,edition_count")
		q.Set("limit", fmt.Sprint(searchLimit))

		var resp searchResponse
		if _, err := c.fetcher.GetJSON(ctx, c.baseURL+"/search.json?"+q.Encode(), &resp); err != nil {
			return nil, err
		}
		return &cachedSearch{Works: resp.Docs}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary search: %w", err)
	}
	return cached.Works, nil
}

// Editions lists the edition OLIDs of a work, capped at the configured maximum.
func (c *Client) Editions(ctx context.Context, workOLID string) ([]string, error) {
	cacheKey := "editions:" + workOLID
	cached, _, err := cache.GetOrFetch(c.cache, searchCacheTable, cacheKey, func() (*cachedEditions, error) {
		endpoint := fmt.Sprintf("%s/works/%s/editions.json?limit=%d", c.baseURL, url.PathEscape(workOLID), c.maxEditions)

		var resp editionsResponse
		if _, err := c.fetcher.GetJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		olids := make([]string, 0, len(resp.Entries))
		for _, e := range resp.Entries {
			if id := strings.TrimPrefix(e.Key, "/books/"); id != "" {
				olids = append(olids, id)
			}
		}
		return &cachedEditions{OLIDs: olids}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary editions of %s: %w", workOLID, err)
	}

	olids := cached.OLIDs
	if len(olids) > c.maxEditions {
		olids = olids[:c.maxEditions]
	}
	return olids, nil
}

// WorkRecord fetches every edition of a work and left-folds them into one
// record: earlier editions win, later ones fill the gaps. Editions that fail
// to map are skipped. Returns nil, nil when no edition yields data.
func (c *Client) WorkRecord(ctx context.Context, workOLID string) (*book.Record, error) {
	olids, err := c.Editions(ctx, workOLID)
	if err != nil {
		return nil, err
	}

	var merged *book.Record
	for _, olid := range olids {
		rec, err := c.Lookup(ctx, BibKey{Kind: KindOLID, Value: olid})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("Skipping edition", "work", workOLID, "edition", olid, "error", err)
			continue
		}
		if rec == nil {
			continue
		}
		merged, _ = book.Merge(merged, rec)
	}
	return merged, nil
}
