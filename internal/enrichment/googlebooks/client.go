// Package googlebooks is the secondary catalog source, queried by ISBN only.
package googlebooks

import (
	"context"
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
	// DefaultBaseURL is the public Google Books API endpoint.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	googleBooksPriority = 2
	cacheTable          = "googlebooks_cache"
	volumeFields        = "items/volumeInfo(title,subtitle,authors,publisher,publishedDate," +
		"language,industryIdentifiers,previewLink,pageCount,imageLinks/thumbnail,categories,description)"
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Limiter    *ratelimit.Limiter
	Cache      *cache.CacheDB
}

// Client implements book.Enricher for Google Books.
type Client struct {
	baseURL string
	apiKey  string
	fetcher *httputil.Fetcher
	cache   *cache.CacheDB
}

// Compile-time check that Client implements book.Enricher.
var _ book.Enricher = (*Client)(nil)

// NewClient creates a Google Books client. The API key is optional.
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
		limiter = ratelimit.New("GoogleBooks", ratelimit.GoogleBooksRate)
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		fetcher: &httputil.Fetcher{Client: httpClient, Limiter: limiter},
		cache:   opts.Cache,
	}
}

// Name returns the human-readable name of this source.
func (c *Client) Name() string {
	return book.SourceGoogleBooks
}

// Priority returns the merge priority (lower = higher precedence).
func (c *Client) Priority() int {
	return googleBooksPriority
}

// Ping tests the connection to Google Books.
func (c *Client) Ping(ctx context.Context) error {
	return c.fetcher.Ping(ctx, c.volumesURL("isbn:9780143127741", "totalItems"))
}

// Enrich looks a volume up by ISBN. Returns nil, nil when nothing matches.
func (c *Client) Enrich(ctx context.Context, isbnValue string) (*book.Record, error) {
	canonical := isbn.Canonical(isbnValue)
	if canonical == "" {
		return nil, book.ErrInvalidISBN
	}

	cached, _, err := cache.GetOrFetchWithTTL(c.cache, cacheTable, canonical, func() (*cachedVolume, error) {
		return c.fetchFromAPI(ctx, canonical)
	}, cache.SelectNegativeCacheTTL(func(r *cachedVolume) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}
	if cached == nil || cached.NotFound {
		return nil, nil
	}

	return MapVolume(canonical, cached.Data)
}

func (c *Client) fetchFromAPI(ctx context.Context, canonical string) (*cachedVolume, error) {
	slog.Debug("Querying Google Books", "isbn", canonical)

	var resp VolumesResponse
	found, err := c.fetcher.GetJSON(ctx, c.volumesURL("isbn:"+canonical, volumeFields), &resp)
	if err != nil {
		return nil, err
	}
	if !found || len(resp.Items) == 0 || resp.Items[0].VolumeInfo == nil {
		slog.Debug("No data from Google Books", "isbn", canonical)
		return &cachedVolume{NotFound: true}, nil
	}
	return &cachedVolume{Data: resp.Items[0].VolumeInfo}, nil
}

func (c *Client) volumesURL(query, fields string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("fields", fields)
	q.Set("maxResults", "1")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return c.baseURL + "/volumes?" + q.Encode()
}
