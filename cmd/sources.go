package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookshelf/internal/cache"
	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
	"github.com/lepinkainen/bookshelf/internal/enrichment/googlebooks"
	"github.com/lepinkainen/bookshelf/internal/enrichment/openlibrary"
	"github.com/lepinkainen/bookshelf/internal/ratelimit"
)

var newLimiter = func(name string, rps float64) *ratelimit.Limiter {
	return ratelimit.New(name, rps)
}

// sources bundles the networked sources and the cache they share.
type sources struct {
	cache       *cache.CacheDB
	openLibrary *openlibrary.Client
	googleBooks *googlebooks.Client
}

func openSources(cfg *config.Config) (*sources, error) {
	c, err := cache.Open(cfg.CacheDBFile, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &sources{
		cache: c,
		openLibrary: openlibrary.NewClient(openlibrary.Options{
			BaseURL:     cfg.OpenLibrary.URL,
			Timeout:     cfg.SourceTimeout,
			Limiter:     newLimiter(book.SourceOpenLibrary, ratelimit.OpenLibraryRate),
			Cache:       c,
			MaxEditions: cfg.OpenLibrary.MaxEditions,
		}),
		googleBooks: googlebooks.NewClient(googlebooks.Options{
			BaseURL: cfg.GoogleBooks.URL,
			APIKey:  cfg.GoogleBooks.APIKey,
			Timeout: cfg.SourceTimeout,
			Limiter: newLimiter(book.SourceGoogleBooks, ratelimit.GoogleBooksRate),
			Cache:   c,
		}),
	}, nil
}

// enrichers returns the sources in priority order.
func (s *sources) enrichers() []book.Enricher {
	return []book.Enricher{s.openLibrary, s.googleBooks}
}

func (s *sources) Close() {
	if err := s.cache.Close(); err != nil {
		slog.Warn("Failed to close cache database", "error", err)
	}
}
