package cache

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// SourceTables maps a cache source name to the tables holding its responses
var SourceTables = map[string][]string{
	"openlibrary": {"openlibrary_cache", "openlibrary_search_cache"},
	"googlebooks": {"googlebooks_cache"},
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: openlibrary, googlebooks" enum:"openlibrary,googlebooks" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	dbPath := viper.GetString("cache.dbfile")

	slog.Info("Invalidating cache", "source", i.Source, "database", dbPath)

	tables, ok := SourceTables[i.Source]
	if !ok {
		return fmt.Errorf("invalid cache source '%s'; valid sources are: openlibrary, googlebooks", i.Source)
	}

	cacheInstance, err := Open(dbPath, viper.GetDuration("cache.ttl"))
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() {
		if err := cacheInstance.Close(); err != nil {
			slog.Warn("Failed to close cache database", "error", err)
		}
	}()

	rowsDeleted, err := InvalidateSources(cacheInstance, i.Source)
	if err != nil {
		return err
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}

// InvalidateSources clears every table belonging to source
func InvalidateSources(c *CacheDB, source string) (int64, error) {
	tables, ok := SourceTables[source]
	if !ok {
		return 0, fmt.Errorf("invalid cache source '%s'", source)
	}

	var total int64
	for _, table := range tables {
		n, err := c.InvalidateSource(table)
		if err != nil {
			return total, fmt.Errorf("failed to invalidate cache: %w", err)
		}
		total += n
	}
	return total, nil
}
