package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"

	"github.com/lepinkainen/bookshelf/internal/catalog"
	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/datastore"
	"github.com/lepinkainen/bookshelf/internal/fileutil"
	"github.com/lepinkainen/bookshelf/internal/legacy"
	"github.com/lepinkainen/bookshelf/internal/tui"
)

// CatalogCmd runs the batch reconciliation of the legacy catalog
type CatalogCmd struct {
	Input            string `short:"f" help:"Path to the legacy catalog CSV export (legacy.csvfile)"`
	Update           bool   `help:"Fill empty fields of books that are already cataloged instead of skipping them"`
	Interactive      bool   `help:"Pick OpenLibrary works interactively for rows without ISBN"`
	UnresolvedOutput string `help:"Where to write the rows no source could resolve (catalog.unresolved_output)"`
}

func (c *CatalogCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	input := c.Input
	if input == "" {
		input = cfg.LegacyCSVFile
	}
	if input == "" {
		return fmt.Errorf("input CSV file is required (provide via --input flag or legacy.csvfile in config)")
	}

	rows, err := legacy.Load(input, cfg.LegacyDelimiter)
	if err != nil {
		return err
	}
	slog.Info("Loaded legacy catalog", "file", input, "rows", len(rows))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := datastore.Open(cfg.DatabaseFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	locations, err := store.LocationIDs(ctx)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		return fmt.Errorf("location table is empty; run 'bookshelf locations init' first")
	}

	src, err := openSources(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := catalog.Options{
		Store:         store,
		Locations:     locations,
		Primary:       src.openLibrary,
		Secondary:     src.googleBooks,
		Search:        src.openLibrary,
		Update:        c.Update,
		SourceTimeout: cfg.SourceTimeout,
		MaxEditions:   cfg.OpenLibrary.MaxEditions,
	}
	if c.Interactive {
		opts.Selector = tui.WorkPicker{}
	}

	summary, runErr := catalog.New(opts).Run(ctx, rows)
	printSummary(summary)

	output := c.UnresolvedOutput
	if output == "" {
		output = cfg.UnresolvedOutput
	}
	if len(summary.Unresolved) > 0 && output != "" {
		if _, err := fileutil.WriteJSONFile(summary.Unresolved, output, config.OverwriteFiles); err != nil {
			slog.Error("Failed to write unresolved rows", "file", output, "error", err)
		} else {
			slog.Info("Unresolved rows written", "file", output, "count", len(summary.Unresolved))
		}
	}

	return runErr
}

func printSummary(s *catalog.Summary) {
	_, _ = fmt.Fprintf(stdout, "Processed %d rows: %d cataloged, %d updated, %d skipped, %d failed, %d unresolved\n",
		s.Processed, s.Cataloged, s.Updated, s.Skipped, s.Failed, len(s.Unresolved))

	names := make([]string, 0, len(s.BySource))
	for name := range s.BySource {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(stdout, "  %-14s %d\n", name+":", s.BySource[name])
	}
}
