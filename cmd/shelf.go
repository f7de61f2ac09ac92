package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/datastore"
	"github.com/lepinkainen/bookshelf/internal/errors"
	"github.com/lepinkainen/bookshelf/internal/fileutil"
	"github.com/lepinkainen/bookshelf/internal/isbn"
)

// ShelfCmd records a scanned book being returned, lent out or moved
type ShelfCmd struct {
	ISBN     string `arg:"" help:"Scanned ISBN-10 or ISBN-13"`
	Out      bool   `help:"Mark the book as lent out instead of on the shelf"`
	Location string `help:"Move the book to this location label, e.g. 3 or 2.5"`
}

func (s *ShelfCmd) Run() error {
	canonical := isbn.Canonical(s.ISBN)
	if isbn.NotISBN(canonical) {
		return fmt.Errorf("%q is not a valid ISBN", s.ISBN)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := datastore.Open(cfg.DatabaseFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}()

	ctx := context.Background()
	var locationID int64
	if s.Location != "" {
		ids, err := store.LocationIDs(ctx)
		if err != nil {
			return err
		}
		id, ok := ids[s.Location]
		if !ok {
			return errors.NewConfigurationError("location", s.Location)
		}
		locationID = id
	}

	books, err := store.FindByISBN(ctx, canonical)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return recordUnknownBarcode(cfg.UnknownBarcodes, canonical, s.Location)
	}
	if len(books) > 1 {
		slog.Warn("ISBN matches several books, updating the first", "isbn", canonical, "matches", len(books))
	}

	b := books[0]
	if err := store.SetInLib(ctx, b.ID, !s.Out); err != nil {
		return err
	}
	if locationID != 0 {
		if err := store.SetLocation(ctx, b.ID, locationID); err != nil {
			return err
		}
	}

	state := "on shelf"
	if s.Out {
		state = "lent out"
	}
	location := b.Record.Location
	if s.Location != "" {
		location = s.Location
	}
	_, _ = fmt.Fprintf(stdout, "%s: %s (location %s)\n", b.Record.Title, state, location)
	return nil
}

// recordUnknownBarcode keeps the ISBNs of books missing from the database,
// with the location they were scanned at, for a later catalog run.
func recordUnknownBarcode(path, canonical, location string) error {
	if path == "" {
		return fmt.Errorf("ISBN %s is not in the database", canonical)
	}

	unknown := map[string]string{}
	if _, err := fileutil.ReadJSONFile(path, &unknown); err != nil {
		return err
	}
	if prev, ok := unknown[canonical]; ok && location == "" {
		location = prev
	}
	unknown[canonical] = location

	if _, err := fileutil.WriteJSONFile(unknown, path, true); err != nil {
		return err
	}
	slog.Warn("ISBN not in the database, recorded as unknown barcode", "isbn", canonical, "file", path)
	_, _ = fmt.Fprintf(stdout, "%s: unknown, saved to %s\n", canonical, path)
	return nil
}
