package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/datastore"
	"github.com/lepinkainen/bookshelf/internal/legacy"
)

// LocationsCmd groups the location table subcommands
type LocationsCmd struct {
	Init LocationsInitCmd `cmd:"" help:"Populate the location table from the fixed shelf and region tables"`
	List LocationsListCmd `cmd:"" help:"List the shelf locations"`
}

// LocationsInitCmd populates the location table
type LocationsInitCmd struct{}

// LocationsListCmd prints the location table
type LocationsListCmd struct{}

func openStore() (*datastore.SQLiteStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, err := datastore.Open(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}, nil
}

func (LocationsInitCmd) Run() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	var locs []datastore.Location
	for _, l := range legacy.Locations() {
		locs = append(locs, datastore.Location{Label: l.Label, FullName: l.FullName})
	}

	added, err := store.InitLocations(context.Background(), locs)
	if err != nil {
		return err
	}
	slog.Info("Location table initialized", "added", added, "total", len(locs))
	return nil
}

func (LocationsListCmd) Run() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	locs, err := store.Locations(context.Background())
	if err != nil {
		return err
	}
	for _, l := range locs {
		_, _ = fmt.Fprintf(stdout, "%3d  %-5s %s\n", l.ID, l.Label, l.FullName)
	}
	return nil
}
