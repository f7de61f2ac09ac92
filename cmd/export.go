package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/datastore"
)

// ExportCmd publishes the book table to Datasette
type ExportCmd struct {
	URL      string `help:"Datasette base URL (datasette.url)"`
	Database string `help:"Datasette database name (datasette.database)"`
	Replace  bool   `help:"Replace rows with the same id instead of failing"`
}

func (e *ExportCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseURL := e.URL
	if baseURL == "" {
		baseURL = cfg.Datasette.URL
	}
	if baseURL == "" {
		return fmt.Errorf("datasette URL is required (provide via --url flag or datasette.url in config)")
	}
	database := e.Database
	if database == "" {
		database = cfg.Datasette.Database
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

	books, err := store.All(context.Background())
	if err != nil {
		return err
	}

	client := datastore.NewDatasetteClient(baseURL, cfg.Datasette.Token)
	client.Replace = e.Replace
	var remote datastore.Store = client
	if err := remote.Connect(); err != nil {
		return err
	}
	defer func() { _ = remote.Close() }()

	if err := remote.BatchInsert(database, "book", datastore.BookRows(books)); err != nil {
		return fmt.Errorf("exporting to datasette: %w", err)
	}

	slog.Info("Exported books to Datasette", "url", baseURL, "database", database, "books", len(books))
	_, _ = fmt.Fprintf(stdout, "Exported %d books\n", len(books))
	return nil
}
