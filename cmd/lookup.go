package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookshelf/internal/catalog"
	"github.com/lepinkainen/bookshelf/internal/config"
	"github.com/lepinkainen/bookshelf/internal/enrichment/book"
)

// LookupCmd reconciles one ISBN without persisting it
type LookupCmd struct {
	ISBN   string `arg:"" help:"ISBN-10 or ISBN-13, hyphens allowed"`
	Format string `help:"Output format" enum:"json,yaml" default:"json"`
}

// lookupResult is the printed shape of a lookup.
type lookupResult struct {
	Source  string            `json:"source" yaml:"source"`
	Record  *book.Record      `json:"record" yaml:"record"`
	Sources map[string]string `json:"field_sources,omitempty" yaml:"field_sources,omitempty"`
}

func (l *LookupCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, err := openSources(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	p := catalog.New(catalog.Options{
		Primary:       src.openLibrary,
		Secondary:     src.googleBooks,
		SourceTimeout: cfg.SourceTimeout,
	})

	merged, err := p.Reconcile(context.Background(), l.ISBN)
	if err != nil {
		return err
	}
	if merged == nil {
		return fmt.Errorf("no source knows ISBN %s", l.ISBN)
	}

	result := lookupResult{
		Source:  merged.SourceOf(book.FieldTitle),
		Record:  merged.Record,
		Sources: make(map[string]string, len(merged.Sources)),
	}
	for f, s := range merged.Sources {
		result.Sources[string(f)] = s
	}

	return writeFormatted(result, l.Format)
}

func writeFormatted(v any, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
