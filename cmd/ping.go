package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/lepinkainen/bookshelf/internal/config"
)

// PingCmd checks that every networked source answers
type PingCmd struct{}

func (PingCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	src, err := openSources(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	var failed int
	for _, e := range src.enrichers() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.SourceTimeout)
		start := time.Now()
		err := e.Ping(ctx)
		cancel()
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(stdout, "%-12s FAIL %v\n", e.Name(), err)
			continue
		}
		_, _ = fmt.Fprintf(stdout, "%-12s ok   %s\n", e.Name(), time.Since(start).Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d source(s) unreachable", failed)
	}
	return nil
}
