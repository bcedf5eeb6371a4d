package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songscope/internal/core/domain"
	"github.com/ewilliams-labs/songscope/internal/core/ports"
)

// Catalog memoizes dataset loads by path. A path is read at most once per
// successful load and the resulting snapshot is shared by every caller.
// Failed loads are forgotten so a later call can try again.
type Catalog struct {
	source ports.DatasetSource
	log    zerolog.Logger

	mu      sync.Mutex
	entries map[string]*catalogEntry
}

type catalogEntry struct {
	ready chan struct{}
	ds    *domain.Dataset
	err   error
}

// NewCatalog constructs a Catalog over source.
func NewCatalog(source ports.DatasetSource, log zerolog.Logger) *Catalog {
	return &Catalog{
		source:  source,
		log:     log,
		entries: make(map[string]*catalogEntry),
	}
}

// Load returns the dataset at path, reading it on first use. Concurrent
// callers for the same path wait for a single read.
func (c *Catalog) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	c.mu.Lock()
	entry, ok := c.entries[path]
	if !ok {
		entry = &catalogEntry{ready: make(chan struct{})}
		c.entries[path] = entry
		c.mu.Unlock()
		c.fill(ctx, path, entry)
	} else {
		c.mu.Unlock()
	}

	select {
	case <-entry.ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("service: waiting for dataset: %w", ctx.Err())
	}
	return entry.ds, entry.err
}

func (c *Catalog) fill(ctx context.Context, path string, entry *catalogEntry) {
	defer close(entry.ready)
	defer func() {
		if p := recover(); p != nil {
			c.fail(path, entry, domain.NewDataSourceError(path, "load", fmt.Errorf("panic: %v", p)))
		}
	}()

	start := time.Now()
	ds, err := c.source.Load(ctx, path)
	if err != nil {
		c.fail(path, entry, err)
		return
	}

	entry.ds = ds
	c.log.Info().
		Str("path", path).
		Int("rows", ds.Len()).
		Int("rows_without_year", ds.MissingYears()).
		Dur("duration_ms", time.Since(start)).
		Msg("dataset loaded")
}

// fail forgets entry so the next caller reads path again.
func (c *Catalog) fail(path string, entry *catalogEntry, err error) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
	entry.err = err
	c.log.Error().Err(err).Str("path", path).Msg("dataset load failed")
}
