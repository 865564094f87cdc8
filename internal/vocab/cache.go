package vocab

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Cache holds the current vocabulary snapshot behind an atomic pointer.
// Readers always observe either the old complete snapshot or the new
// complete snapshot, never a partially refreshed vocabulary. Refresh
// failures after a successful load keep the old snapshot in service.
type Cache struct {
	source   Source
	local    *BoltStore // optional
	interval time.Duration
	logger   *slog.Logger

	current atomic.Pointer[Snapshot]
}

// NewCache creates a cache around the given source. local may be nil to
// disable on-disk snapshot persistence.
func NewCache(source Source, local *BoltStore, interval time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:   source,
		local:    local,
		interval: interval,
		logger:   logger,
	}
}

// Snapshot returns the current vocabulary snapshot, or ErrUnavailable
// when none has been loaded yet.
func (c *Cache) Snapshot() (*Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrUnavailable
	}
	return snap, nil
}

// Refresh fetches a fresh vocabulary from the source and swaps it in.
func (c *Cache) Refresh(ctx context.Context) error {
	ingredients, err := c.source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching vocabulary: %w", err)
	}
	snap := &Snapshot{
		Ingredients: ingredients,
		LoadedAt:    time.Now().UTC(),
	}
	c.current.Store(snap)
	c.logger.Info("vocabulary refreshed", "entries", snap.Len())

	if c.local != nil {
		if err := c.local.Save(snap); err != nil {
			// The in-memory snapshot is already live; losing the local
			// copy only matters on the next restart.
			c.logger.Warn("persisting vocabulary snapshot failed", "error", err)
		}
	}
	return nil
}

// Warm performs the initial load: the source first, then the local
// snapshot as fallback. It returns an error only when both fail and no
// snapshot is in service.
func (c *Cache) Warm(ctx context.Context) error {
	if err := c.Refresh(ctx); err == nil {
		return nil
	} else {
		c.logger.Warn("initial vocabulary fetch failed", "error", err)
	}

	if c.local != nil {
		snap, err := c.local.Load()
		if err != nil {
			c.logger.Warn("loading persisted vocabulary failed", "error", err)
		} else if snap != nil {
			c.current.Store(snap)
			c.logger.Info("vocabulary restored from local snapshot",
				"entries", snap.Len(), "loaded_at", snap.LoadedAt)
			return nil
		}
	}
	return ErrUnavailable
}

// Start runs periodic refreshes until ctx is cancelled.
func (c *Cache) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("scheduled vocabulary refresh failed", "error", err)
				}
			}
		}
	}()
}

// Close releases the local snapshot store, if any.
func (c *Cache) Close() error {
	if c.local != nil {
		return c.local.Close()
	}
	return nil
}
