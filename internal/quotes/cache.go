package quotes

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/guttosm/quotepulse/internal/domain/models"
)

// SeriesCache maps a normalized symbol to the series fetched for it.
//
// Entries never expire and are never replaced: once a symbol is stored, every
// later Get returns the same series. Concurrent misses for the same symbol are
// collapsed into a single fetch.
type SeriesCache struct {
	mu    sync.RWMutex
	items map[string]models.Series
	group singleflight.Group
}

// NewSeriesCache returns an empty cache.
func NewSeriesCache() *SeriesCache {
	return &SeriesCache{items: make(map[string]models.Series)}
}

// Get returns the cached series for symbol.
func (c *SeriesCache) Get(symbol string) (models.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.items[symbol]
	return s, ok
}

// Len returns the number of cached symbols.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// store inserts s unless symbol is already present and returns the series
// that ends up cached.
func (c *SeriesCache) store(symbol string, s models.Series) models.Series {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[symbol]; ok {
		return existing
	}
	c.items[symbol] = s
	return s
}

// GetOrFetch returns the cached series for symbol or calls fetch once to
// obtain it. Callers racing on the same miss share one fetch. The fetch runs
// detached from any single caller's cancellation, so a caller that gives up
// does not fail the others; each caller still stops waiting when its own ctx
// is done. Failed fetches are not cached.
//
// hit reports whether the series was already cached when the call started.
func (c *SeriesCache) GetOrFetch(ctx context.Context, symbol string, fetch func(context.Context) (models.Series, error)) (s models.Series, hit bool, err error) {
	if s, ok := c.Get(symbol); ok {
		return s, true, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(symbol, func() (any, error) {
		if s, ok := c.Get(symbol); ok {
			return s, nil
		}
		s, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		return c.store(symbol, s), nil
	})

	select {
	case <-ctx.Done():
		return models.Series{}, false, &Error{Kind: ErrNetwork, Symbol: symbol, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return models.Series{}, false, res.Err
		}
		return res.Val.(models.Series), false, nil
	}
}
