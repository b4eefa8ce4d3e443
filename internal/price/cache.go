package price

import (
	"context"
	"fmt"
	"time"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/metrics"
	"github.com/mtlprog/pricebot/internal/storage"
)

// priceCache reads the shared price map and classifies entries by freshness.
type priceCache struct {
	prices *storage.Map[string, domain.PriceStore]
}

// lookup returns the entry under key and its state at now.
// A missing entry is returned as the zero PriceStore, which is never fresh.
func (c *priceCache) lookup(ctx context.Context, key string, now time.Time) (domain.PriceStore, string, error) {
	entry, ok, err := c.prices.Get(ctx, key)
	if err != nil {
		return domain.PriceStore{}, "", fmt.Errorf("reading price %q: %w", key, err)
	}

	state := metrics.CacheMiss
	switch {
	case ok && entry.FreshAt(now):
		state = metrics.CacheFresh
	case ok:
		state = metrics.CacheStale
	}
	return entry, state, nil
}

// store overwrites key. The previous display name survives unless entry carries one.
func (c *priceCache) store(ctx context.Context, key string, entry, previous domain.PriceStore) (domain.PriceStore, error) {
	if entry.DisplayName == nil {
		entry.DisplayName = previous.DisplayName
	}
	if _, _, err := c.prices.Insert(ctx, key, entry); err != nil {
		return domain.PriceStore{}, fmt.Errorf("saving price %q: %w", key, err)
	}
	return entry, nil
}
