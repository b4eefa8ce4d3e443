package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/metrics"
)

// Quoter returns a fresh price for cfg, refreshing the cache when needed.
type Quoter interface {
	Quote(ctx context.Context, cfg domain.Config) (domain.PriceStore, error)
}

// TokenLookup resolves a registry selector to its config.
type TokenLookup interface {
	Lookup(selector string) (domain.Config, bool)
}

// RefreshWorker keeps the cache warm for a fixed set of registry selectors so
// the first user request after expiry is served without an upstream round trip.
type RefreshWorker struct {
	quoter    Quoter
	tokens    TokenLookup
	selectors []string
	interval  time.Duration
	metrics   *metrics.Metrics
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(quoter Quoter, tokens TokenLookup, selectors []string, interval time.Duration, m *metrics.Metrics) *RefreshWorker {
	return &RefreshWorker{
		quoter:    quoter,
		tokens:    tokens,
		selectors: selectors,
		interval:  interval,
		metrics:   m,
	}
}

// RefreshAll quotes every selector. Individual failures are logged and
// counted; the returned error reports how many failed.
func (w *RefreshWorker) RefreshAll(ctx context.Context) error {
	failed := 0
	for _, sel := range w.selectors {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := w.refresh(ctx, sel)
		w.metrics.ObserveRefresh(err)
		if err != nil {
			failed++
			slog.Warn("RefreshWorker: token refresh failed", "selector", sel, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tokens failed to refresh", failed, len(w.selectors))
	}
	return nil
}

func (w *RefreshWorker) refresh(ctx context.Context, selector string) error {
	cfg, ok := w.tokens.Lookup(selector)
	if !ok {
		return fmt.Errorf("unknown selector %q", selector)
	}
	_, err := w.quoter.Quote(ctx, cfg)
	return err
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "tokens", len(w.selectors), "interval", w.interval)

	// Refresh immediately on startup
	if err := w.RefreshAll(ctx); err != nil {
		slog.Error("RefreshWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("RefreshWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.RefreshAll(ctx); err != nil {
				slog.Error("RefreshWorker: refresh failed", "error", err)
			} else {
				slog.Debug("RefreshWorker: refresh completed")
			}
		}
	}
}
