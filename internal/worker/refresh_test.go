package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/metrics"
)

type mockQuoter struct {
	callCount atomic.Int32
	mu        sync.Mutex
	quoted    []string
	failKey   string
}

func (m *mockQuoter) Quote(_ context.Context, cfg domain.Config) (domain.PriceStore, error) {
	m.callCount.Add(1)
	key := domain.PriceKey(cfg)
	m.mu.Lock()
	m.quoted = append(m.quoted, key)
	m.mu.Unlock()
	if key == m.failKey {
		return domain.PriceStore{}, errors.New("Failed to get Price. No data found.")
	}
	return domain.PriceStore{Price: 1}, nil
}

type mapLookup map[string]domain.Config

func (m mapLookup) Lookup(selector string) (domain.Config, bool) {
	cfg, ok := m[selector]
	return cfg, ok
}

var tokens = mapLookup{
	"BTC":  domain.NewExchangeRateConfig(domain.CryptoAsset("BTC"), domain.FiatAsset("USD")),
	"CHAT": domain.NewAmmTokenConfig("2ouva-viaaa-aaaaq-aaamq-cai"),
}

func TestRefreshAll(t *testing.T) {
	mock := &mockQuoter{}
	w := NewRefreshWorker(mock, tokens, []string{"BTC", "CHAT"}, time.Minute, nil)

	if err := w.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	want := []string{"BTC/USD[Cryptocurrency/FiatCurrency]", "2ouva-viaaa-aaaaq-aaamq-cai"}
	if strings.Join(mock.quoted, ",") != strings.Join(want, ",") {
		t.Errorf("quoted = %v, want %v", mock.quoted, want)
	}
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	mock := &mockQuoter{failKey: "2ouva-viaaa-aaaaq-aaamq-cai"}
	w := NewRefreshWorker(mock, tokens, []string{"CHAT", "NOPE", "BTC"}, time.Minute, metrics.New(reg))

	err := w.RefreshAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "2 of 3") {
		t.Fatalf("error = %v, want 2 of 3 failures", err)
	}
	if got := mock.callCount.Load(); got != 2 {
		t.Errorf("quote calls = %d, want 2", got)
	}

	want := `
# HELP pricebot_refresh_tokens_total Tokens processed by the refresh worker by outcome.
# TYPE pricebot_refresh_tokens_total counter
pricebot_refresh_tokens_total{outcome="error"} 2
pricebot_refresh_tokens_total{outcome="ok"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "pricebot_refresh_tokens_total"); err != nil {
		t.Error(err)
	}
}

func TestRefreshAllStopsOnCancel(t *testing.T) {
	mock := &mockQuoter{}
	w := NewRefreshWorker(mock, tokens, []string{"BTC", "CHAT"}, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.RefreshAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if mock.callCount.Load() != 0 {
		t.Error("quoted after cancellation")
	}
}

func TestRefreshWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockQuoter{}
	w := NewRefreshWorker(mock, tokens, []string{"BTC"}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial refresh + some ticks
	if got := mock.callCount.Load(); got < 2 {
		t.Errorf("call count = %d, want >= 2", got)
	}
}
