package price

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/metrics"
	"github.com/mtlprog/pricebot/internal/storage"
)

// ExchangeRateProvider quotes an asset pair. expiresAt is in unix nanoseconds.
type ExchangeRateProvider interface {
	LatestPrice(ctx context.Context, base, quote domain.Asset) (price float64, expiresAt uint64, err error)
}

// AmmTokenProvider quotes a ledger token and returns its display name.
type AmmTokenProvider interface {
	LatestPrice(ctx context.Context, tokenID string) (price float64, name string, err error)
}

// Service resolves chat scopes to prices, serving from the shared price
// cache while entries are fresh and refreshing them from upstream otherwise.
type Service struct {
	configs  *storage.Map[domain.ConfigKey, domain.Config]
	cache    *priceCache
	xrc      ExchangeRateProvider
	amm      AmmTokenProvider
	registry *Registry
	policy   domain.DirectChatPolicy
	priceKey func(domain.Config) string
	now      func() time.Time
	metrics  *metrics.Metrics
	flights  singleflight.Group

	refreshTimeout time.Duration
}

// defaultRefreshTimeout bounds one shared upstream refresh.
const defaultRefreshTimeout = 90 * time.Second

// Option configures a Service.
type Option func(*Service)

// WithPriceKeyFunc replaces the cache key derivation. The default shares
// entries across every scope configured with the same pair or token.
func WithPriceKeyFunc(fn func(domain.Config) string) Option {
	return func(s *Service) { s.priceKey = fn }
}

// WithRefreshTimeout bounds a shared upstream refresh, which runs
// independently of the callers waiting on it.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Service) { s.refreshTimeout = d }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records cache and upstream metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDirectChatPolicy sets whether direct chats get their own config.
func WithDirectChatPolicy(p domain.DirectChatPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithRegistry sets the token registry used for explicit selectors.
func WithRegistry(r *Registry) Option {
	return func(s *Service) { s.registry = r }
}

// NewService creates a price Service over the store's config and price maps.
func NewService(store *storage.Store, xrc ExchangeRateProvider, amm AmmTokenProvider, opts ...Option) *Service {
	s := &Service{
		configs:  store.Configs,
		xrc:      xrc,
		amm:      amm,
		registry: &Registry{configs: map[string]domain.Config{}},
		policy:   domain.DirectChatsAllow,
		priceKey: domain.PriceKey,
		now:      time.Now,

		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = &priceCache{prices: store.Prices}
	return s
}

// Registry returns the token registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ResolvePrice returns the reply text for a price request. With an empty
// selector the scope's stored config is used; otherwise selector is looked
// up in the token registry.
func (s *Service) ResolvePrice(ctx context.Context, scope domain.Scope, selector string) (string, error) {
	if selector != "" {
		cfg, ok := s.registry.Lookup(selector)
		if !ok {
			return "", ErrUnknownToken
		}
		entry, err := s.Quote(ctx, cfg)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Current Price of %s is $%s", selector, domain.FormatPrice(entry.Price)), nil
	}

	cfg, err := s.ConfigFor(ctx, scope)
	if err != nil {
		return "", err
	}
	entry, err := s.Quote(ctx, cfg)
	if err != nil {
		return "", err
	}
	return FormatReply(cfg, entry), nil
}

// ConfigFor returns the config stored for scope.
func (s *Service) ConfigFor(ctx context.Context, scope domain.Scope) (domain.Config, error) {
	key, err := domain.DeriveConfigKey(scope, s.policy)
	if err != nil {
		return domain.Config{}, err
	}
	cfg, ok, err := s.configs.Get(ctx, key)
	if err != nil {
		return domain.Config{}, fmt.Errorf("reading config for %s: %w", key, err)
	}
	if !ok {
		return domain.Config{}, ErrConfigurationMissing
	}
	return cfg, nil
}

// Configure stores cfg for scope, replacing any previous config.
// The caller is responsible for checking that the initiator may do this.
func (s *Service) Configure(ctx context.Context, scope domain.Scope, cfg domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	key, err := domain.DeriveConfigKey(scope, s.policy)
	if err != nil {
		return err
	}
	if _, _, err := s.configs.Insert(ctx, key, cfg); err != nil {
		return fmt.Errorf("saving config for %s: %w", key, err)
	}
	slog.Info("price config updated", "scope", key.String(), "provider", cfg.Provider, "price_key", s.priceKey(cfg))
	return nil
}

// Quote returns the cached entry for cfg while it is fresh, otherwise it
// fetches a new price, stores it and returns it. A failed fetch leaves the
// cache untouched. Concurrent refreshes of one key share a single fetch;
// cancelling ctx abandons the wait without failing the other callers.
func (s *Service) Quote(ctx context.Context, cfg domain.Config) (domain.PriceStore, error) {
	if err := cfg.Validate(); err != nil {
		return domain.PriceStore{}, err
	}
	key := s.priceKey(cfg)

	entry, state, err := s.cache.lookup(ctx, key, s.now())
	if err != nil {
		return domain.PriceStore{}, err
	}
	s.metrics.ObserveCacheLookup(state)
	if state == metrics.CacheFresh {
		return entry, nil
	}

	// The shared fetch is detached from any single caller: a caller that gives
	// up only stops waiting, the others still get the result.
	ch := s.flights.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.refresh(fctx, key, cfg)
	})
	select {
	case <-ctx.Done():
		return domain.PriceStore{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.PriceStore{}, res.Err
		}
		return res.Val.(domain.PriceStore), nil
	}
}

func (s *Service) refresh(ctx context.Context, key string, cfg domain.Config) (domain.PriceStore, error) {
	// The entry may have been refreshed while this caller waited for the flight.
	previous, state, err := s.cache.lookup(ctx, key, s.now())
	if err != nil {
		return domain.PriceStore{}, err
	}
	if state == metrics.CacheFresh {
		return previous, nil
	}

	fetched, err := s.fetch(ctx, cfg)
	if err != nil {
		slog.Warn("price refresh failed", "price_key", key, "provider", cfg.Provider, "error", err)
		return domain.PriceStore{}, &UpstreamError{Provider: cfg.Provider, Err: err}
	}

	return s.cache.store(ctx, key, fetched, previous)
}

// fetch calls the adapter selected by cfg.
func (s *Service) fetch(ctx context.Context, cfg domain.Config) (domain.PriceStore, error) {
	start := time.Now()
	var (
		entry domain.PriceStore
		err   error
	)

	switch cfg.Provider {
	case domain.ProviderExchangeRate:
		entry.Price, entry.ExpiresAt, err = s.xrc.LatestPrice(ctx, cfg.ExchangeRate.BaseAsset, cfg.ExchangeRate.QuoteAsset)
	case domain.ProviderAmmToken:
		var name string
		entry.Price, name, err = s.amm.LatestPrice(ctx, cfg.AmmToken.TokenCanisterID)
		if err == nil {
			entry.ExpiresAt = domain.NextMinute(s.now())
			entry.DisplayName = &name
		}
	default:
		err = fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidConfig, cfg.Provider)
	}

	s.metrics.ObserveUpstream(string(cfg.Provider), time.Since(start), err)
	return entry, err
}

// Entry is one cached price with its key.
type Entry struct {
	Key   string
	Store domain.PriceStore
}

// Prices lists cached prices in key order.
func (s *Service) Prices(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.cache.prices.Range(ctx, func(k string, v domain.PriceStore) error {
		entries = append(entries, Entry{Key: k, Store: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ConfigEntry is one stored scope config.
type ConfigEntry struct {
	Key    domain.ConfigKey
	Config domain.Config
}

// Configs lists stored configs in key order.
func (s *Service) Configs(ctx context.Context) ([]ConfigEntry, error) {
	var entries []ConfigEntry
	err := s.configs.Range(ctx, func(k domain.ConfigKey, v domain.Config) error {
		entries = append(entries, ConfigEntry{Key: k, Config: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// EvictPrice removes the cached price under key and reports whether it existed.
func (s *Service) EvictPrice(ctx context.Context, key string) (bool, error) {
	_, existed, err := s.cache.prices.Remove(ctx, key)
	if err != nil {
		return false, err
	}
	if existed {
		slog.Info("price evicted", "price_key", key)
	}
	return existed, nil
}

// FormatReply renders a cached entry for cfg.
func FormatReply(cfg domain.Config, entry domain.PriceStore) string {
	price := domain.FormatPrice(entry.Price)
	if entry.DisplayName != nil {
		return fmt.Sprintf("Current Price of %s is $%s", *entry.DisplayName, price)
	}
	if base, quote, ok := cfg.Symbols(); ok {
		return fmt.Sprintf("Current Price of %s is %s %s", base, price, quote)
	}
	return fmt.Sprintf("Current Price of %s is $%s", domain.PriceKey(cfg), price)
}

// IsUserError reports whether err is one of the resolution failures whose
// text is meant for the chat user rather than the logs.
func IsUserError(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) ||
		errors.Is(err, ErrUnknownToken) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, domain.ErrInvalidScope) ||
		errors.Is(err, domain.ErrInvalidConfig)
}
