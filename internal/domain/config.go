package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidConfig indicates a Config whose payload does not match its provider.
var ErrInvalidConfig = errors.New("invalid price config")

// Provider identifies the upstream price source a Config dispatches to.
type Provider string

const (
	// ProviderExchangeRate is the exchange rate canister (XRC).
	ProviderExchangeRate Provider = "xrc"
	// ProviderAmmToken is the ICPSwap AMM token price index.
	ProviderAmmToken Provider = "icpswap"
)

// ExchangeRateConfig prices BaseAsset in units of QuoteAsset.
type ExchangeRateConfig struct {
	BaseAsset  Asset `json:"baseAsset"`
	QuoteAsset Asset `json:"quoteAsset"`
}

// AmmTokenConfig prices an ICRC ledger token through the AMM index.
type AmmTokenConfig struct {
	TokenCanisterID string `json:"tokenCanisterId"`
}

// Config is the price provider selected for a chat scope.
// Provider discriminates the variant; exactly one payload is set and it matches Provider.
type Config struct {
	Provider     Provider            `json:"provider"`
	ExchangeRate *ExchangeRateConfig `json:"exchangeRate,omitempty"`
	AmmToken     *AmmTokenConfig     `json:"ammToken,omitempty"`
}

// NewExchangeRateConfig returns an exchange rate Config for base/quote.
func NewExchangeRateConfig(base, quote Asset) Config {
	return Config{
		Provider:     ProviderExchangeRate,
		ExchangeRate: &ExchangeRateConfig{BaseAsset: base, QuoteAsset: quote},
	}
}

// NewAmmTokenConfig returns an AMM token Config for the given ledger canister.
func NewAmmTokenConfig(tokenCanisterID string) Config {
	return Config{
		Provider: ProviderAmmToken,
		AmmToken: &AmmTokenConfig{TokenCanisterID: tokenCanisterID},
	}
}

// Validate checks that the payload matches the provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderExchangeRate:
		if c.ExchangeRate == nil || c.AmmToken != nil {
			return fmt.Errorf("%w: exchange rate payload missing", ErrInvalidConfig)
		}
		if c.ExchangeRate.BaseAsset.Symbol == "" || c.ExchangeRate.QuoteAsset.Symbol == "" {
			return fmt.Errorf("%w: empty asset symbol", ErrInvalidConfig)
		}
		return nil
	case ProviderAmmToken:
		if c.AmmToken == nil || c.ExchangeRate != nil {
			return fmt.Errorf("%w: amm token payload missing", ErrInvalidConfig)
		}
		if !ValidCanisterID(c.AmmToken.TokenCanisterID) {
			return fmt.Errorf("%w: bad canister id %q", ErrInvalidConfig, c.AmmToken.TokenCanisterID)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
}

// Symbols returns the base and quote symbols of an exchange rate Config.
func (c Config) Symbols() (base, quote string, ok bool) {
	if c.Provider != ProviderExchangeRate || c.ExchangeRate == nil {
		return "", "", false
	}
	return c.ExchangeRate.BaseAsset.Symbol, c.ExchangeRate.QuoteAsset.Symbol, true
}

// PriceKey derives the PriceMap key for a Config.
// Format: "{base}/{quote}[{baseClass}/{quoteClass}]" e.g. "BTC/USD[Cryptocurrency/FiatCurrency]",
// or the token canister id for AMM tokens. Scopes configured with the same pair share the key.
// Returns "" for a Config that fails Validate.
func PriceKey(c Config) string {
	switch c.Provider {
	case ProviderExchangeRate:
		if c.ExchangeRate == nil {
			return ""
		}
		base, quote := c.ExchangeRate.BaseAsset, c.ExchangeRate.QuoteAsset
		return fmt.Sprintf("%s/%s[%s/%s]", base.Symbol, quote.Symbol, base.Class, quote.Class)
	case ProviderAmmToken:
		if c.AmmToken == nil {
			return ""
		}
		return c.AmmToken.TokenCanisterID
	default:
		return ""
	}
}

// canisterIDPattern matches the textual principal form: dash separated base32 groups of five,
// the last group possibly shorter.
var canisterIDPattern = regexp.MustCompile(`^[a-z2-7]{5}(-[a-z2-7]{5})*(-[a-z2-7]{1,5})?$`)

// ValidCanisterID reports whether id looks like a textual canister principal.
func ValidCanisterID(id string) bool {
	return canisterIDPattern.MatchString(id)
}
