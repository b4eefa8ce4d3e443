package domain

import (
	"errors"
	"testing"
)

func TestPriceKeyExchangeRate(t *testing.T) {
	cfg := NewExchangeRateConfig(CryptoAsset("BTC"), FiatAsset("USD"))
	want := "BTC/USD[Cryptocurrency/FiatCurrency]"
	if got := PriceKey(cfg); got != want {
		t.Errorf("PriceKey() = %q, want %q", got, want)
	}
}

func TestPriceKeyAmmToken(t *testing.T) {
	cfg := NewAmmTokenConfig("2ouva-viaaa-aaaaq-aaamq-cai")
	if got := PriceKey(cfg); got != "2ouva-viaaa-aaaaq-aaamq-cai" {
		t.Errorf("PriceKey() = %q, want canister id", got)
	}
}

func TestPriceKeyDeterministic(t *testing.T) {
	a := NewExchangeRateConfig(CryptoAsset("BTC"), FiatAsset("USD"))
	b := NewExchangeRateConfig(CryptoAsset("BTC"), FiatAsset("USD"))
	if PriceKey(a) != PriceKey(b) {
		t.Errorf("equal configs produced different keys: %q vs %q", PriceKey(a), PriceKey(b))
	}

	variants := []Config{
		NewExchangeRateConfig(CryptoAsset("ETH"), FiatAsset("USD")),
		NewExchangeRateConfig(CryptoAsset("BTC"), FiatAsset("EUR")),
		NewExchangeRateConfig(FiatAsset("BTC"), FiatAsset("USD")),
		NewExchangeRateConfig(CryptoAsset("BTC"), CryptoAsset("USD")),
	}
	for _, v := range variants {
		if PriceKey(v) == PriceKey(a) {
			t.Errorf("PriceKey(%+v) collides with BTC/USD", *v.ExchangeRate)
		}
	}
}

func TestPriceKeyInvalidConfig(t *testing.T) {
	if got := PriceKey(Config{Provider: ProviderExchangeRate}); got != "" {
		t.Errorf("PriceKey() for missing payload = %q, want empty", got)
	}
	if got := PriceKey(Config{Provider: "kong"}); got != "" {
		t.Errorf("PriceKey() for unknown provider = %q, want empty", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"exchange rate", NewExchangeRateConfig(CryptoAsset("ICP"), FiatAsset("USD")), false},
		{"amm token", NewAmmTokenConfig("ryjl3-tyaaa-aaaaa-aaaba-cai"), false},
		{"missing payload", Config{Provider: ProviderAmmToken}, true},
		{"both payloads", Config{
			Provider:     ProviderExchangeRate,
			ExchangeRate: &ExchangeRateConfig{BaseAsset: CryptoAsset("A"), QuoteAsset: FiatAsset("B")},
			AmmToken:     &AmmTokenConfig{TokenCanisterID: "ryjl3-tyaaa-aaaaa-aaaba-cai"},
		}, true},
		{"bad canister id", NewAmmTokenConfig("not a principal"), true},
		{"empty symbol", NewExchangeRateConfig(CryptoAsset(""), FiatAsset("USD")), true},
		{"unknown provider", Config{Provider: "kong"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigSymbols(t *testing.T) {
	base, quote, ok := NewExchangeRateConfig(CryptoAsset("BTC"), FiatAsset("USD")).Symbols()
	if !ok || base != "BTC" || quote != "USD" {
		t.Errorf("Symbols() = %q, %q, %v", base, quote, ok)
	}
	if _, _, ok := NewAmmTokenConfig("ryjl3-tyaaa-aaaaa-aaaba-cai").Symbols(); ok {
		t.Error("Symbols() ok for amm token config")
	}
}

func TestValidCanisterID(t *testing.T) {
	valid := []string{
		"uf6dk-hyaaa-aaaaq-qaaaq-cai",
		"ggzvv-5qaaa-aaaag-qck7a-cai",
		"2ouva-viaaa-aaaaq-aaamq-cai",
	}
	for _, id := range valid {
		if !ValidCanisterID(id) {
			t.Errorf("ValidCanisterID(%q) = false", id)
		}
	}

	invalid := []string{"", "UF6DK-HYAAA", "abc def", "uf6dk--hyaaa", "uf6dk-hyaaa-"}
	for _, id := range invalid {
		if ValidCanisterID(id) {
			t.Errorf("ValidCanisterID(%q) = true", id)
		}
	}
}
