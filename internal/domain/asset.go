package domain

import "fmt"

// AssetClass classifies an asset as a cryptocurrency or a fiat currency.
type AssetClass string

const (
	AssetClassCryptocurrency AssetClass = "Cryptocurrency"
	AssetClassFiatCurrency   AssetClass = "FiatCurrency"
)

// ParseAssetClass accepts exactly "Cryptocurrency" or "FiatCurrency".
func ParseAssetClass(s string) (AssetClass, error) {
	switch c := AssetClass(s); c {
	case AssetClassCryptocurrency, AssetClassFiatCurrency:
		return c, nil
	default:
		return "", fmt.Errorf("Invalid asset class: %s", s)
	}
}

// Asset is a tradable symbol tagged with its class. Two assets are equal when
// both class and symbol match, so Asset is safe to use with ==.
type Asset struct {
	Class  AssetClass `json:"class"`
	Symbol string     `json:"symbol"`
}

// NewAsset builds an Asset from the textual class and symbol supplied by a user.
func NewAsset(class, symbol string) (Asset, error) {
	c, err := ParseAssetClass(class)
	if err != nil {
		return Asset{}, err
	}
	if symbol == "" {
		return Asset{}, fmt.Errorf("asset symbol is empty")
	}
	return Asset{Class: c, Symbol: symbol}, nil
}

// CryptoAsset returns a cryptocurrency asset.
func CryptoAsset(symbol string) Asset {
	return Asset{Class: AssetClassCryptocurrency, Symbol: symbol}
}

// FiatAsset returns a fiat currency asset.
func FiatAsset(symbol string) Asset {
	return Asset{Class: AssetClassFiatCurrency, Symbol: symbol}
}
