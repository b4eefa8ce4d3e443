package command

import (
	"context"
	"fmt"

	"github.com/mtlprog/pricebot/internal/bot"
	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/price"
)

const (
	baseSymbolParam  = "Base_Asset_Symbol"
	baseClassParam   = "Base_Asset_Class"
	quoteSymbolParam = "Quote_Asset_Symbol"
	quoteClassParam  = "Quote_Asset_Class"
	ledgerParam      = "Ledger_CanisterId"
)

var assetClassChoices = []bot.Choice{
	{Name: "Cryptocurrency", Value: string(domain.AssetClassCryptocurrency)},
	{Name: "Fiat Currency", Value: string(domain.AssetClassFiatCurrency)},
}

// ConfigureXRC points the scope at the exchange rate canister for a pair.
// The pair is quoted before anything is stored, so an unsupported pair leaves
// the previous config in place.
type ConfigureXRC struct {
	prices PriceResolver
}

func NewConfigureXRC(prices PriceResolver) *ConfigureXRC {
	return &ConfigureXRC{prices: prices}
}

func (c *ConfigureXRC) Definition() bot.Definition {
	return bot.Definition{
		Name:        "configure_bot_price_provider_exchange_rate_canister",
		Description: "Use this command to configure price bot using Exchange Rate Canister. It returns an Ephemeral message that will only be visible for the user that initiated interaction with a bot, and it will disappear upon UI refresh.",
		Placeholder: "Configuring ...",
		Params: []bot.Param{
			{
				Name:        baseSymbolParam,
				Description: "Base Asset is the asset you're pricing. It's the first currency in a currency pair.",
				Placeholder: "Enter Symbol (e.g., BTC, EUR, ETH or etc.)",
				Required:    true,
				MinLength:   2,
				MaxLength:   10,
			},
			{
				Name:        baseClassParam,
				Description: "Class of the base asset.",
				Placeholder: "Select Currency Class",
				Required:    true,
				MinLength:   2,
				MaxLength:   20,
				Choices:     assetClassChoices,
			},
			{
				Name:        quoteSymbolParam,
				Description: `Quote Asset is the asset that denominates the price. It's the second currency in a currency pair. If you are using for fetching price of Crypto input "USDT" or "USD" as Quote Asset`,
				Placeholder: "Enter Symbol (e.g., USDT, USD, or etc.)",
				Required:    true,
				MinLength:   2,
				MaxLength:   10,
			},
			{
				Name:        quoteClassParam,
				Description: "Class of the quote asset.",
				Placeholder: "Select Currency Class",
				Required:    true,
				MinLength:   2,
				MaxLength:   20,
				Choices:     assetClassChoices,
			},
		},
		DefaultRole: bot.RoleAdmin,
	}
}

func (c *ConfigureXRC) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	baseSymbol, baseClass := req.Arg(baseSymbolParam), req.Arg(baseClassParam)
	quoteSymbol, quoteClass := req.Arg(quoteSymbolParam), req.Arg(quoteClassParam)

	base, err := domain.NewAsset(baseClass, baseSymbol)
	if err != nil {
		return bot.Ephemeral(err.Error()), nil
	}
	quote, err := domain.NewAsset(quoteClass, quoteSymbol)
	if err != nil {
		return bot.Ephemeral(err.Error()), nil
	}

	cfg := domain.NewExchangeRateConfig(base, quote)
	entry, err := c.prices.Quote(ctx, cfg)
	if err != nil {
		return bot.Reply{}, err
	}
	if err := c.prices.Configure(ctx, req.Scope, cfg); err != nil {
		return bot.Reply{}, err
	}

	return bot.Ephemeral(fmt.Sprintf(
		"Configured Exchange Rate Canister as provider for Price of %s/%s\n Base Class: %s\n Quote Class: %s\nCurrent rate of %s/%s is %s",
		baseSymbol, quoteSymbol, baseClass, quoteClass, baseSymbol, quoteSymbol, domain.FormatPrice(entry.Price),
	)), nil
}

// ConfigureICPSwap points the scope at an ICRC ledger priced through the AMM index.
type ConfigureICPSwap struct {
	prices PriceResolver
}

func NewConfigureICPSwap(prices PriceResolver) *ConfigureICPSwap {
	return &ConfigureICPSwap{prices: prices}
}

func (c *ConfigureICPSwap) Definition() bot.Definition {
	return bot.Definition{
		Name:        "configure_bot_price_provider_icpswap",
		Description: "Use this command to configure price bot using ICPSwap",
		Placeholder: "Configuring ...",
		Params: []bot.Param{{
			Name:        ledgerParam,
			Description: "ICRC Ledger Canister Id",
			Placeholder: "Enter canister ID",
			Required:    true,
			MinLength:   26,
			MaxLength:   28,
		}},
		DefaultRole: bot.RoleAdmin,
	}
}

func (c *ConfigureICPSwap) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	canisterID := req.Arg(ledgerParam)
	cfg := domain.NewAmmTokenConfig(canisterID)

	entry, err := c.prices.Quote(ctx, cfg)
	if err != nil {
		return bot.Reply{}, err
	}
	if err := c.prices.Configure(ctx, req.Scope, cfg); err != nil {
		return bot.Reply{}, err
	}

	return bot.Public(fmt.Sprintf("Configured for ICPSwap provider with canister ID: %s. %s",
		canisterID, price.FormatReply(cfg, entry))), nil
}
