package command

import (
	"context"

	"github.com/samber/lo"

	"github.com/mtlprog/pricebot/internal/bot"
	"github.com/mtlprog/pricebot/internal/domain"
)

// PriceResolver is the slice of price.Service the price commands use.
type PriceResolver interface {
	ResolvePrice(ctx context.Context, scope domain.Scope, selector string) (string, error)
	Quote(ctx context.Context, cfg domain.Config) (domain.PriceStore, error)
	Configure(ctx context.Context, scope domain.Scope, cfg domain.Config) error
}

// Price replies with the scope's configured price, visible only to the initiator.
type Price struct {
	prices PriceResolver
}

func NewPrice(prices PriceResolver) *Price {
	return &Price{prices: prices}
}

func (c *Price) Definition() bot.Definition {
	return bot.Definition{
		Name:           "price",
		Description:    "Shows crypto/fiat price in an ephemeral message visible only to you.",
		Placeholder:    "Getting latest price ...",
		DirectMessages: true,
	}
}

func (c *Price) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	text, err := c.prices.ResolvePrice(ctx, req.Scope, "")
	if err != nil {
		return bot.Reply{}, err
	}
	return bot.Ephemeral(text), nil
}

// PriceMessage posts the scope's configured price to the whole chat.
type PriceMessage struct {
	prices PriceResolver
}

func NewPriceMessage(prices PriceResolver) *PriceMessage {
	return &PriceMessage{prices: prices}
}

func (c *PriceMessage) Definition() bot.Definition {
	return bot.Definition{
		Name:           "price_message",
		Description:    "This will return price of configured Cryptocurrency or FiatCurrency",
		Placeholder:    "Getting latest price ...",
		DirectMessages: true,
	}
}

func (c *PriceMessage) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	text, err := c.prices.ResolvePrice(ctx, req.Scope, "")
	if err != nil {
		return bot.Reply{}, err
	}
	return bot.Public(text), nil
}

const selectParam = "Select"

// PriceOf posts the USD price of a token picked from the registry.
type PriceOf struct {
	prices    PriceResolver
	selectors []string
}

func NewPriceOf(prices PriceResolver, selectors []string) *PriceOf {
	return &PriceOf{prices: prices, selectors: selectors}
}

func (c *PriceOf) Definition() bot.Definition {
	return bot.Definition{
		Name:        "price_of",
		Description: "Get the price of Token in USD",
		Placeholder: "Getting latest price ...",
		Params: []bot.Param{{
			Name:        selectParam,
			Description: "Select a token to get its price",
			Placeholder: "Token",
			Required:    true,
			MaxLength:   100,
			Choices: lo.Map(c.selectors, func(s string, _ int) bot.Choice {
				return bot.Choice{Name: s, Value: s}
			}),
		}},
		DirectMessages: true,
	}
}

func (c *PriceOf) Execute(ctx context.Context, req bot.Request) (bot.Reply, error) {
	text, err := c.prices.ResolvePrice(ctx, req.Scope, req.Arg(selectParam))
	if err != nil {
		return bot.Reply{}, err
	}
	return bot.Public(text), nil
}
