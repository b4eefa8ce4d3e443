package command

import (
	"github.com/mtlprog/pricebot/internal/bot"
	"github.com/mtlprog/pricebot/internal/faq"
	"github.com/mtlprog/pricebot/internal/metrics"
	"github.com/mtlprog/pricebot/internal/price"
)

const (
	PriceBotName = "price"
	FAQBotName   = "faq"

	priceBotDescription = "Price Bot is a bot that shows the price of a crypto/fiat currency. Each community or group can configure the bot to get the price of any crypto/fiat currency according to their needs."
	faqBotDescription   = "A bot to preload with answers to frequently asked questions (FAQ), easily configurable for each community"
)

// NewPriceBot wires the price commands. selectors are offered as price_of choices.
func NewPriceBot(prices PriceResolver, selectors []string, m *metrics.Metrics) *bot.Bot {
	b := bot.New(PriceBotName, priceBotDescription,
		bot.WithUserErrors(price.IsUserError),
		bot.WithMetrics(m),
	)
	b.Register(
		NewPrice(prices),
		NewPriceMessage(prices),
		NewPriceOf(prices, selectors),
		NewConfigureXRC(prices),
		NewConfigureICPSwap(prices),
		Help{},
	)
	return b
}

// NewFAQBot wires the FAQ commands.
func NewFAQBot(faqs FAQStore, m *metrics.Metrics) *bot.Bot {
	b := bot.New(FAQBotName, faqBotDescription,
		bot.WithUserErrors(faq.IsUserError),
		bot.WithMetrics(m),
	)
	b.Register(
		NewShowFAQ(faqs),
		NewSetFAQ(faqs),
		NewUpdateFAQ(faqs),
		NewDeleteFAQ(faqs),
	)
	return b
}
