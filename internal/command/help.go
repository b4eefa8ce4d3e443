package command

import (
	"context"

	"github.com/mtlprog/pricebot/internal/bot"
)

const helpText = "What is Price Bot?\n" +
	priceBotDescription + "\n" +
	`---
How to use the bot?

- ` + "`/price`" + ` : Get the price of a crypto/fiat currency configured by the community as message only visible to you.
- ` + "`/price_message`" + ` : Get the price of a crypto/fiat currency configured by the community as message visible to everyone in the group or community.
- ` + "`/price_of`" + ` : Get the USD price of a token picked from the list.
- ` + "`/configure_bot_price_provider_exchange_rate_canister`" + ` : Configure the bot to get the price of a crypto/fiat currency from the Exchange Rate Canister. *Only community or group administrators can use this command*.
- ` + "`/configure_bot_price_provider_icpswap`" + ` : Configure the bot to fetch prices for ICRC tokens in the ICP ecosystem that are listed on ICPSwap. *Only community or group administrators can use this command*.
---
How to use the configure_bot_price_provider_exchange_rate_canister command?

- You have to be an administrator of the community or group to use this command.
- Type the command ` + "`/configure_bot_price_provider_exchange_rate_canister`" + ` in the group or community.
- Popup will appear asking for the ` + "`Base_Asset_Symbol`, `Base_Asset_Class`, `Quote_Asset_Symbol` and `Quote_Asset_Class`" + `.
- For example if you are configuring for Bitcoin price fill input as ` + "`BTC`" + ` for ` + "`Base_Asset_Symbol`" + `, select ` + "`Cryptocurrency`" + ` for ` + "`Base_Asset_Class`" + `, ` + "`USD`" + ` for ` + "`Quote_Asset_Symbol`" + ` and ` + "`Fiat Currency`" + ` for ` + "`Quote_Asset_Class`" + `.
- If configured successfully, price bot will show the price of Bitcoin in USD in response message.
---
How to use the configure_bot_price_provider_icpswap command?

- You have to be an administrator of the community or group to use this command.
- Type the command ` + "`/configure_bot_price_provider_icpswap`" + ` in the group or community.
- Popup will appear asking for the ` + "`Ledger_CanisterId`" + `. It's the canister id of the ICRC Ledger.
- For example if you are configuring for CHAT token price fill input as ` + "`2ouva-viaaa-aaaaq-aaamq-cai`" + ` for ` + "`Ledger_CanisterId`" + `.
- If configured successfully, price bot will show the price of CHAT token in USD in response message.`

// Help explains the price bot's commands.
type Help struct{}

func (Help) Definition() bot.Definition {
	return bot.Definition{
		Name:        "help",
		Description: "How to use the bot",
	}
}

func (Help) Execute(context.Context, bot.Request) (bot.Reply, error) {
	return bot.Ephemeral(helpText), nil
}
