package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/pricebot/internal/config"
	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/export"
	"github.com/mtlprog/pricebot/internal/price"
)

var scopeFlags = []cli.Flag{
	&cli.StringFlag{Name: "group", Usage: "group chat ID"},
	&cli.StringFlag{Name: "community", Usage: "community ID"},
	&cli.StringFlag{Name: "channel", Usage: "channel ID, requires --community"},
	&cli.StringFlag{Name: "direct", Usage: "direct chat ID"},
}

// scopeFromFlags builds the scope named by exactly one of the scope flags.
func scopeFromFlags(c *cli.Context) (domain.Scope, error) {
	group, community, channel, direct := c.String("group"), c.String("community"), c.String("channel"), c.String("direct")
	switch {
	case group != "" && community == "" && direct == "":
		return domain.ChatScope(domain.Chat{Type: domain.ChatGroup, ID: group}), nil
	case channel != "" && community != "":
		return domain.ChatScope(domain.Chat{Type: domain.ChatChannel, ID: community, ChannelID: channel}), nil
	case community != "" && group == "" && direct == "":
		return domain.CommunityScope(community), nil
	case direct != "" && group == "" && community == "":
		return domain.ChatScope(domain.Chat{Type: domain.ChatDirect, ID: direct}), nil
	default:
		return domain.Scope{}, errors.New("exactly one of --group, --community, --direct (or --community with --channel) is required")
	}
}

func withApp(cfg config.Config, fn func(ctx context.Context, c *cli.Context, a *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := openApp(c.Context, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(c.Context, c, a)
	}
}

func priceCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "print the price for a scope, or for a registry token with --token",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "token", Usage: "registry selector, e.g. CHAT or ICP_xrc"},
		}, scopeFlags...),
		Action: withApp(cfg, func(ctx context.Context, c *cli.Context, a *app) error {
			var scope domain.Scope
			if c.String("token") == "" {
				s, err := scopeFromFlags(c)
				if err != nil {
					return err
				}
				scope = s
			}
			reply, err := a.prices.ResolvePrice(ctx, scope, c.String("token"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, reply)
			return nil
		}),
	}
}

func configureXRCCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "configure-xrc",
		Usage: "configure a scope to quote an asset pair from the exchange rate canister",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "base", Usage: "base asset symbol", Required: true},
			&cli.StringFlag{Name: "base-class", Value: string(domain.AssetClassCryptocurrency), Usage: "Cryptocurrency or FiatCurrency"},
			&cli.StringFlag{Name: "quote", Value: "USD", Usage: "quote asset symbol"},
			&cli.StringFlag{Name: "quote-class", Value: string(domain.AssetClassFiatCurrency), Usage: "Cryptocurrency or FiatCurrency"},
		}, scopeFlags...),
		Action: withApp(cfg, func(ctx context.Context, c *cli.Context, a *app) error {
			scope, err := scopeFromFlags(c)
			if err != nil {
				return err
			}
			base, err := domain.NewAsset(c.String("base-class"), c.String("base"))
			if err != nil {
				return err
			}
			quote, err := domain.NewAsset(c.String("quote-class"), c.String("quote"))
			if err != nil {
				return err
			}
			return configure(ctx, c, a, scope, domain.NewExchangeRateConfig(base, quote))
		}),
	}
}

func configureICPSwapCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "configure-icpswap",
		Usage: "configure a scope to quote a ledger token from the AMM",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "ledger", Usage: "token ledger canister ID", Required: true},
		}, scopeFlags...),
		Action: withApp(cfg, func(ctx context.Context, c *cli.Context, a *app) error {
			scope, err := scopeFromFlags(c)
			if err != nil {
				return err
			}
			return configure(ctx, c, a, scope, domain.NewAmmTokenConfig(c.String("ledger")))
		}),
	}
}

// configure quotes cfg before storing it so a config that cannot be priced is never saved.
func configure(ctx context.Context, c *cli.Context, a *app, scope domain.Scope, cfg domain.Config) error {
	entry, err := a.prices.Quote(ctx, cfg)
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if err := a.prices.Configure(ctx, scope, cfg); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, price.FormatReply(cfg, entry))
	return nil
}

func exportCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write stored configs and cached prices to Google Sheets or a workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "write to this workbook instead of the configured target"},
		},
		Action: withApp(cfg, func(ctx context.Context, c *cli.Context, a *app) error {
			if path := c.String("xlsx"); path != "" {
				return export.NewService(a.prices, export.NewXLSXWriter(path)).Export(ctx)
			}
			writer, err := newSheetWriter(ctx, cfg)
			if err != nil {
				return err
			}
			return export.NewService(a.prices, writer).Export(ctx)
		}),
	}
}
