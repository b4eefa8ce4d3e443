package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/pricebot/internal/config"
	"github.com/mtlprog/pricebot/internal/faq"
	"github.com/mtlprog/pricebot/internal/gateway"
	"github.com/mtlprog/pricebot/internal/metrics"
	"github.com/mtlprog/pricebot/internal/price"
	"github.com/mtlprog/pricebot/internal/provider/amm"
	"github.com/mtlprog/pricebot/internal/provider/xrc"
	"github.com/mtlprog/pricebot/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg := config.Load()

	app := &cli.App{
		Name:  "pricebot",
		Usage: "price and FAQ bots for community chats",
		Commands: []*cli.Command{
			serveCommand(cfg),
			priceCommand(cfg),
			configureXRCCommand(cfg),
			configureICPSwapCommand(cfg),
			exportCommand(cfg),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("pricebot: %v", err)
	}
}

// app holds the services shared by every subcommand.
type app struct {
	store    *storage.Store
	prices   *price.Service
	faqs     *faq.Service
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

// openApp opens storage and wires the price and FAQ services.
// The caller must Close the returned app.
func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StorageBackend,
		LevelDBPath: cfg.LevelDBPath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := loadRegistry(cfg.TokenRegistry)
	if err != nil {
		store.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gw := gateway.NewClient(cfg.GatewayURL, cfg.GatewayRetryMax, cfg.GatewayRetryBaseDelay, cfg.GatewayRateLimit)

	prices := price.NewService(store,
		xrc.NewClient(gw, cfg.XRCCanisterID),
		amm.NewClient(gw, cfg.AMMNodeIndexID),
		price.WithRegistry(tokens),
		price.WithMetrics(m),
		price.WithDirectChatPolicy(cfg.PriceDirectChats),
	)

	return &app{
		store:    store,
		prices:   prices,
		faqs:     faq.NewService(store, cfg.FAQDirectChats),
		metrics:  m,
		registry: reg,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("failed to close storage", "error", err)
	}
}

func loadRegistry(path string) (*price.Registry, error) {
	if path == "" {
		return price.DefaultRegistry()
	}
	slog.Info("loading token registry", "path", path)
	return price.LoadRegistryFile(path)
}
