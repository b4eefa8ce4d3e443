package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/pricebot/internal/api"
	"github.com/mtlprog/pricebot/internal/bot"
	"github.com/mtlprog/pricebot/internal/command"
	"github.com/mtlprog/pricebot/internal/config"
	"github.com/mtlprog/pricebot/internal/export"
	"github.com/mtlprog/pricebot/internal/worker"
)

func serveCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the bot HTTP endpoints and background workers",
		Action: func(c *cli.Context) error {
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tokens := a.prices.Registry()
	bots := []*bot.Bot{
		command.NewPriceBot(a.prices, tokens.Selectors(), a.metrics),
		command.NewFAQBot(a.faqs, a.metrics),
	}

	// Start workers
	if cfg.RefreshWorkerInterval > 0 {
		selectors := cfg.RefreshTokens
		if len(selectors) == 0 {
			selectors = tokens.Selectors()
		}
		refreshWorker := worker.NewRefreshWorker(a.prices, tokens, selectors, cfg.RefreshWorkerInterval, a.metrics)
		go refreshWorker.Run(ctx)
	}

	if cfg.ExportWorkerInterval > 0 {
		writer, err := newSheetWriter(ctx, cfg)
		if err != nil {
			return err
		}
		exportWorker := worker.NewExportWorker(export.NewService(a.prices, writer), cfg.ExportWorkerInterval)
		go exportWorker.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, price admin endpoints are unprotected")
	}
	if cfg.BotAPIKey == "" {
		slog.Warn("BOT_API_KEY not set, execute_command endpoints are unprotected")
	}

	// Start HTTP server
	router := api.NewRouter(api.Config{
		BotAPIKey:   cfg.BotAPIKey,
		AdminAPIKey: cfg.AdminAPIKey,
		Gatherer:    a.registry,
	}, bots, a.prices)
	srv := api.NewServer(cfg.HTTPPort, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newSheetWriter picks Google Sheets when credentials are configured and a
// local workbook otherwise.
func newSheetWriter(ctx context.Context, cfg config.Config) (export.SheetWriter, error) {
	if cfg.GoogleCredentialsJSON != "" && cfg.SpreadsheetID != "" {
		return export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentialsJSON)
	}
	slog.Info("exporting to workbook", "path", cfg.ExportXLSXPath)
	return export.NewXLSXWriter(cfg.ExportXLSXPath), nil
}
