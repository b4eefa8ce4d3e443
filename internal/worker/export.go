package worker

import (
	"context"
	"log/slog"
	"time"
)

// Exporter writes a report of the current configs and prices.
type Exporter interface {
	Export(ctx context.Context) error
}

// ExportWorker periodically exports configs and cached prices.
type ExportWorker struct {
	exporter Exporter
	interval time.Duration
}

// NewExportWorker creates a new ExportWorker.
func NewExportWorker(exporter Exporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		interval: interval,
	}
}

func (w *ExportWorker) export(ctx context.Context) {
	if err := w.exporter.Export(ctx); err != nil {
		slog.Error("ExportWorker: export failed", "error", err)
	} else {
		slog.Info("ExportWorker: export completed")
	}
}

// Run starts the export loop. It blocks until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context) {
	slog.Info("ExportWorker: starting", "interval", w.interval)

	w.export(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ExportWorker: shutting down")
			return
		case <-ticker.C:
			w.export(ctx)
		}
	}
}
