package export

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/price"
)

// ConfigRow is one stored scope config, flattened for a sheet.
type ConfigRow struct {
	Scope      string
	Kind       string
	Provider   string
	Base       string
	BaseClass  string
	Quote      string
	QuoteClass string
	Canister   string
	PriceKey   string
}

// PriceRow is one cached price.
type PriceRow struct {
	Key         string
	DisplayName string
	Price       decimal.Decimal
	Formatted   string
	ExpiresAt   time.Time
	Fresh       bool
}

// Report is everything one export writes.
type Report struct {
	GeneratedAt time.Time
	Configs     []ConfigRow
	Prices      []PriceRow
}

// SheetWriter writes a report to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, report Report) error
}

// Source lists the stored configs and cached prices.
type Source interface {
	Configs(ctx context.Context) ([]price.ConfigEntry, error)
	Prices(ctx context.Context) ([]price.Entry, error)
}

// Service builds reports from the store and hands them to a SheetWriter.
type Service struct {
	source Source
	writer SheetWriter
	now    func() time.Time
}

// NewService creates a new export Service.
func NewService(source Source, writer SheetWriter) *Service {
	return &Service{source: source, writer: writer, now: time.Now}
}

// Export builds a report and writes it. Implements worker.Exporter.
func (s *Service) Export(ctx context.Context) error {
	report, err := s.Build(ctx)
	if err != nil {
		return err
	}
	return s.writer.Write(ctx, report)
}

// Build collects the current configs and prices.
func (s *Service) Build(ctx context.Context) (Report, error) {
	configs, err := s.source.Configs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing configs: %w", err)
	}
	prices, err := s.source.Prices(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing prices: %w", err)
	}

	now := s.now().UTC()
	return Report{
		GeneratedAt: now,
		Configs:     lo.Map(configs, func(e price.ConfigEntry, _ int) ConfigRow { return configRow(e) }),
		Prices:      lo.Map(prices, func(e price.Entry, _ int) PriceRow { return priceRow(e, now) }),
	}, nil
}

func configRow(e price.ConfigEntry) ConfigRow {
	row := ConfigRow{
		Scope:    e.Key.String(),
		Kind:     e.Key.Kind.String(),
		Provider: string(e.Config.Provider),
		PriceKey: domain.PriceKey(e.Config),
	}
	switch e.Config.Provider {
	case domain.ProviderExchangeRate:
		base, quote := e.Config.ExchangeRate.BaseAsset, e.Config.ExchangeRate.QuoteAsset
		row.Base, row.BaseClass = base.Symbol, string(base.Class)
		row.Quote, row.QuoteClass = quote.Symbol, string(quote.Class)
	case domain.ProviderAmmToken:
		row.Canister = e.Config.AmmToken.TokenCanisterID
	}
	return row
}

func priceRow(e price.Entry, now time.Time) PriceRow {
	return PriceRow{
		Key:         e.Key,
		DisplayName: e.Store.Name(),
		Price:       decimal.NewFromFloat(e.Store.Price),
		Formatted:   domain.FormatPrice(e.Store.Price),
		ExpiresAt:   time.Unix(0, int64(e.Store.ExpiresAt)).UTC(),
		Fresh:       e.Store.FreshAt(now),
	}
}

const (
	configsSheet = "CONFIGS"
	pricesSheet  = "PRICES"
	historySheet = "HISTORY"
)

// configTable renders the CONFIGS sheet.
// Columns: Scope | Kind | Provider | Base | Base Class | Quote | Quote Class | Canister | Price Key
func configTable(rows []ConfigRow) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, []any{
		"Scope", "Kind", "Provider", "Base", "Base Class",
		"Quote", "Quote Class", "Canister", "Price Key",
	})
	for _, r := range rows {
		data = append(data, []any{
			r.Scope, r.Kind, r.Provider, r.Base, r.BaseClass,
			r.Quote, r.QuoteClass, r.Canister, r.PriceKey,
		})
	}
	return data
}

// priceTable renders the PRICES sheet.
// Columns: Key | Name | Price | Display | Expires At | Fresh
// Price is the exact decimal text; Sheets parses it as a number (USER_ENTERED).
func priceTable(rows []PriceRow) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, []any{"Key", "Name", "Price", "Display", "Expires At", "Fresh"})
	for _, r := range rows {
		data = append(data, []any{
			r.Key, r.DisplayName, r.Price.String(), r.Formatted,
			r.ExpiresAt.Format(time.RFC3339), r.Fresh,
		})
	}
	return data
}

// historyRows renders one HISTORY row per cached price for this run.
// Columns: Exported At | Key | Price
func historyRows(report Report) [][]any {
	at := report.GeneratedAt.Format(time.RFC3339)
	return lo.Map(report.Prices, func(r PriceRow, _ int) []any {
		return []any{at, r.Key, r.Price.String()}
	})
}
