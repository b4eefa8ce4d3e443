package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/price"
)

type mockSource struct {
	configs []price.ConfigEntry
	prices  []price.Entry
	err     error
}

func (m *mockSource) Configs(_ context.Context) ([]price.ConfigEntry, error) {
	return m.configs, m.err
}

func (m *mockSource) Prices(_ context.Context) ([]price.Entry, error) {
	return m.prices, m.err
}

type mockWriter struct {
	reports []Report
}

func (m *mockWriter) Write(_ context.Context, r Report) error {
	m.reports = append(m.reports, r)
	return nil
}

var exportedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSource() *mockSource {
	name := "OpenChat"
	return &mockSource{
		configs: []price.ConfigEntry{
			{
				Key:    domain.ConfigKey{Kind: domain.KeyGroup, ID: "g1"},
				Config: domain.NewExchangeRateConfig(domain.CryptoAsset("BTC"), domain.FiatAsset("USD")),
			},
			{
				Key:    domain.ConfigKey{Kind: domain.KeyCommunity, ID: "c1"},
				Config: domain.NewAmmTokenConfig("2ouva-viaaa-aaaaq-aaamq-cai"),
			},
		},
		prices: []price.Entry{
			{Key: "2ouva-viaaa-aaaaq-aaamq-cai", Store: domain.PriceStore{Price: 0.2534, ExpiresAt: uint64(exportedAt.Add(time.Minute).UnixNano()), DisplayName: &name}},
			{Key: "BTC/USD[Cryptocurrency/FiatCurrency]", Store: domain.PriceStore{Price: 65432.1, ExpiresAt: uint64(exportedAt.Add(-time.Minute).UnixNano())}},
		},
	}
}

func newTestService(src Source, w SheetWriter) *Service {
	s := NewService(src, w)
	s.now = func() time.Time { return exportedAt }
	return s
}

func TestExportBuildsRows(t *testing.T) {
	w := &mockWriter{}
	if err := newTestService(newSource(), w).Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(w.reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(w.reports))
	}
	r := w.reports[0]

	if !r.GeneratedAt.Equal(exportedAt) {
		t.Errorf("GeneratedAt = %v", r.GeneratedAt)
	}

	xrc := r.Configs[0]
	if xrc.Scope != "group:g1" || xrc.Provider != "xrc" || xrc.Base != "BTC" || xrc.QuoteClass != "FiatCurrency" || xrc.Canister != "" {
		t.Errorf("xrc config row = %+v", xrc)
	}
	amm := r.Configs[1]
	if amm.Kind != "community" || amm.Canister != "2ouva-viaaa-aaaaq-aaamq-cai" || amm.PriceKey != amm.Canister {
		t.Errorf("amm config row = %+v", amm)
	}

	chat := r.Prices[0]
	if !chat.Fresh || chat.DisplayName != "OpenChat" || chat.Formatted != "0.2534" || !chat.Price.Equal(mustDecimal(t, "0.2534")) {
		t.Errorf("chat price row = %+v", chat)
	}
	if r.Prices[1].Fresh {
		t.Error("expired entry reported fresh")
	}
}

func TestExportSourceError(t *testing.T) {
	w := &mockWriter{}
	err := newTestService(&mockSource{err: errors.New("leveldb: closed")}, w).Export(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(w.reports) != 0 {
		t.Error("writer called after a source error")
	}
}

func TestTables(t *testing.T) {
	report, err := newTestService(newSource(), &mockWriter{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	configs := configTable(report.Configs)
	if len(configs) != 3 || len(configs[0]) != 9 || configs[0][0] != "Scope" {
		t.Errorf("config table header = %v", configs[0])
	}

	prices := priceTable(report.Prices)
	if len(prices) != 3 {
		t.Fatalf("price rows = %d, want 3", len(prices))
	}
	if prices[2][2] != "65432.1" {
		t.Errorf("BTC price cell = %v", prices[2][2])
	}
	if prices[1][2] != "0.2534" {
		t.Errorf("CHAT price cell = %v, want exact decimal text", prices[1][2])
	}
	if prices[1][4] != "2026-03-01T12:01:00Z" {
		t.Errorf("expires cell = %v", prices[1][4])
	}

	history := historyRows(report)
	if len(history) != 2 || history[0][0] != "2026-03-01T12:00:00Z" || history[1][1] != "BTC/USD[Cryptocurrency/FiatCurrency]" || history[1][2] != "65432.1" {
		t.Errorf("history = %v", history)
	}
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricebot.xlsx")
	svc := newTestService(newSource(), NewXLSXWriter(path))
	if err := svc.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	configs, err := f.GetRows(configsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", configsSheet, err)
	}
	if len(configs) != 3 || configs[1][0] != "group:g1" {
		t.Errorf("configs sheet = %v", configs)
	}

	prices, err := f.GetRows(pricesSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", pricesSheet, err)
	}
	if len(prices) != 3 || prices[1][0] != "2ouva-viaaa-aaaaq-aaamq-cai" || prices[1][1] != "OpenChat" {
		t.Errorf("prices sheet = %v", prices)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}
