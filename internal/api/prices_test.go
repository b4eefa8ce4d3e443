package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/price"
)

type mockPriceAdmin struct {
	entries []price.Entry
	evicted []string
	err     error
}

func (m *mockPriceAdmin) Prices(_ context.Context) ([]price.Entry, error) {
	return m.entries, m.err
}

func (m *mockPriceAdmin) EvictPrice(_ context.Context, key string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for i, e := range m.entries {
		if e.Key == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			m.evicted = append(m.evicted, key)
			return true, nil
		}
	}
	return false, nil
}

const btcKey = "BTC/USD[Cryptocurrency/FiatCurrency]"

func newPriceAdmin() *mockPriceAdmin {
	name := "OpenChat"
	return &mockPriceAdmin{entries: []price.Entry{
		{Key: "2ouva-viaaa-aaaaq-aaamq-cai", Store: domain.PriceStore{Price: 0.25, ExpiresAt: 1, DisplayName: &name}},
		{Key: btcKey, Store: domain.PriceStore{Price: 65000, ExpiresAt: uint64(time.Now().Add(time.Hour).UnixNano())}},
	}}
}

func TestListPrices(t *testing.T) {
	admin := newPriceAdmin()
	router := NewRouter(Config{}, nil, admin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []priceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	if got[0].Fresh || got[0].DisplayName == nil || *got[0].DisplayName != "OpenChat" {
		t.Errorf("first entry = %+v", got[0])
	}
	if !got[1].Fresh || got[1].Formatted != "65,000" {
		t.Errorf("second entry = %+v", got[1])
	}
}

func TestListPricesError(t *testing.T) {
	router := NewRouter(Config{}, nil, &mockPriceAdmin{err: errors.New("db down")})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestEvictPrice(t *testing.T) {
	admin := newPriceAdmin()
	router := NewRouter(Config{}, nil, admin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/prices/BTC%2FUSD%5BCryptocurrency%2FFiatCurrency%5D", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %s)", w.Code, w.Body.String())
	}
	if len(admin.evicted) != 1 || admin.evicted[0] != btcKey {
		t.Errorf("evicted = %v", admin.evicted)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/prices/BTC%2FUSD%5BCryptocurrency%2FFiatCurrency%5D", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second evict status = %d, want 404", w.Code)
	}
}

func TestPriceEndpointsRequireAdminKey(t *testing.T) {
	router := NewRouter(Config{AdminAPIKey: "admin"}, nil, newPriceAdmin())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("list without key: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/prices/2ouva-viaaa-aaaaq-aaamq-cai", nil)
	req.Header.Set("Authorization", "Bearer admin")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("evict with key: status = %d, want 204", w.Code)
	}
}
