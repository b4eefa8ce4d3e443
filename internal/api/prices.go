package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/price"
)

// PriceAdmin is the slice of price.Service behind the admin endpoints.
type PriceAdmin interface {
	Prices(ctx context.Context) ([]price.Entry, error)
	EvictPrice(ctx context.Context, key string) (bool, error)
}

// PriceHandler lists and evicts cached prices.
type PriceHandler struct {
	prices PriceAdmin
	now    func() time.Time
}

func NewPriceHandler(prices PriceAdmin) *PriceHandler {
	return &PriceHandler{prices: prices, now: time.Now}
}

type priceResponse struct {
	Key         string    `json:"key"`
	Price       float64   `json:"price"`
	Formatted   string    `json:"formatted"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Fresh       bool      `json:"fresh"`
	DisplayName *string   `json:"displayName,omitempty"`
}

// ListPrices handles GET /api/v1/prices.
func (h *PriceHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	entries, err := h.prices.Prices(r.Context())
	if err != nil {
		slog.Error("failed to list prices", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := h.now()
	writeJSON(w, http.StatusOK, lo.Map(entries, func(e price.Entry, _ int) priceResponse {
		return priceResponse{
			Key:         e.Key,
			Price:       e.Store.Price,
			Formatted:   domain.FormatPrice(e.Store.Price),
			ExpiresAt:   time.Unix(0, int64(e.Store.ExpiresAt)).UTC(),
			Fresh:       e.Store.FreshAt(now),
			DisplayName: e.Store.DisplayName,
		}
	}))
}

// EvictPrice handles DELETE /api/v1/prices/{key}. Keys contain slashes, so
// the key is the URL-escaped remainder of the path.
func (h *PriceHandler) EvictPrice(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "invalid price key")
		return
	}

	existed, err := h.prices.EvictPrice(r.Context(), key)
	if err != nil {
		slog.Error("failed to evict price", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "price not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
