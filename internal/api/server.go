package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtlprog/pricebot/internal/bot"
)

// Config holds what the router needs besides the bots.
type Config struct {
	// BotAPIKey guards command execution. Empty disables the check.
	BotAPIKey string
	// AdminAPIKey guards the price cache endpoints. Empty disables the check.
	AdminAPIKey string
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the bot endpoints under /{bot}, the price cache admin
// endpoints under /api/v1 and the operational endpoints.
func NewRouter(cfg Config, bots []*bot.Bot, prices PriceAdmin) http.Handler {
	botHandler := NewBotHandler(bots)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if prices != nil {
		admin := NewPriceHandler(prices)
		r.Route("/api/v1/prices", func(api chi.Router) {
			if cfg.AdminAPIKey != "" {
				api.Use(requireAuth(cfg.AdminAPIKey))
			}
			api.Get("/", admin.ListPrices)
			api.Delete("/*", admin.EvictPrice)
		})
	}

	r.Route("/{bot}", func(br chi.Router) {
		br.Get("/bot_definition", botHandler.GetDefinition)
		if cfg.BotAPIKey != "" {
			br.With(requireAuth(cfg.BotAPIKey)).Post("/execute_command", botHandler.ExecuteCommand)
		} else {
			br.Post("/execute_command", botHandler.ExecuteCommand)
		}
	})

	return r
}

// NewServer wraps handler in an http.Server listening on port.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
