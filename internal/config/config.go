package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/pricebot/internal/domain"
	"github.com/mtlprog/pricebot/internal/provider/amm"
	"github.com/mtlprog/pricebot/internal/provider/xrc"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StorageBackend string
	LevelDBPath    string
	DatabaseURL    string
	RedisAddr      string

	GatewayURL            string
	GatewayRetryMax       int
	GatewayRetryBaseDelay time.Duration
	GatewayRateLimit      float64
	XRCCanisterID         string
	AMMNodeIndexID        string

	PriceDirectChats domain.DirectChatPolicy
	FAQDirectChats   domain.DirectChatPolicy
	TokenRegistry    string

	HTTPPort    string
	AdminAPIKey string
	BotAPIKey   string

	RefreshWorkerInterval time.Duration
	RefreshTokens         []string

	ExportWorkerInterval  time.Duration
	SpreadsheetID         string
	GoogleCredentialsJSON string
	ExportXLSXPath        string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		StorageBackend: envOrDefault("STORAGE_BACKEND", "leveldb"),
		LevelDBPath:    envOrDefault("LEVELDB_PATH", "data/pricebot"),
		DatabaseURL:    envOrDefault("DATABASE_URL", ""),
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),

		GatewayURL:            envOrDefault("GATEWAY_URL", "http://localhost:8090"),
		GatewayRetryMax:       envOrDefaultInt("GATEWAY_RETRY_MAX", 5),
		GatewayRetryBaseDelay: envOrDefaultDuration("GATEWAY_RETRY_BASE_DELAY", 1*time.Second),
		GatewayRateLimit:      envOrDefaultFloat("GATEWAY_RATE_LIMIT", 10),
		XRCCanisterID:         envOrDefault("XRC_CANISTER_ID", xrc.DefaultCanisterID),
		AMMNodeIndexID:        envOrDefault("AMM_NODE_INDEX_ID", amm.DefaultNodeIndexID),

		PriceDirectChats: envOrDefaultPolicy("PRICE_DIRECT_CHATS", domain.DirectChatsAllow),
		FAQDirectChats:   envOrDefaultPolicy("FAQ_DIRECT_CHATS", domain.DirectChatsReject),
		TokenRegistry:    envOrDefault("TOKEN_REGISTRY_PATH", ""),

		HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey: envOrDefault("ADMIN_API_KEY", ""),
		BotAPIKey:   envOrDefault("BOT_API_KEY", ""),

		RefreshWorkerInterval: envOrDefaultDuration("REFRESH_WORKER_INTERVAL", 0),
		RefreshTokens:         envList("REFRESH_TOKENS"),

		ExportWorkerInterval:  envOrDefaultDuration("EXPORT_WORKER_INTERVAL", 0),
		SpreadsheetID:         envOrDefault("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		ExportXLSXPath:        envOrDefault("EXPORT_XLSX_PATH", "data/pricebot.xlsx"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid number env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultPolicy(key string, defaultVal domain.DirectChatPolicy) domain.DirectChatPolicy {
	if v := os.Getenv(key); v != "" {
		p, err := domain.ParseDirectChatPolicy(v)
		if err != nil {
			slog.Warn("invalid direct chat policy env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return p
	}
	return defaultVal
}

// envList splits a comma separated variable, dropping blanks.
func envList(key string) []string {
	return lo.FilterMap(strings.Split(os.Getenv(key), ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}
