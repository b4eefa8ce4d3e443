package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup results.
const (
	CacheFresh = "fresh"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	commands         *prometheus.CounterVec
	refreshRuns      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebot_cache_lookups_total",
			Help: "Price cache lookups by result (fresh, stale, miss).",
		}, []string{"result"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebot_upstream_requests_total",
			Help: "Upstream price requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricebot_upstream_request_seconds",
			Help:    "Latency of upstream price requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebot_commands_total",
			Help: "Executed bot commands by bot, command and outcome.",
		}, []string{"bot", "command", "outcome"}),
		refreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebot_refresh_tokens_total",
			Help: "Tokens processed by the refresh worker by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.cacheLookups, m.upstreamRequests, m.upstreamLatency, m.commands, m.refreshRuns)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveUpstream(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(provider, outcome(err)).Inc()
	m.upstreamLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCommand(bot, command string, err error) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(bot, command, outcome(err)).Inc()
}

func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}
	m.refreshRuns.WithLabelValues(outcome(err)).Inc()
}
