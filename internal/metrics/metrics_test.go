package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCacheLookup(CacheFresh)
	m.ObserveCacheLookup(CacheFresh)
	m.ObserveCacheLookup(CacheMiss)
	m.ObserveUpstream("xrc", 20*time.Millisecond, nil)
	m.ObserveUpstream("xrc", 30*time.Millisecond, errors.New("rate limited"))
	m.ObserveCommand("price", "price_of", nil)
	m.ObserveRefresh(errors.New("boom"))

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheFresh)); got != 2 {
		t.Errorf("fresh lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)); got != 1 {
		t.Errorf("miss lookups = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("xrc", "error")); got != 1 {
		t.Errorf("xrc errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("xrc", "ok")); got != 1 {
		t.Errorf("xrc ok = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.upstreamLatency); got != 1 {
		t.Errorf("latency series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.commands.WithLabelValues("price", "price_of", "ok")); got != 1 {
		t.Errorf("commands = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.refreshRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("refresh errors = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCacheLookup(CacheStale)
	m.ObserveUpstream("icpswap", time.Second, nil)
	m.ObserveCommand("faq", "FAQs", nil)
	m.ObserveRefresh(nil)
}

func TestRegisterTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(reg)
}
