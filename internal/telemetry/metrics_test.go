package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m.DispatchTotal == nil {
		t.Error("DispatchTotal should not be nil")
	}
	if m.DispatchDurationMs == nil {
		t.Error("DispatchDurationMs should not be nil")
	}
	if m.TokensTotal == nil {
		t.Error("TokensTotal should not be nil")
	}
	if m.CostUSDTotal == nil {
		t.Error("CostUSDTotal should not be nil")
	}
	if m.RetryTotal == nil {
		t.Error("RetryTotal should not be nil")
	}
	if m.CacheEventTotal == nil {
		t.Error("CacheEventTotal should not be nil")
	}
}

// testMetrics builds Metrics against a private registry so tests don't
// pollute the default one.
func testMetrics(t *testing.T) *Metrics {
	t.Helper()
	reg := prometheus.NewRegistry()

	m := &Metrics{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_relay_dispatch_total",
			Help: "Test counter",
		}, []string{"provider", "model", "tier", "cache", "status"}),
		DispatchDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "test_relay_dispatch_duration_ms",
			Help:    "Test histogram",
			Buckets: []float64{100, 500, 1000},
		}, []string{"provider", "model"}),
		TokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_relay_tokens_total",
			Help: "Test counter",
		}, []string{"provider", "model"}),
		CostUSDTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_relay_cost_usd_total",
			Help: "Test counter",
		}, []string{"ledger"}),
		RetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_relay_retry_total",
			Help: "Test counter",
		}, []string{"provider"}),
		CacheEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_relay_cache_event_total",
			Help: "Test counter",
		}, []string{"event"}),
	}
	reg.MustRegister(m.DispatchTotal, m.DispatchDurationMs, m.TokensTotal,
		m.CostUSDTotal, m.RetryTotal, m.CacheEventTotal)
	return m
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to read metric: %v", err)
	}
	return *metric.Counter.Value
}

func TestRecordDispatch(t *testing.T) {
	m := testMetrics(t)

	m.RecordDispatch(DispatchLabels{
		Provider:    "openai",
		Model:       "openai/gpt-4o-mini",
		Tier:        "simple",
		CacheHit:    false,
		Status:      "ok",
		DurationMs:  150,
		Tokens:      80,
		ActualUSD:   0.0001,
		BaselineUSD: 0.004,
	})

	counter, err := m.DispatchTotal.GetMetricWithLabelValues("openai", "openai/gpt-4o-mini", "simple", "miss", "ok")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	if got := counterValue(t, counter); got != 1 {
		t.Errorf("expected dispatch count 1, got %v", got)
	}

	tokens, _ := m.TokensTotal.GetMetricWithLabelValues("openai", "openai/gpt-4o-mini")
	if got := counterValue(t, tokens); got != 80 {
		t.Errorf("expected 80 tokens, got %v", got)
	}

	actual, _ := m.CostUSDTotal.GetMetricWithLabelValues("actual")
	if got := counterValue(t, actual); got != 0.0001 {
		t.Errorf("expected actual cost 0.0001, got %v", got)
	}
	baseline, _ := m.CostUSDTotal.GetMetricWithLabelValues("baseline")
	if got := counterValue(t, baseline); got != 0.004 {
		t.Errorf("expected baseline cost 0.004, got %v", got)
	}
}

func TestRecordDispatch_CacheHitLabel(t *testing.T) {
	m := testMetrics(t)

	m.RecordDispatch(DispatchLabels{
		Provider: "anthropic",
		Model:    "anthropic/claude-opus-4",
		Tier:     "complex",
		CacheHit: true,
		Status:   "ok",
	})

	counter, _ := m.DispatchTotal.GetMetricWithLabelValues("anthropic", "anthropic/claude-opus-4", "complex", "hit", "ok")
	if got := counterValue(t, counter); got != 1 {
		t.Errorf("expected hit-labeled dispatch count 1, got %v", got)
	}
}

func TestRecordRetries(t *testing.T) {
	m := testMetrics(t)

	m.RecordRetries("openai", 0) // no-op
	m.RecordRetries("openai", 2)

	counter, _ := m.RetryTotal.GetMetricWithLabelValues("openai")
	if got := counterValue(t, counter); got != 2 {
		t.Errorf("expected 2 retries, got %v", got)
	}
}

func TestRecordCacheEvent(t *testing.T) {
	m := testMetrics(t)

	m.RecordCacheEvent("hit")
	m.RecordCacheEvent("hit")
	m.RecordCacheEvent("store")

	hit, _ := m.CacheEventTotal.GetMetricWithLabelValues("hit")
	if got := counterValue(t, hit); got != 2 {
		t.Errorf("expected 2 hit events, got %v", got)
	}
	store, _ := m.CacheEventTotal.GetMetricWithLabelValues("store")
	if got := counterValue(t, store); got != 1 {
		t.Errorf("expected 1 store event, got %v", got)
	}
}
