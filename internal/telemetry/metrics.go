package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the relay dispatcher.
type Metrics struct {
	DispatchTotal      *prometheus.CounterVec
	DispatchDurationMs *prometheus.HistogramVec
	TokensTotal        *prometheus.CounterVec
	CostUSDTotal       *prometheus.CounterVec
	RetryTotal         *prometheus.CounterVec
	CacheEventTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_dispatch_total",
			Help: "Total number of dispatches, by outcome.",
		}, []string{"provider", "model", "tier", "cache", "status"}),

		DispatchDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_dispatch_duration_ms",
			Help:    "Dispatch duration in milliseconds (including provider latency).",
			Buckets: []float64{5, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"provider", "model"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_tokens_total",
			Help: "Total tokens consumed by dispatched requests.",
		}, []string{"provider", "model"}),

		CostUSDTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_cost_usd_total",
			Help: "Accumulated spend in USD, actual vs. baseline ledger.",
		}, []string{"ledger"}),

		RetryTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_retry_total",
			Help: "Backend attempts beyond the first, by provider.",
		}, []string{"provider"}),

		CacheEventTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_cache_event_total",
			Help: "Response cache events.",
		}, []string{"event"}),
	}
}

// DispatchLabels holds the label values for recording a dispatch.
type DispatchLabels struct {
	Provider    string
	Model       string
	Tier        string
	CacheHit    bool
	Status      string
	DurationMs  float64
	Tokens      int
	ActualUSD   float64
	BaselineUSD float64
}

// RecordDispatch records metrics for a completed dispatch.
func (m *Metrics) RecordDispatch(labels DispatchLabels) {
	cache := "miss"
	if labels.CacheHit {
		cache = "hit"
	}

	m.DispatchTotal.WithLabelValues(
		labels.Provider, labels.Model, labels.Tier, cache, labels.Status,
	).Inc()

	m.DispatchDurationMs.WithLabelValues(
		labels.Provider, labels.Model,
	).Observe(labels.DurationMs)

	if labels.Tokens > 0 {
		m.TokensTotal.WithLabelValues(
			labels.Provider, labels.Model,
		).Add(float64(labels.Tokens))
	}

	if labels.ActualUSD > 0 {
		m.CostUSDTotal.WithLabelValues("actual").Add(labels.ActualUSD)
	}
	if labels.BaselineUSD > 0 {
		m.CostUSDTotal.WithLabelValues("baseline").Add(labels.BaselineUSD)
	}
}

// RecordRetries records attempts beyond the first for a provider.
func (m *Metrics) RecordRetries(provider string, extraAttempts int) {
	if extraAttempts > 0 {
		m.RetryTotal.WithLabelValues(provider).Add(float64(extraAttempts))
	}
}

// RecordCacheEvent records a response-cache event ("hit", "miss", "store").
func (m *Metrics) RecordCacheEvent(event string) {
	m.CacheEventTotal.WithLabelValues(event).Inc()
}
