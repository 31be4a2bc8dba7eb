// Package dispatch routes each request to a backend provider and model,
// reusing cached answers, retrying transient failures inside the chosen
// adapter, and keeping the spend ledger current.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/af-corp/relay/internal/cache"
	"github.com/af-corp/relay/internal/complexity"
	"github.com/af-corp/relay/internal/config"
	"github.com/af-corp/relay/internal/costs"
	"github.com/af-corp/relay/internal/providers"
	"github.com/af-corp/relay/internal/telemetry"
	"github.com/af-corp/relay/internal/types"
)

// Service is the per-process dispatch router. Constructed once at startup
// and shared by all callers; the cache and the cost tracker are its only
// shared mutable state, each behind its own lock, and no operation ever
// holds both at once.
type Service struct {
	registry *providers.Registry
	health   *providers.HealthTracker
	store    cache.Store // nil when caching is disabled
	costs    *costs.Tracker
	routing  func() *config.RoutingConfig
	policy   providers.RetryPolicy
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

func NewService(
	registry *providers.Registry,
	health *providers.HealthTracker,
	store cache.Store,
	tracker *costs.Tracker,
	routing func() *config.RoutingConfig,
	policy providers.RetryPolicy,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		registry: registry,
		health:   health,
		store:    store,
		costs:    tracker,
		routing:  routing,
		policy:   policy,
		metrics:  metrics,
		logger:   logger,
	}
}

// Decision is the derived routing choice for one request. Computed fresh
// per call, never persisted.
type Decision struct {
	Provider string
	Model    string
	Tier     types.RouteTier
	Score    float64
}

// Decide picks the provider and model for a request. An explicit override
// short-circuits the analyzer; otherwise the complexity tier indexes the
// static routing table.
func (s *Service) Decide(req *types.DispatchRequest) (Decision, error) {
	if req.HasOverride() {
		model, err := providers.NormalizeModel(req.PreferProvider, req.PreferModel)
		if err != nil {
			return Decision{}, err
		}
		return Decision{
			Provider: req.PreferProvider,
			Model:    model,
			Tier:     types.TierExplicit,
			Score:    1.0,
		}, nil
	}

	tier, score := complexity.Score(req.User)
	target, ok := s.routing().TargetFor(tier)
	if !ok {
		return Decision{}, &providers.DispatchError{
			Kind:    providers.KindConfig,
			Message: "no route configured for tier " + string(tier),
		}
	}
	model, err := providers.NormalizeModel(target.Provider, target.Model)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Provider: target.Provider,
		Model:    model,
		Tier:     tier,
		Score:    score,
	}, nil
}

// Dispatch handles one request end to end. Failures are never cached, and
// the service never fails over to a different provider: retries happen
// only inside the chosen adapter's own policy.
func (s *Service) Dispatch(ctx context.Context, req *types.DispatchRequest) (*types.Result, error) {
	start := time.Now()

	decision, err := s.Decide(req)
	if err != nil {
		return nil, err
	}

	adapter, ok := s.registry.Get(decision.Provider)
	if !ok {
		return nil, &providers.DispatchError{
			Kind:     providers.KindUnsupportedProvider,
			Provider: decision.Provider,
			Message:  "no adapter registered for provider " + decision.Provider,
		}
	}

	var key string
	if s.store != nil {
		key = cache.MakeKey(decision.Provider, decision.Model, req.System, req.User)
		if res, ok := s.store.Get(ctx, key); ok {
			return s.finishHit(req, decision, res, start), nil
		}
		s.recordCacheEvent("miss")
	}

	inv := &providers.Invocation{
		Model:   decision.Model,
		System:  req.System,
		User:    req.User,
		TraceID: req.TraceID,
	}
	completion, latencyMs, err := providers.Execute(ctx, adapter, inv, s.policy)
	if err != nil {
		if s.health != nil {
			s.health.RecordFailure(decision.Provider)
		}
		s.recordFailure(req, decision, err, start)
		return nil, err
	}
	if s.health != nil {
		s.health.RecordSuccess(decision.Provider)
	}

	res := &types.Result{
		TraceID:         req.TraceID,
		ModelUsed:       decision.Model,
		LatencyMs:       latencyMs,
		Response:        completion.Text,
		TokensUsed:      completion.Tokens,
		Cached:          false,
		RouteTier:       decision.Tier,
		ComplexityScore: decision.Score,
	}

	actualUSD, baselineUSD := s.costs.Track(decision.Model, res.TokensUsed, false)

	if s.store != nil {
		s.store.Put(ctx, key, res)
		s.recordCacheEvent("store")
	}

	s.logDispatch(req, decision, res, actualUSD, start)
	if s.metrics != nil {
		s.metrics.RecordDispatch(telemetry.DispatchLabels{
			Provider:    decision.Provider,
			Model:       decision.Model,
			Tier:        string(decision.Tier),
			CacheHit:    false,
			Status:      "ok",
			DurationMs:  float64(time.Since(start).Milliseconds()),
			Tokens:      res.TokensUsed,
			ActualUSD:   actualUSD,
			BaselineUSD: baselineUSD,
		})
	}
	return res, nil
}

// finishHit annotates a cached result for the current request. The stored
// payload's trace id belongs to a different logical request, so the
// caller's id replaces it.
func (s *Service) finishHit(req *types.DispatchRequest, decision Decision, res *types.Result, start time.Time) *types.Result {
	if req.TraceID != "" {
		res.TraceID = req.TraceID
	}
	res.RouteTier = decision.Tier
	res.ComplexityScore = decision.Score

	_, baselineUSD := s.costs.Track(decision.Model, res.TokensUsed, true)

	s.recordCacheEvent("hit")
	s.logDispatch(req, decision, res, 0, start)
	if s.metrics != nil {
		s.metrics.RecordDispatch(telemetry.DispatchLabels{
			Provider:    decision.Provider,
			Model:       decision.Model,
			Tier:        string(decision.Tier),
			CacheHit:    true,
			Status:      "ok",
			DurationMs:  float64(time.Since(start).Milliseconds()),
			Tokens:      res.TokensUsed,
			BaselineUSD: baselineUSD,
		})
	}
	return res
}

func (s *Service) recordFailure(req *types.DispatchRequest, decision Decision, err error, start time.Time) {
	s.logger.Error("dispatch failed",
		"trace_id", req.TraceID,
		"provider", decision.Provider,
		"model", decision.Model,
		"tier", string(decision.Tier),
		"error", err,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.metrics != nil {
		s.metrics.RecordDispatch(telemetry.DispatchLabels{
			Provider:   decision.Provider,
			Model:      decision.Model,
			Tier:       string(decision.Tier),
			Status:     "error",
			DurationMs: float64(time.Since(start).Milliseconds()),
		})
		if de, ok := err.(*providers.DispatchError); ok {
			s.metrics.RecordRetries(decision.Provider, de.Attempts-1)
		}
	}
}

func (s *Service) logDispatch(req *types.DispatchRequest, decision Decision, res *types.Result, actualUSD float64, start time.Time) {
	s.logger.Info("dispatch completed",
		"trace_id", res.TraceID,
		"provider", decision.Provider,
		"model", res.ModelUsed,
		"tier", string(decision.Tier),
		"complexity_score", decision.Score,
		"cached", res.Cached,
		"tokens", res.TokensUsed,
		"latency_ms", res.LatencyMs,
		"actual_cost_usd", actualUSD,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Service) recordCacheEvent(event string) {
	if s.metrics != nil {
		s.metrics.RecordCacheEvent(event)
	}
}
