package providers

import (
	"sync"
	"time"
)

// HealthTracker records dispatch outcomes per provider. It is purely
// observational: routing never consults it, since the router does not
// fail over across providers.
type HealthTracker struct {
	mu     sync.RWMutex
	states map[string]*providerState

	unhealthyThreshold int
}

type providerState struct {
	consecutiveFailures int
	totalSuccesses      int64
	totalFailures       int64
	lastSuccess         time.Time
	lastFailure         time.Time
}

// ProviderHealth is a point-in-time snapshot for one provider.
type ProviderHealth struct {
	Provider            string    `json:"provider"`
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalSuccesses      int64     `json:"total_successes"`
	TotalFailures       int64     `json:"total_failures"`
	LastSuccess         time.Time `json:"last_success,omitzero"`
	LastFailure         time.Time `json:"last_failure,omitzero"`
}

// NewHealthTracker creates a tracker; a provider is reported unhealthy
// after unhealthyThreshold consecutive failures.
func NewHealthTracker(unhealthyThreshold int) *HealthTracker {
	return &HealthTracker{
		states:             make(map[string]*providerState),
		unhealthyThreshold: unhealthyThreshold,
	}
}

func (ht *HealthTracker) getState(provider string) *providerState {
	ht.mu.RLock()
	st, ok := ht.states[provider]
	ht.mu.RUnlock()
	if ok {
		return st
	}

	ht.mu.Lock()
	defer ht.mu.Unlock()
	// Double-check after acquiring write lock
	if st, ok := ht.states[provider]; ok {
		return st
	}
	st = &providerState{}
	ht.states[provider] = st
	return st
}

// RecordSuccess records a successful dispatch for the provider.
func (ht *HealthTracker) RecordSuccess(provider string) {
	st := ht.getState(provider)
	ht.mu.Lock()
	defer ht.mu.Unlock()
	st.consecutiveFailures = 0
	st.totalSuccesses++
	st.lastSuccess = time.Now()
}

// RecordFailure records a failed dispatch for the provider.
func (ht *HealthTracker) RecordFailure(provider string) {
	st := ht.getState(provider)
	ht.mu.Lock()
	defer ht.mu.Unlock()
	st.consecutiveFailures++
	st.totalFailures++
	st.lastFailure = time.Now()
}

// Snapshot returns health for every provider seen so far.
func (ht *HealthTracker) Snapshot() []ProviderHealth {
	ht.mu.RLock()
	defer ht.mu.RUnlock()

	out := make([]ProviderHealth, 0, len(ht.states))
	for name, st := range ht.states {
		out = append(out, ProviderHealth{
			Provider:            name,
			Healthy:             st.consecutiveFailures < ht.unhealthyThreshold,
			ConsecutiveFailures: st.consecutiveFailures,
			TotalSuccesses:      st.totalSuccesses,
			TotalFailures:       st.totalFailures,
			LastSuccess:         st.lastSuccess,
			LastFailure:         st.lastFailure,
		})
	}
	return out
}
