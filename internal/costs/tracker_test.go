package costs

import (
	"math"
	"testing"
)

var testPricing = map[string]float64{
	"openai/gpt-4o-mini":      0.001,
	"anthropic/claude-opus-4": 0.05,
}

func newTestTracker() *Tracker {
	return NewTracker(testPricing, 0.01, "anthropic/claude-opus-4")
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTrack_MissAccruesBoth(t *testing.T) {
	tr := newTestTracker()
	tr.Track("openai/gpt-4o-mini", 1000, false)

	s := tr.Summary()
	if s.TotalCalls != 1 || s.CacheHits != 0 {
		t.Errorf("expected 1 call 0 hits, got %d/%d", s.TotalCalls, s.CacheHits)
	}
	if !approxEqual(s.ActualCostUSD, 0.001) {
		t.Errorf("expected actual 0.001, got %f", s.ActualCostUSD)
	}
	if !approxEqual(s.BaselineCostUSD, 0.05) {
		t.Errorf("expected baseline 0.05, got %f", s.BaselineCostUSD)
	}
}

func TestTrack_HitAccruesBaselineOnly(t *testing.T) {
	tr := newTestTracker()
	tr.Track("openai/gpt-4o-mini", 1000, true)

	s := tr.Summary()
	if s.CacheHits != 1 {
		t.Errorf("expected 1 hit, got %d", s.CacheHits)
	}
	if s.ActualCostUSD != 0 {
		t.Errorf("cache hit must cost nothing against the actual ledger, got %f", s.ActualCostUSD)
	}
	if !approxEqual(s.BaselineCostUSD, 0.05) {
		t.Errorf("baseline must accrue on hits too, got %f", s.BaselineCostUSD)
	}
}

func TestTrack_UnknownModelUsesDefaultPrice(t *testing.T) {
	tr := newTestTracker()
	tr.Track("mystery/model", 2000, false)

	s := tr.Summary()
	if !approxEqual(s.ActualCostUSD, 0.02) {
		t.Errorf("expected default price applied, got %f", s.ActualCostUSD)
	}
}

func TestSummary_ZeroBaseline(t *testing.T) {
	tr := newTestTracker()
	s := tr.Summary()
	if s.CostReductionPct != 0 {
		t.Errorf("zero-baseline reduction must be 0, got %f", s.CostReductionPct)
	}
}

func TestSummary_ReductionNeverNegative(t *testing.T) {
	// Actual above baseline (an expensive explicit override) clamps to 0.
	tr := NewTracker(testPricing, 0.01, "openai/gpt-4o-mini")
	tr.Track("anthropic/claude-opus-4", 1000, false)

	s := tr.Summary()
	if s.SavingsUSD != 0 {
		t.Errorf("expected savings clamped to 0, got %f", s.SavingsUSD)
	}
	if s.CostReductionPct != 0 {
		t.Errorf("expected reduction clamped to 0, got %f", s.CostReductionPct)
	}
}

func TestSummary_SimpleWorkloadReduction(t *testing.T) {
	// An all-simple workload routed to the cheapest model must beat the
	// high-cost baseline by a wide margin.
	tr := newTestTracker()
	for i := 0; i < 25; i++ {
		tr.Track("openai/gpt-4o-mini", 800, false)
	}

	s := tr.Summary()
	if s.TotalCalls != 25 {
		t.Errorf("expected 25 calls, got %d", s.TotalCalls)
	}
	if s.CostReductionPct <= 80 {
		t.Errorf("expected >80%% reduction for cheap-model workload, got %f%%", s.CostReductionPct)
	}
}

func TestTrack_ReturnsPerCallDeltas(t *testing.T) {
	tr := newTestTracker()

	actual, baseline := tr.Track("openai/gpt-4o-mini", 1000, false)
	if !approxEqual(actual, 0.001) || !approxEqual(baseline, 0.05) {
		t.Errorf("miss deltas = %f/%f, want 0.001/0.05", actual, baseline)
	}

	actual, baseline = tr.Track("openai/gpt-4o-mini", 1000, true)
	if actual != 0 || !approxEqual(baseline, 0.05) {
		t.Errorf("hit deltas = %f/%f, want 0/0.05", actual, baseline)
	}
}

func TestReset(t *testing.T) {
	tr := newTestTracker()
	tr.Track("openai/gpt-4o-mini", 1000, false)
	tr.Track("openai/gpt-4o-mini", 1000, true)

	tr.Reset()

	s := tr.Summary()
	if s.TotalCalls != 0 || s.CacheHits != 0 || s.ActualCostUSD != 0 || s.BaselineCostUSD != 0 {
		t.Errorf("expected zeroed ledger after reset, got %+v", s)
	}
}

func TestTrack_Concurrent(t *testing.T) {
	tr := newTestTracker()
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				tr.Track("openai/gpt-4o-mini", 100, i%2 == 0)
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	s := tr.Summary()
	if s.TotalCalls != 800 {
		t.Errorf("expected 800 calls, got %d", s.TotalCalls)
	}
	if s.CacheHits != 400 {
		t.Errorf("expected 400 hits, got %d", s.CacheHits)
	}
}
