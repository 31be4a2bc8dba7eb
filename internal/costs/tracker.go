// Package costs keeps the process-wide spend ledger: actual cost of
// dispatched calls versus the hypothetical cost of serving every call,
// cache hits included, with one fixed high-cost reference model.
package costs

import "sync"

// DefaultPricing is USD per 1,000 tokens by fully-qualified model id.
// Deployments override it via the routing config's pricing table.
var DefaultPricing = map[string]float64{
	"openai/gpt-4o":            0.0125,
	"openai/gpt-4o-mini":       0.00075,
	"anthropic/claude-opus-4":  0.045,
	"anthropic/claude-sonnet-4": 0.009,
	"anthropic/claude-haiku-3": 0.002,
}

// Summary is the aggregate ledger state exposed to operators.
type Summary struct {
	TotalCalls       int64   `json:"total_calls"`
	CacheHits        int64   `json:"cache_hits"`
	ActualCostUSD    float64 `json:"actual_cost_usd"`
	BaselineCostUSD  float64 `json:"baseline_cost_usd"`
	SavingsUSD       float64 `json:"savings_usd"`
	CostReductionPct float64 `json:"cost_reduction_pct"`
}

// Tracker accumulates spend for the life of the process. All mutation is
// under one lock; there is no reset except the explicit operator Reset.
type Tracker struct {
	mu          sync.Mutex
	totalCalls  int64
	cacheHits   int64
	actualUSD   float64
	baselineUSD float64

	pricing       map[string]float64
	defaultPrice  float64
	baselineModel string
}

// NewTracker builds a tracker. A nil pricing map falls back to
// DefaultPricing; unknown models cost defaultPrice per 1k tokens, a
// conservative figure so unrecognized models never look free.
func NewTracker(pricing map[string]float64, defaultPrice float64, baselineModel string) *Tracker {
	if pricing == nil {
		pricing = DefaultPricing
	}
	return &Tracker{
		pricing:       pricing,
		defaultPrice:  defaultPrice,
		baselineModel: baselineModel,
	}
}

// Track records one dispatched call and returns the per-call deltas.
// Baseline cost accrues on every call as if the reference model had served
// it; actual cost accrues only on cache misses, since a hit made no
// backend call.
func (t *Tracker) Track(modelUsed string, tokens int, cacheHit bool) (actualUSD, baselineUSD float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalCalls++
	baselineUSD = t.priceFor(t.baselineModel) * float64(tokens) / 1000
	t.baselineUSD += baselineUSD

	if cacheHit {
		t.cacheHits++
		return 0, baselineUSD
	}
	actualUSD = t.priceFor(modelUsed) * float64(tokens) / 1000
	t.actualUSD += actualUSD
	return actualUSD, baselineUSD
}

func (t *Tracker) priceFor(model string) float64 {
	if price, ok := t.pricing[model]; ok {
		return price
	}
	return t.defaultPrice
}

// Summary returns the current ledger totals.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	savings := t.baselineUSD - t.actualUSD
	if savings < 0 {
		savings = 0
	}
	pct := 0.0
	if t.baselineUSD > 0 {
		pct = savings / t.baselineUSD * 100
	}

	return Summary{
		TotalCalls:       t.totalCalls,
		CacheHits:        t.cacheHits,
		ActualCostUSD:    t.actualUSD,
		BaselineCostUSD:  t.baselineUSD,
		SavingsUSD:       savings,
		CostReductionPct: pct,
	}
}

// Reset zeroes the ledger. Operator action only.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalCalls = 0
	t.cacheHits = 0
	t.actualUSD = 0
	t.baselineUSD = 0
}
