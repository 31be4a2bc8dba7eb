package types

// Result is the value returned to the caller for a dispatched request.
// Cached indicates the payload was replayed from the response cache rather
// than freshly computed; callers rely on it to tell the two apart.
type Result struct {
	TraceID         string    `json:"trace_id"`
	ModelUsed       string    `json:"model_used"`
	LatencyMs       int64     `json:"latency_ms"`
	Response        string    `json:"response"`
	TokensUsed      int       `json:"tokens_used"`
	Cached          bool      `json:"cached"`
	RouteTier       RouteTier `json:"route_level"`
	ComplexityScore float64   `json:"complexity_score"`
}

// Clone returns a shallow copy. Cached results are cloned before being
// handed out so callers never share the stored entry.
func (r *Result) Clone() *Result {
	cp := *r
	return &cp
}
