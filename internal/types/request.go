package types

import "time"

// DispatchRequest is the canonical internal representation of a request
// handed to the dispatch router by the agent-execution layer. It is
// immutable once built: created per inbound call, discarded after dispatch.
type DispatchRequest struct {
	TraceID string `json:"trace_id"`

	// Request content
	System string `json:"system"`
	User   string `json:"user"`

	// Optional explicit backend override. When both are set the router
	// skips complexity analysis entirely.
	PreferProvider string `json:"provider,omitempty"`
	PreferModel    string `json:"model,omitempty"`

	// Internal tracking
	ReceivedAt time.Time `json:"-"`
}

// HasOverride reports whether the caller pinned both a provider and a model.
func (r *DispatchRequest) HasOverride() bool {
	return r.PreferProvider != "" && r.PreferModel != ""
}
