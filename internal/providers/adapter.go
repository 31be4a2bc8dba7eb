package providers

import (
	"context"
	"strings"
)

// Invocation is one backend call: a normalized model identifier plus the
// system and user text, tagged with the request's trace id.
type Invocation struct {
	Model   string
	System  string
	User    string
	TraceID string
}

// Completion is the normalized output of a backend call.
type Completion struct {
	Text   string
	Model  string
	Tokens int
}

// Adapter is the uniform interface to one backend family. Implementations
// are stateless apart from their fixed configuration; retries live in
// Execute, not in the adapters.
type Adapter interface {
	Name() string
	DefaultModel() string
	Complete(ctx context.Context, inv *Invocation) (*Completion, error)
}

// NormalizeModel returns the fully-qualified "provider/model" identifier.
// Models already carrying a namespace separator pass through verbatim.
func NormalizeModel(provider, model string) (string, error) {
	provider = strings.TrimSpace(provider)
	model = strings.TrimSpace(model)
	if provider == "" || model == "" {
		return "", newDispatchError(KindConfig, provider, "provider and model must be non-empty")
	}
	if strings.Contains(model, "/") {
		return model, nil
	}
	return provider + "/" + model, nil
}

// BareModel strips the provider namespace for the wire call; backends
// expect their own short model names.
func BareModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}
