package providers

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter returns a deterministic synthetic response without touching
// any network. Used for tests and for environments without live
// credentials (mock_mode in the dispatch config).
type MockAdapter struct {
	name         string
	defaultModel string
}

func NewMockAdapter(name, defaultModel string) *MockAdapter {
	return &MockAdapter{name: name, defaultModel: defaultModel}
}

func (a *MockAdapter) Name() string { return a.name }

func (a *MockAdapter) DefaultModel() string { return a.defaultModel }

func (a *MockAdapter) Complete(ctx context.Context, inv *Invocation) (*Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := inv.User
	if len(prompt) > 60 {
		prompt = prompt[:60] + "..."
	}

	// Token count is a deterministic function of the input so cost
	// accounting behaves the same across runs.
	tokens := len(strings.Fields(inv.System)) + len(strings.Fields(inv.User)) + 20

	return &Completion{
		Text:   fmt.Sprintf("[mock %s] response to: %s", inv.Model, prompt),
		Model:  inv.Model,
		Tokens: tokens,
	}, nil
}
