package providers

import (
	"net/http"
	"sync"
	"time"

	"github.com/af-corp/relay/internal/config"
)

// Registry manages provider adapters by name. The set of adapter
// implementations is closed; the name lookup only selects among them.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

func (r *Registry) Register(name string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// ReplaceFrom swaps in the adapter set from another registry without
// copying the mutex.
func (r *Registry) ReplaceFrom(other *Registry) {
	other.mu.RLock()
	adapters := other.adapters
	other.mu.RUnlock()
	r.mu.Lock()
	r.adapters = adapters
	r.mu.Unlock()
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// BuildFromConfig builds provider adapters from the providers config.
// In mock mode every configured provider gets a deterministic offline
// adapter instead of a live one.
func BuildFromConfig(provCfg *config.ProvidersConfig, mockMode bool) *Registry {
	registry := NewRegistry()
	for name, cfg := range provCfg.Providers {
		if mockMode {
			registry.Register(name, NewMockAdapter(name, cfg.DefaultModel))
			continue
		}

		client := &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxConcurrent,
				MaxIdleConnsPerHost: cfg.MaxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var adapter Adapter
		switch cfg.Type {
		case "anthropic":
			adapter = NewAnthropicAdapter(name, cfg, client)
		case "openai":
			adapter = NewOpenAIAdapter(name, cfg, client)
		default:
			// Fall back to OpenAI-compatible for unknown types
			adapter = NewOpenAIAdapter(name, cfg, client)
		}
		registry.Register(name, adapter)
	}
	return registry
}
