package ai

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wliublackruvy/agent-based-dev/internal/config"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// Registry maps provider names to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds p under its own name, replacing any previous entry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered as name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dlerrors.ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRegistryFromConfig registers every built-in provider configured in cfg.
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, dlerrors.ErrConfigNil
	}

	reg := NewRegistry()
	reg.Register(NewCodexProvider(cfg.Providers.Codex, nil))
	reg.Register(NewQwenProvider(cfg.Providers.Qwen, nil))
	reg.Register(NewDeepSeekProvider(cfg.Providers.DeepSeek))
	reg.Register(NewGeminiProvider(cfg.Providers.Gemini))

	ollamaProvider, err := NewOllamaProvider(cfg.Providers.Ollama)
	if err != nil {
		return nil, err
	}
	reg.Register(ollamaProvider)

	return reg, nil
}
