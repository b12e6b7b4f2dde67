package news

import (
	"fmt"
	"sort"
)

type Factory func(Config) Adapter

// Registry maps a provider type to the constructor for its adapter.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry knows every provider shipped with this module.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("newsapi", func(cfg Config) Adapter { return NewNewsAPIAdapter(cfg) })
	r.Register("gnews", func(cfg Config) Adapter { return NewGNewsAdapter(cfg) })
	r.Register("finnhub", func(cfg Config) Adapter { return NewFinnHubAdapter(cfg) })
	r.Register("alphavantage", func(cfg Config) Adapter { return NewAlphaVantageAdapter(cfg) })
	return r
}

func (r *Registry) Register(providerType string, factory Factory) {
	r.factories[providerType] = factory
}

func (r *Registry) New(providerType string, cfg Config) (Adapter, error) {
	factory, ok := r.factories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider type %q (known: %v)", providerType, r.Types())
	}
	return factory(cfg), nil
}

func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
