// registry.go -- Provider lookup by id.
package oauth

import (
	"fmt"
	"maps"
	"slices"
)

// Registry maps provider ids to their configs.
// Built once at startup; read-only afterwards.
type Registry struct {
	providers map[string]ProviderConfig
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderConfig)}
}

// Register validates p and adds a copy of it to the registry.
func (r *Registry) Register(p ProviderConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.providers[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.ID)
	}
	p.Scopes = slices.Clone(p.Scopes)
	p.ExtraAuthParams = maps.Clone(p.ExtraAuthParams)
	r.providers[p.ID] = p
	return nil
}

// Get returns a provider by id.
func (r *Registry) Get(id string) (ProviderConfig, error) {
	p, ok := r.providers[id]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	return p, nil
}

// IDs returns the registered provider ids, sorted.
func (r *Registry) IDs() []string {
	var ids []string
	for id := range r.providers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
