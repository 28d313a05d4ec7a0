// Package sites contains the per-source search adapters. Each adapter knows
// how to drive a browser session against one candidate source and return raw,
// unvalidated profiles.
package sites

import (
	"context"

	"github.com/jonathan/talent-scout/internal/browser"
	"github.com/jonathan/talent-scout/internal/types"
)

// Adapter searches one source for candidate profiles. Search returns at most
// limit profiles; it must respect ctx cancellation between page loads.
type Adapter interface {
	// Name is the lowercase source identifier used in plans and stored
	// profiles (e.g. "linkedin").
	Name() string
	// Search runs a candidate search over the given browser session.
	Search(ctx context.Context, session *browser.Session, params *types.SearchParameters, limit int) ([]types.RawProfile, error)
}

// Registry maps source names to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry over the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Get returns the adapter for a source name, or nil when unknown.
func (r *Registry) Get(name string) Adapter {
	return r.adapters[name]
}

// Names returns the registered source names in unspecified order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
