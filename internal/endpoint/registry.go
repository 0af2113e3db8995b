package endpoint

import (
	"fmt"
	"sort"
	"sync"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// Registry holds the endpoints available to a test suite.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]Endpoint)}
}

// Register adds an endpoint under its name.
func (r *Registry) Register(ep Endpoint) error {
	if ep == nil {
		return citrineerrors.NewValidationError("endpoint", "endpoint is nil", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[ep.Name()]; exists {
		return citrineerrors.NewValidationError("endpoint", fmt.Sprintf("endpoint %q already registered", ep.Name()), nil)
	}
	r.endpoints[ep.Name()] = ep
	return nil
}

// Get retrieves an endpoint by name.
func (r *Registry) Get(name string) (Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[name]
	if !ok {
		return nil, citrineerrors.NewValidationError("endpoint", fmt.Sprintf("no endpoint registered with name %q", name), nil)
	}
	return ep, nil
}

// Names returns the registered endpoint names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
