package connector

import (
	"fmt"
	"sync"

	"github.com/deskbridge/deskbridge/internal/config"
)

// Registry is the process-wide connector registry: populated once at
// startup from the connector catalog, read-only afterward. Lookups fail
// closed.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]*Connector
}

// NewRegistry builds a Registry from a loaded connector catalog.
func NewRegistry(catalog config.ConnectorCatalog, metrics *MetricsCollector) (*Registry, error) {
	r := &Registry{connectors: make(map[string]*Connector, len(catalog.Connectors))}
	for _, spec := range catalog.Connectors {
		c, err := New(spec, metrics)
		if err != nil {
			return nil, fmt.Errorf("registering connector %q: %w", spec.Name, err)
		}
		r.connectors[spec.Name] = c
	}
	return r, nil
}

// Get retrieves a connector by name. Lookups fail closed: an unknown name
// is always an error, never a nil connector.
func (r *Registry) Get(name string) (*Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connectors[name]
	if !ok {
		names := r.listLocked()
		return nil, fmt.Errorf("connector not found: %s (available: %v)", name, names)
	}
	return c, nil
}

// List returns the names of all registered connectors.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered connectors, used by the health
// endpoint's connectors_active field.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connectors)
}
