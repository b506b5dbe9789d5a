package usecase

import (
	"sort"
	"strings"
	"sync"

	"panchayat-docstore/internal/docstore/domain/repository"
)

// Registry binds collection names to store handles on first use and keeps
// them for the life of the process.
type Registry struct {
	factory repository.StoreFactory

	mu     sync.Mutex
	stores map[string]repository.Store
}

// NewRegistry creates an empty registry over factory.
func NewRegistry(factory repository.StoreFactory) *Registry {
	return &Registry{
		factory: factory,
		stores:  make(map[string]repository.Store),
	}
}

// Store returns the handle bound to name, opening it on first request.
// Concurrent first requests for the same name share one handle.
func (r *Registry) Store(name string) repository.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s
	}
	// the name outlives the request it came from
	name = strings.Clone(name)
	s := r.factory.Open(name)
	r.stores[name] = s
	return s
}

// Names lists every bound collection name in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names
}
