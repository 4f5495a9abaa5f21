package module

import (
	"sync"

	perr "triagebot/internal/platform/errors"
	phttp "triagebot/internal/platform/net/http"
)

// Registry holds the modules of one server in registration order
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Module
	order []string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{byKey: map[string]Module{}}
}

// Add registers m under m.Name(). Names must be non-empty and unique
func (r *Registry) Add(m Module) error {
	if m == nil {
		return perr.Configf("module is nil")
	}
	name := m.Name()
	if name == "" {
		return perr.Configf("module has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byKey[name]; dup {
		return perr.Conflictf("module %q registered twice", name)
	}
	r.byKey[name] = m
	r.order = append(r.order, name)
	return nil
}

// Get returns the module registered as name
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byKey[name]
	return m, ok
}

// Names lists registered module names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// MountAll mounts every module's routes on router in registration order
func (r *Registry) MountAll(router phttp.Router) {
	r.mu.RLock()
	mods := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		mods = append(mods, r.byKey[name])
	}
	r.mu.RUnlock()
	for _, m := range mods {
		m.MountRoutes(router)
	}
}

// PortsAs looks up name and extracts a T from its ports with PortsOf
func PortsAs[T any](r *Registry, name string) (T, bool) {
	m, ok := r.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	return PortsOf[T](m)
}
