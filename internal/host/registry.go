package host

import "sync"

// Registry is an index-based widget arena: hosts are addressed by a
// small integer handle rather than held by
// direct pointer from the loop fabric, so the fabric and the bus
// LayerResolver can both look a widget up by name without either owning
// a reference the other must outlive.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]int
	hosts  []*Host
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Add registers h under its own Name() and returns its handle.
func (r *Registry) Add(h *Host) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := len(r.hosts)
	r.hosts = append(r.hosts, h)
	r.byName[h.Name()] = idx
	return idx
}

// Get returns the host at handle idx, or nil if out of range or removed.
func (r *Registry) Get(idx int) *Host {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx < 0 || idx >= len(r.hosts) {
		return nil
	}
	return r.hosts[idx]
}

// ByName resolves a widget name to its Host, reporting false when no
// widget is registered under that name.
func (r *Registry) ByName(name string) (*Host, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.hosts[idx], true
}

// Names returns every registered widget name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Remove drops idx from the registry (the slot itself is left nil so
// existing handles held by other components don't silently alias a
// different widget after reuse).
func (r *Registry) Remove(idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.hosts) {
		return
	}
	if h := r.hosts[idx]; h != nil {
		delete(r.byName, h.Name())
	}
	r.hosts[idx] = nil
}
