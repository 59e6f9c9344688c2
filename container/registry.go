package container

import (
	"fmt"
	"sync"
)

// Registry picks the adapter for a value. Custom adapters registered with
// Register are consulted first, in registration order, followed by the
// built-in adapters and finally reflection.
type Registry struct {
	mu      sync.RWMutex
	custom  []Adapter
	builtin []Adapter
}

// NewRegistry returns a registry holding the built-in adapters plus custom.
func NewRegistry(custom ...Adapter) *Registry {
	r := &Registry{
		builtin: []Adapter{
			MapAdapter{},
			SliceAdapter{},
			OrderedAdapter{},
			AccessibleAdapter{},
			EntityAdapter{},
			CollectionAdapter{},
			ReflectAdapter{},
		},
	}
	r.custom = append(r.custom, custom...)
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used when no adapters are configured.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a custom adapter ranked ahead of the built-ins.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	r.custom = append(r.custom, a)
	r.mu.Unlock()
}

// With returns a copy of r with extra custom adapters ranked ahead of r's own.
func (r *Registry) With(adapters ...Adapter) *Registry {
	if len(adapters) == 0 {
		return r
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{builtin: r.builtin}
	out.custom = append(append(out.custom, adapters...), r.custom...)
	return out
}

// Lookup returns the first adapter supporting v.
func (r *Registry) Lookup(v any) (Adapter, bool) {
	if v == nil {
		return nil, false
	}
	r.mu.RLock()
	for _, a := range r.custom {
		if a.Supports(v) {
			r.mu.RUnlock()
			return a, true
		}
	}
	r.mu.RUnlock()

	// Fast paths for the common decoded-JSON shapes.
	switch v.(type) {
	case map[string]any:
		return MapAdapter{}, true
	case []any:
		return SliceAdapter{}, true
	}
	for _, a := range r.builtin {
		if a.Supports(v) {
			return a, true
		}
	}
	return nil, false
}

// IsContainer reports whether v can be traversed.
func (r *Registry) IsContainer(v any) bool {
	_, ok := r.Lookup(v)
	return ok
}

// HasKey reports whether v is a container holding key.
func (r *Registry) HasKey(v any, key string) bool {
	a, ok := r.Lookup(v)
	return ok && a.HasKey(v, key)
}

// GetKey reads key from v. The boolean is false when v is not a container
// or the key is absent.
func (r *Registry) GetKey(v any, key string) (any, bool) {
	a, ok := r.Lookup(v)
	if !ok {
		return nil, false
	}
	return a.GetKey(v, key)
}

// ToAssociative flattens v into ordered key/value pairs.
func (r *Registry) ToAssociative(v any) (*Associative, bool) {
	a, ok := r.Lookup(v)
	if !ok {
		return nil, false
	}
	return a.ToAssociative(v)
}

// IsList reports whether v is a list-like container (keys are 0..n-1).
func (r *Registry) IsList(v any) bool {
	switch v.(type) {
	case []any:
		return true
	case Collection:
		return true
	case map[string]any, *Associative, Entity, Accessible:
		return false
	}
	a, ok := r.Lookup(v)
	if !ok {
		return false
	}
	if _, isReflect := a.(ReflectAdapter); !isReflect {
		return false
	}
	rv, ok := deref(reflectValue(v))
	return ok && isSequenceKind(rv.Kind())
}

// SetKey writes key into v and returns the container to store back.
func (r *Registry) SetKey(v any, key string, value any) (any, error) {
	a, ok := r.Lookup(v)
	if !ok {
		return v, fmt.Errorf("cannot write key %q into %T", key, v)
	}
	w, ok := a.(Writer)
	if !ok {
		return v, fmt.Errorf("%T containers are read-only", v)
	}
	return w.SetKey(v, key, value)
}

// DeleteKey removes key from v and returns the container to store back.
func (r *Registry) DeleteKey(v any, key string) (any, error) {
	a, ok := r.Lookup(v)
	if !ok {
		return v, fmt.Errorf("cannot delete key %q from %T", key, v)
	}
	w, ok := a.(Writer)
	if !ok {
		return v, fmt.Errorf("%T containers are read-only", v)
	}
	return w.DeleteKey(v, key)
}
