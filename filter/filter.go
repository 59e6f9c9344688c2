package filter

import (
	"errors"
	"slices"
	"sync"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/hook"
)

// Params describes where a filter is running. Filters that only transform
// their input can ignore everything but Args.
type Params struct {
	// Source is the source root of the mapping.
	Source any
	// Template is the template being applied.
	Template any
	// Target is the target root being built.
	Target any
	// Key is the target key of the leaf being resolved.
	Key string
	// Path is the full target path of the leaf being resolved.
	Path string
	// Value is the value the expression resolved to before any filter ran.
	Value any
	// Args are the filter arguments as written after the name.
	Args []any
}

// Arg returns the i-th argument.
func (p *Params) Arg(i int) (any, bool) {
	if p == nil || i < 0 || i >= len(p.Args) {
		return nil, false
	}
	return p.Args[i], true
}

// StringArg returns the i-th argument as a string, or def when absent.
func (p *Params) StringArg(i int, def string) string {
	v, ok := p.Arg(i)
	if !ok || v == nil {
		return def
	}
	return cast.ToString(v)
}

// IntArg returns the i-th argument as an int, or def when absent.
func (p *Params) IntArg(i int, def int) (int, error) {
	v, ok := p.Arg(i)
	if !ok || v == nil {
		return def, nil
	}
	return cast.ToIntE(v)
}

// Func transforms a value.
type Func func(value any, p *Params) (any, error)

// Filter is a named transformation usable in expressions.
type Filter struct {
	// Name is the primary lookup name.
	Name string
	// Aliases are extra lookup names.
	Aliases []string
	// Phases lists the hook phases in which the filter may also run as a
	// hook. Empty means expression-only.
	Phases []hook.Phase
	// Collection filters receive wildcard results as one list. Other
	// filters run once per element.
	Collection bool
	// Fn performs the transformation.
	Fn Func
}

// SupportsPhase reports whether f may run as a hook in phase.
func (f *Filter) SupportsPhase(phase hook.Phase) bool {
	return slices.Contains(f.Phases, phase)
}

// Apply runs f over value. A *dotpath.ResultSet is handed over as a list of
// its values to collection filters and transformed entry by entry otherwise.
func (f *Filter) Apply(value any, p *Params) (any, error) {
	if p == nil {
		p = &Params{}
	}
	if rs, ok := value.(*dotpath.ResultSet); ok {
		if !f.Collection {
			return rs.Transform(func(_ string, v any) (any, error) {
				return f.call(v, p)
			})
		}
		value = rs.Values()
	}
	return f.call(value, p)
}

func (f *Filter) call(value any, p *Params) (any, error) {
	out, err := f.Fn(value, p)
	if err != nil {
		var fe *dmerrors.FilterError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &dmerrors.FilterError{Name: f.Name, Path: p.Path, Cause: err}
	}
	return out, nil
}

// Registry maps filter names to filters. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	filters map[string]*Filter
	strict  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	strict   bool
	builtins bool
}

// WithStrict makes Register reject names that are already taken.
// By default a new registration overrides the existing one.
func WithStrict() RegistryOption {
	return func(cfg *registryConfig) {
		cfg.strict = true
	}
}

// WithoutBuiltins creates a registry with no filters registered.
func WithoutBuiltins() RegistryOption {
	return func(cfg *registryConfig) {
		cfg.builtins = false
	}
}

// NewRegistry creates a registry holding the built-in filters.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{builtins: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Registry{filters: make(map[string]*Filter)}
	if cfg.builtins {
		for _, f := range Builtins() {
			// Built-in names are unique.
			_ = r.Register(f)
		}
	}
	r.strict = cfg.strict
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of built-in filters. Registering into
// it affects every mapper that uses the default.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register adds f under its name and aliases.
func (r *Registry) Register(f Filter) error {
	if f.Name == "" {
		return &dmerrors.ConfigError{Option: "filter", Message: "filter name is empty"}
	}
	if f.Fn == nil {
		return &dmerrors.ConfigError{Option: "filter", Value: f.Name, Message: "filter function is nil"}
	}

	names := append([]string{f.Name}, f.Aliases...)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.strict {
		for _, name := range names {
			if _, exists := r.filters[name]; exists {
				return &dmerrors.ConfigError{
					Option:  "filter",
					Value:   name,
					Message: "a filter with this name is already registered",
				}
			}
		}
	}
	stored := f
	for _, name := range names {
		r.filters[name] = &stored
	}
	return nil
}

// RegisterFunc registers an expression-only, per-element filter.
func (r *Registry) RegisterFunc(name string, fn Func) error {
	return r.Register(Filter{Name: name, Fn: fn})
}

// Lookup returns the filter registered under name.
func (r *Registry) Lookup(name string) (*Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[name]
	return f, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered name, aliases included, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{filters: make(map[string]*Filter, len(r.filters)), strict: r.strict}
	for name, f := range r.filters {
		out.filters[name] = f
	}
	return out
}

// Apply runs the filter registered under name. Unknown names return a
// *dmerrors.FilterError matching dmerrors.ErrUnknownFilter.
func (r *Registry) Apply(name string, value any, p *Params) (any, error) {
	f, ok := r.Lookup(name)
	if !ok {
		path := ""
		if p != nil {
			path = p.Path
		}
		return nil, &dmerrors.FilterError{Name: name, Unknown: true, Path: path}
	}
	return f.Apply(value, p)
}
