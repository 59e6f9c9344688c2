package dotpath

import (
	"github.com/erraggy/dotmap/container"
)

// Option configures an Accessor or Mutator.
type Option func(*config)

type config struct {
	compiler *Compiler
	adapters *container.Registry
}

// WithCompiler uses c instead of the default compiler.
func WithCompiler(c *Compiler) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.compiler = c
		}
	}
}

// WithRegistry uses r to look up container adapters.
func WithRegistry(r *container.Registry) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.adapters = r
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{compiler: defaultCompiler, adapters: container.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Accessor reads values out of nested containers by dot path.
type Accessor struct {
	config
}

// NewAccessor creates an Accessor.
func NewAccessor(opts ...Option) *Accessor {
	return &Accessor{config: newConfig(opts)}
}

// Compiler returns the compiler the accessor uses.
func (a *Accessor) Compiler() *Compiler {
	return a.compiler
}

// Registry returns the adapter registry the accessor uses.
func (a *Accessor) Registry() *container.Registry {
	return a.adapters
}

// Get resolves path against root.
//
// Paths without wildcards return the bare value, or def when any segment is
// missing. Wildcard paths return a *ResultSet keyed by full resolved path,
// even when it holds a single entry, or def when nothing matched. The only
// error is a malformed path.
func (a *Accessor) Get(root any, path string, def any) (any, error) {
	p, err := a.compiler.Compile(path)
	if err != nil {
		return nil, err
	}
	return a.GetPath(root, p, def), nil
}

// GetPath is Get for a compiled path.
func (a *Accessor) GetPath(root any, p *Path, def any) any {
	if !p.HasWildcard() {
		if v, ok := a.lookup(root, p.segments); ok {
			return v
		}
		return def
	}
	rs := a.extract(root, p)
	if rs.Len() == 0 {
		return def
	}
	return rs
}

// GetSegments resolves pre-split segments without going through the
// compiler cache. Callers use it for paths derived from data, which would
// otherwise grow the cache without bound.
func (a *Accessor) GetSegments(root any, segments []string, def any) any {
	p := &Path{raw: Join(segments...), segments: segments}
	for _, s := range segments {
		if s == Wildcard {
			p.wildcards++
		}
	}
	return a.GetPath(root, p, def)
}

// GetAll resolves path and always returns a ResultSet. A non-wildcard hit
// yields one entry keyed by the path itself.
func (a *Accessor) GetAll(root any, path string) (*ResultSet, error) {
	p, err := a.compiler.Compile(path)
	if err != nil {
		return nil, err
	}
	if p.HasWildcard() {
		return a.extract(root, p), nil
	}
	rs := NewResultSet(p)
	if v, ok := a.lookup(root, p.segments); ok {
		rs.Add(p.raw, v)
	}
	return rs, nil
}

// Has reports whether path resolves to at least one value. A present key
// holding nil counts.
func (a *Accessor) Has(root any, path string) bool {
	rs, err := a.GetAll(root, path)
	return err == nil && rs.Len() > 0
}

// Lookup follows concrete segments from root.
func (a *Accessor) Lookup(root any, segments []string) (any, bool) {
	return a.lookup(root, segments)
}

func (a *Accessor) lookup(root any, segments []string) (any, bool) {
	current := root
	for _, seg := range segments {
		if m, ok := current.(map[string]any); ok {
			v, found := m[seg]
			if !found {
				return nil, false
			}
			current = v
			continue
		}
		v, found := a.adapters.GetKey(current, seg)
		if !found {
			return nil, false
		}
		current = v
	}
	return current, true
}

// extract walks p depth first, fanning out at every wildcard. Branches that
// run into a missing key or a non-container are dropped.
func (a *Accessor) extract(root any, p *Path) *ResultSet {
	rs := NewResultSet(p)
	b := &Builder{segments: make([]string, 0, len(p.segments))}
	a.extractInto(rs, root, p.segments, b)
	return rs
}

func (a *Accessor) extractInto(rs *ResultSet, current any, segments []string, b *Builder) {
	if len(segments) == 0 {
		rs.Add(b.String(), current)
		return
	}
	seg := segments[0]
	if seg != Wildcard {
		v, ok := a.adapters.GetKey(current, seg)
		if !ok {
			return
		}
		b.Push(seg)
		a.extractInto(rs, v, segments[1:], b)
		b.Pop()
		return
	}
	entries, ok := a.adapters.ToAssociative(current)
	if !ok {
		return
	}
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		b.Push(pair.Key)
		a.extractInto(rs, pair.Value, segments[1:], b)
		b.Pop()
	}
}

var defaultAccessor = NewAccessor()

// Get resolves path against root with the default accessor.
func Get(root any, path string, def any) (any, error) {
	return defaultAccessor.Get(root, path, def)
}

// GetAll resolves path against root with the default accessor.
func GetAll(root any, path string) (*ResultSet, error) {
	return defaultAccessor.GetAll(root, path)
}

// Has reports whether path resolves against root.
func Has(root any, path string) bool {
	return defaultAccessor.Has(root, path)
}
