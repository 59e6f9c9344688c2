package mapper

import (
	"slices"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
	"github.com/erraggy/dotmap/filter"
)

// binding is a wildcard bound by an enclosing block to one element key.
type binding struct {
	// pattern is the source path up to and including the bound wildcard.
	pattern []string
	key     string
}

// scope is the expression environment of one leaf or directive field.
type scope struct {
	p        *pass
	bindings []binding
	// node is the target path of the enclosing map, aliases resolve
	// relative to it first.
	node []string
	path []string
	key  string
	// value is the last primary resolved, handed to filters as Params.Value.
	value any
}

var _ expr.Env = (*scope)(nil)

// with returns a copy of s with pattern bound to key.
func (s scope) with(pattern []string, key string) scope {
	s.bindings = append(slices.Clip(s.bindings), binding{pattern: pattern, key: key})
	return s
}

// bound reports whether pattern is already bound.
func (s *scope) bound(pattern []string) bool {
	for _, b := range s.bindings {
		if slices.Equal(b.pattern, pattern) {
			return true
		}
	}
	return false
}

// bind substitutes the keys of active bindings for their wildcards.
func (s *scope) bind(segments []string) []string {
	var out []string
	for _, b := range s.bindings {
		n := len(b.pattern)
		if len(segments) < n || !slices.Equal(segments[:n], b.pattern) {
			continue
		}
		if out == nil {
			out = slices.Clone(segments)
		}
		out[n-1] = b.key
	}
	if out == nil {
		return segments
	}
	return out
}

// Resolve implements expr.Env.
func (s *scope) Resolve(path *dotpath.Path) (any, error) {
	v := s.p.m.accessor.GetSegments(s.p.source, s.bind(path.Segments()), nil)
	s.value = v
	return v, nil
}

// ResolveAlias implements expr.Env. Names resolve against the enclosing
// map node first, then from the target root. Only values written earlier
// in this pass are visible; whatever the target held before is not.
func (s *scope) ResolveAlias(name string) (any, error) {
	segments := dotpath.Split(name)
	candidates := [][]string{segments}
	if len(s.node) > 0 {
		candidates = [][]string{append(slices.Clip(s.node), segments...), segments}
	}
	root := s.p.target()
	for _, path := range candidates {
		if !s.p.wasWritten(path) {
			continue
		}
		if v, ok := s.p.m.accessor.Lookup(root, path); ok {
			s.value = v
			return v, nil
		}
	}
	return nil, &dmerrors.AliasError{Alias: name, Path: dotpath.Join(s.path...)}
}

// ApplyFilter implements expr.Env.
func (s *scope) ApplyFilter(name string, value any, args []any) (any, error) {
	return s.p.m.cfg.filters.Apply(name, value, &filter.Params{
		Source:   s.p.source,
		Template: s.p.tpl,
		Target:   s.p.target(),
		Key:      s.key,
		Path:     dotpath.Join(s.path...),
		Value:    s.value,
		Args:     args,
	})
}
