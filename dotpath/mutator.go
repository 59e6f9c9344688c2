package dotpath

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/dmerrors"
)

const (
	opSet   = "set"
	opMerge = "merge"
	opUnset = "unset"
)

// Mutator writes into nested containers by dot path. All operations modify
// root in place.
//
// root must be a map, an ordered map, or a pointer (*any, *map[string]any,
// *[]any, or a pointer to a struct). A bare []any root can be written
// within its bounds but cannot grow or shrink.
type Mutator struct {
	config
	reader *Accessor
}

// NewMutator creates a Mutator.
func NewMutator(opts ...Option) *Mutator {
	cfg := newConfig(opts)
	return &Mutator{config: cfg, reader: &Accessor{config: cfg}}
}

// Set writes value at path, creating missing intermediate containers: a list
// when the next segment is an index, a map otherwise.
//
// With a wildcard path, a *ResultSet value is written entry by entry into the
// parallel positions named by each entry's wildcard captures. Any other value
// is written into every matched element.
func (m *Mutator) Set(root any, path string, value any) error {
	p, err := m.compiler.Compile(path)
	if err != nil {
		return err
	}
	return m.SetPath(root, p, value)
}

// SetPath is Set for a compiled path.
func (m *Mutator) SetPath(root any, p *Path, value any) error {
	if rs, ok := value.(*ResultSet); ok && p.HasWildcard() {
		return m.expand(root, p, rs)
	}
	return m.apply(root, p.raw, opSet, func(node any) (any, error) {
		return m.setIn(node, p.segments, value, 0)
	})
}

// SetSegments writes value at pre-split concrete segments, bypassing the
// compiler cache.
func (m *Mutator) SetSegments(root any, segments []string, value any) error {
	return m.apply(root, Join(segments...), opSet, func(node any) (any, error) {
		return m.setIn(node, segments, value, 0)
	})
}

// expand writes every entry of rs at the target obtained by substituting the
// entry's captures into p's wildcards.
func (m *Mutator) expand(root any, p *Path, rs *ResultSet) error {
	var err error
	rs.Each(func(key string, v any) bool {
		segments := p.Substitute(rs.Captures(key)...)
		err = m.apply(root, p.raw, opSet, func(node any) (any, error) {
			return m.setIn(node, segments, v, 0)
		})
		return err == nil
	})
	return err
}

// Merge combines data into the value at path. Maps merge key by key,
// recursively. Lists merge by index: existing positions are merged, extra
// positions appended, nothing is re-indexed. Anything else replaces the
// existing value. Applying the same Merge twice equals applying it once.
func (m *Mutator) Merge(root any, path string, data any) error {
	p, err := m.compiler.Compile(path)
	if err != nil {
		return err
	}
	targets := []string{p.raw}
	if p.HasWildcard() {
		targets = m.reader.extract(m.unwrapRoot(root), p).Keys()
	}
	for _, target := range targets {
		segments := Split(target)
		existing, _ := m.reader.lookup(m.unwrapRoot(root), segments)
		merged, err := m.merge(existing, data, target)
		if err != nil {
			return err
		}
		err = m.apply(root, target, opMerge, func(node any) (any, error) {
			return m.setIn(node, segments, merged, 0)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Unset removes the value at path. A list element is removed and the
// following elements shift down. Missing keys are ignored, so a wildcard
// Unset skips elements that lack the key.
func (m *Mutator) Unset(root any, path string) error {
	p, err := m.compiler.Compile(path)
	if err != nil {
		return err
	}
	targets := []string{p.raw}
	if p.HasWildcard() {
		targets = m.reader.extract(m.unwrapRoot(root), p).Keys()
		// Later list indices first so earlier removals don't shift them.
		slices.Reverse(targets)
	}
	for _, target := range targets {
		segments := Split(target)
		err := m.apply(root, target, opUnset, func(node any) (any, error) {
			return m.unsetIn(node, segments)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// apply runs fn against the root, storing the result back through pointer roots.
func (m *Mutator) apply(root any, path, op string, fn func(any) (any, error)) error {
	if container.IsNil(root) {
		return &dmerrors.MutationError{Path: path, Operation: op, Message: "root is nil"}
	}
	switch r := root.(type) {
	case *any:
		if *r == nil {
			*r = map[string]any{}
		}
		out, err := fn(*r)
		if err != nil {
			return wrapMutation(err, path, op)
		}
		*r = out
		return nil
	case *[]any:
		out, err := fn(*r)
		if err != nil {
			return wrapMutation(err, path, op)
		}
		s, ok := out.([]any)
		if !ok {
			return &dmerrors.MutationError{Path: path, Operation: op, Message: fmt.Sprintf("root list replaced by %T", out)}
		}
		*r = s
		return nil
	case *map[string]any:
		if *r == nil {
			*r = map[string]any{}
		}
		_, err := fn(*r)
		return wrapMutation(err, path, op)
	case []any:
		out, err := fn(r)
		if err != nil {
			return wrapMutation(err, path, op)
		}
		if s, ok := out.([]any); !ok || len(s) != len(r) {
			return &dmerrors.MutationError{Path: path, Operation: op, Message: "root list cannot change length; pass *[]any"}
		}
		return nil
	}
	if !m.adapters.IsContainer(root) {
		return &dmerrors.MutationError{Path: path, Operation: op, Message: fmt.Sprintf("cannot write into %T", root)}
	}
	_, err := fn(root)
	return wrapMutation(err, path, op)
}

func wrapMutation(err error, path, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*dmerrors.MutationError); ok {
		return err
	}
	return &dmerrors.MutationError{Path: path, Operation: op, Cause: err}
}

func (m *Mutator) unwrapRoot(root any) any {
	switch r := root.(type) {
	case *any:
		if r != nil {
			return *r
		}
	case *[]any:
		if r != nil {
			return *r
		}
	case *map[string]any:
		if r != nil {
			return *r
		}
	}
	return root
}

// setIn writes value below node and returns the node to store back into its parent.
func (m *Mutator) setIn(node any, segments []string, value any, depth int) (any, error) {
	seg := segments[0]
	if !m.adapters.IsContainer(node) {
		return node, fmt.Errorf("cannot descend into %s at segment %d", describe(node), depth)
	}

	if seg == Wildcard {
		entries, ok := m.adapters.ToAssociative(node)
		if !ok {
			return node, nil
		}
		keys := make([]string, 0, entries.Len())
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
		}
		var err error
		for _, key := range keys {
			node, err = m.setIn(node, append([]string{key}, segments[1:]...), value, depth)
			if err != nil {
				return node, err
			}
		}
		return node, nil
	}

	if len(segments) == 1 {
		return m.adapters.SetKey(node, seg, value)
	}

	child, ok := m.adapters.GetKey(node, seg)
	if !ok || container.IsNil(child) {
		if segments[1] == Wildcard {
			// Nothing to fan out over.
			return node, nil
		}
		if zero, typed := container.ElementZero(node, seg); typed {
			child = zero
		} else {
			child = newContainer(segments[1])
		}
	} else if !m.adapters.IsContainer(child) {
		return node, fmt.Errorf("cannot descend into %s at segment %d", describe(child), depth+1)
	}

	addressed, copied := container.Addressable(child)
	updated, err := m.setIn(addressed, segments[1:], value, depth+1)
	if err != nil {
		return node, err
	}
	if copied {
		updated = container.Indirect(updated)
	}
	return m.adapters.SetKey(node, seg, updated)
}

func (m *Mutator) unsetIn(node any, segments []string) (any, error) {
	seg := segments[0]
	if len(segments) == 1 {
		if !m.adapters.HasKey(node, seg) {
			return node, nil
		}
		return m.adapters.DeleteKey(node, seg)
	}
	child, ok := m.adapters.GetKey(node, seg)
	if !ok || !m.adapters.IsContainer(child) {
		return node, nil
	}
	addressed, copied := container.Addressable(child)
	updated, err := m.unsetIn(addressed, segments[1:])
	if err != nil {
		return node, err
	}
	if copied {
		updated = container.Indirect(updated)
	}
	return m.adapters.SetKey(node, seg, updated)
}

// merge returns the result of merging src into dst. dst is modified when it
// is a writable container.
func (m *Mutator) merge(dst, src any, path string) (any, error) {
	if dst == nil || src == nil {
		return deepCopy(src), nil
	}
	dstList, srcList := m.adapters.IsList(dst), m.adapters.IsList(src)
	dstMap := !dstList && m.adapters.IsContainer(dst) && !container.IsStruct(dst)
	srcMap := !srcList && m.adapters.IsContainer(src) && !container.IsStruct(src)

	switch {
	case dstMap && srcMap, dstList && srcList:
		entries, ok := m.adapters.ToAssociative(src)
		if !ok {
			return deepCopy(src), nil
		}
		out := dst
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			existing, _ := m.adapters.GetKey(out, pair.Key)
			merged, err := m.merge(existing, pair.Value, Join(path, pair.Key))
			if err != nil {
				return dst, err
			}
			out, err = m.adapters.SetKey(out, pair.Key, merged)
			if err != nil {
				return dst, &dmerrors.MutationError{Path: Join(path, pair.Key), Operation: opMerge, Cause: err}
			}
		}
		return out, nil
	default:
		return deepCopy(src), nil
	}
}

func newContainer(next string) any {
	if _, ok := container.ParseIndex(next); ok {
		return []any{}
	}
	return map[string]any{}
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

// deepCopy copies decoded-JSON shapes so merged data never aliases the input.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopy(e)
		}
		return out
	case *container.Associative:
		out := container.NewAssociative()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, deepCopy(pair.Value))
		}
		return out
	default:
		return v
	}
}

var defaultMutator = NewMutator()

// Set writes value at path with the default mutator.
func Set(root any, path string, value any) error {
	return defaultMutator.Set(root, path, value)
}

// Merge merges data at path with the default mutator.
func Merge(root any, path string, data any) error {
	return defaultMutator.Merge(root, path, data)
}

// Unset removes path with the default mutator.
func Unset(root any, path string) error {
	return defaultMutator.Unset(root, path)
}
