package template

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
	"github.com/erraggy/dotmap/internal/codec"
	"github.com/erraggy/dotmap/query"
)

// WildcardKey holds the sub-template of a block.
const WildcardKey = "*"

// Node is a template node: *Leaf, *Map or *Block.
type Node interface {
	// Value returns the node in the form it was written.
	Value() any
	node()
}

// Leaf is a template value.
type Leaf struct {
	Expr *expr.Expression
}

// Value returns the raw expression string, or the literal value for
// non-string leaves.
func (l *Leaf) Value() any {
	if l.Expr.IsLiteral() {
		return l.Expr.Value()
	}
	return l.Expr.Raw()
}

// Map is an ordered set of target keys.
type Map struct {
	entries *orderedmap.OrderedMap[string, Node]
	list    bool
}

// NewMap returns an empty map node.
func NewMap() *Map {
	return &Map{entries: orderedmap.New[string, Node]()}
}

// Set adds or replaces a child.
func (m *Map) Set(key string, n Node) {
	m.entries.Set(key, n)
}

// Get returns a child.
func (m *Map) Get(key string) (Node, bool) {
	return m.entries.Get(key)
}

// Len returns the number of children.
func (m *Map) Len() int {
	return m.entries.Len()
}

// Keys returns the child keys in declaration order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.entries.Len())
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every child in order until fn returns false.
func (m *Map) Each(fn func(key string, n Node) bool) {
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// IsList reports whether the map was written as a sequence. Its keys are
// then the indices "0", "1", ...
func (m *Map) IsList() bool {
	return m.list
}

// Value returns an ordered map, or a list for sequences.
func (m *Map) Value() any {
	if m.list {
		out := make([]any, 0, m.Len())
		m.Each(func(_ string, n Node) bool {
			out = append(out, n.Value())
			return true
		})
		return out
	}
	out := container.NewAssociative()
	m.Each(func(key string, n Node) bool {
		out.Set(key, n.Value())
		return true
	})
	return out
}

// Block expands its template once per element of a wildcard binding,
// after the directives filter, group and order the elements.
type Block struct {
	// Directives holds the directive entries as written, keyed by their
	// canonical names.
	Directives *container.Associative
	Query      *query.Query
	Template   Node
}

// Value returns the directives followed by the "*" sub-template.
func (b *Block) Value() any {
	out := container.NewAssociative()
	if b.Directives != nil {
		for pair := b.Directives.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, pair.Value)
		}
	}
	out.Set(WildcardKey, b.Template.Value())
	return out
}

func (*Leaf) node()  {}
func (*Map) node()   {}
func (*Block) node() {}

// Template is a parsed mapping template.
type Template struct {
	Root Node
}

// Option configures template construction.
type Option func(*builder)

// WithParser parses leaf expressions with p instead of the default parser.
func WithParser(p *expr.Parser) Option {
	return func(b *builder) {
		if p != nil {
			b.parser = p
		}
	}
}

// WithRegistry reads template containers through r.
func WithRegistry(r *container.Registry) Option {
	return func(b *builder) {
		if r != nil {
			b.registry = r
		}
	}
}

type builder struct {
	parser   *expr.Parser
	registry *container.Registry
}

// New builds a template from a Go value. Maps become map nodes (plain Go
// maps in sorted key order, ordered maps in their own order), sequences
// become map nodes keyed by index and a map with a "*" key becomes a
// block. Strings are parsed as expressions, other scalars are literals.
func New(v any, opts ...Option) (*Template, error) {
	b := &builder{parser: expr.DefaultParser(), registry: container.Default()}
	for _, opt := range opts {
		opt(b)
	}
	root, err := b.build(v, nil)
	if err != nil {
		return nil, err
	}
	return &Template{Root: root}, nil
}

// Must is like New but panics on error.
func Must(v any, opts ...Option) *Template {
	t, err := New(v, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse builds a template from a JSON or YAML document, keeping the
// document's key order.
func Parse(data []byte, opts ...Option) (*Template, error) {
	v, err := codec.Decode(data)
	if err != nil {
		return nil, &dmerrors.TemplateError{Message: "cannot decode template", Cause: err}
	}
	return New(v, opts...)
}

func (b *builder) build(v any, path []string) (Node, error) {
	switch val := v.(type) {
	case Node:
		return val, nil
	case *Template:
		return val.Root, nil
	case string:
		e, err := b.parser.Parse(val)
		if err != nil {
			return nil, &dmerrors.TemplateError{Path: dotpath.Join(path...), Cause: err}
		}
		return &Leaf{Expr: e}, nil
	case map[string]any:
		ordered := container.NewAssociative()
		for _, k := range slices.Sorted(maps.Keys(val)) {
			ordered.Set(k, val[k])
		}
		return b.buildMap(ordered, path)
	}

	if b.registry.IsList(v) {
		items, _ := b.registry.ToAssociative(v)
		m, err := b.buildMap(items, path)
		if err != nil {
			return nil, err
		}
		if mm, ok := m.(*Map); ok {
			mm.list = true
		}
		return m, nil
	}
	if b.registry.IsContainer(v) {
		entries, ok := b.registry.ToAssociative(v)
		if !ok {
			return nil, &dmerrors.TemplateError{Path: dotpath.Join(path...), Message: fmt.Sprintf("unsupported container %T", v)}
		}
		return b.buildMap(entries, path)
	}
	return &Leaf{Expr: expr.NewLiteral(v)}, nil
}

func (b *builder) buildMap(entries *container.Associative, path []string) (Node, error) {
	if entries == nil {
		return NewMap(), nil
	}

	var (
		sub        any
		hasSub     bool
		directives = container.NewAssociative()
		others     []string
	)
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		switch {
		case pair.Key == WildcardKey:
			sub, hasSub = pair.Value, true
		case isDirective(pair.Key):
			directives.Set(query.NormalizeKey(pair.Key), pair.Value)
		default:
			others = append(others, pair.Key)
		}
	}

	if hasSub || directives.Len() > 0 {
		at := dotpath.Join(path...)
		if !hasSub {
			return nil, &dmerrors.TemplateError{Path: at, Message: "directives require a \"*\" sub-template"}
		}
		if len(others) > 0 {
			return nil, &dmerrors.TemplateError{
				Path:    at,
				Message: fmt.Sprintf("a \"*\" block cannot have other keys, found %q", others[0]),
			}
		}
		return b.buildBlock(sub, directives, path)
	}

	m := NewMap()
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		child, err := b.build(pair.Value, append(slices.Clip(path), pair.Key))
		if err != nil {
			return nil, err
		}
		m.Set(pair.Key, child)
	}
	return m, nil
}

// isDirective matches directive keys written in upper case, so lower-case
// target keys such as "limit" stay ordinary keys.
func isDirective(k string) bool {
	return query.IsDirective(k) && k == strings.ToUpper(k)
}

func (b *builder) buildBlock(sub any, directives *container.Associative, path []string) (Node, error) {
	q, err := query.Parse(directives)
	if err != nil {
		var te *dmerrors.TemplateError
		if errors.As(err, &te) {
			return nil, &dmerrors.TemplateError{
				Path:    dotpath.Join(append(slices.Clip(path), te.Path)...),
				Message: te.Message,
				Cause:   te.Cause,
			}
		}
		return nil, err
	}
	for _, f := range q.Fields() {
		if query.IsExpression(f) {
			if _, err := b.parser.Parse(f); err != nil {
				return nil, &dmerrors.TemplateError{Path: dotpath.Join(path...), Cause: err}
			}
		}
	}

	child, err := b.build(sub, append(slices.Clip(path), WildcardKey))
	if err != nil {
		return nil, err
	}
	blk := &Block{Query: q, Template: child}
	if directives.Len() > 0 {
		blk.Directives = directives
	}
	return blk, nil
}

// Value returns the template in the form it was written.
func (t *Template) Value() any {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.Value()
}

// MarshalJSON encodes the template in its written form.
func (t *Template) MarshalJSON() ([]byte, error) {
	return codec.EncodeJSON(t.Value(), "")
}

// MarshalYAML encodes the template in its written form, keeping key order.
func (t *Template) MarshalYAML() (any, error) {
	return codec.ToNode(t.Value())
}

// String returns the template as compact JSON.
func (t *Template) String() string {
	data, err := t.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid template: %v>", err)
	}
	return string(data)
}

// WalkFunc is called for every node with its target path segments. Block
// sub-templates are reported under the "*" segment. Returning SkipChildren
// from a map or block stops the walk descending into it.
type WalkFunc func(path []string, n Node) error

// SkipChildren is returned by a WalkFunc to skip a node's children.
var SkipChildren = errors.New("skip children")

// Walk visits the template depth-first in declaration order.
func (t *Template) Walk(fn WalkFunc) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return walk(nil, t.Root, fn)
}

func walk(path []string, n Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	switch node := n.(type) {
	case *Map:
		var err error
		node.Each(func(key string, child Node) bool {
			err = walk(append(slices.Clip(path), key), child, fn)
			return err == nil
		})
		return err
	case *Block:
		return walk(append(slices.Clip(path), WildcardKey), node.Template, fn)
	}
	return nil
}

// Leaves returns the target path of every leaf. Paths inside blocks
// contain a "*" segment.
func (t *Template) Leaves() []string {
	var out []string
	_ = t.Walk(func(path []string, n Node) error {
		if _, ok := n.(*Leaf); ok {
			out = append(out, dotpath.Join(path...))
		}
		return nil
	})
	return out
}
