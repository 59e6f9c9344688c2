package reverse

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
	"github.com/erraggy/dotmap/template"
)

// Option configures a reversal.
type Option func(*config)

type config struct {
	lenient bool
	tplOpts []template.Option
}

// Lenient drops leaves that cannot be inverted instead of failing. They are
// reported in Result.Skipped.
func Lenient() Option {
	return func(c *config) { c.lenient = true }
}

// WithTemplateOptions passes options to the construction of the reversed
// template.
func WithTemplateOptions(opts ...template.Option) Option {
	return func(c *config) { c.tplOpts = append(c.tplOpts, opts...) }
}

// Result is the outcome of ReverseWithResult.
type Result struct {
	Template *template.Template
	// Skipped lists the leaves a lenient reversal dropped, in template order.
	Skipped []*dmerrors.ReverseError
}

// Reverse inverts a template made of pure path leaves. Any other leaf, and
// any block with directives, fails with a *dmerrors.ReverseError.
func Reverse(tpl *template.Template, opts ...Option) (*template.Template, error) {
	res, err := ReverseWithResult(tpl, opts...)
	if err != nil {
		return nil, err
	}
	return res.Template, nil
}

// ReverseWithResult is like Reverse and also reports what a lenient
// reversal skipped.
func ReverseWithResult(tpl *template.Template, opts ...Option) (*Result, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if tpl == nil || tpl.Root == nil {
		return nil, &dmerrors.TemplateError{Message: "nil template"}
	}

	r := &reverser{
		cfg:     cfg,
		holder:  container.NewAssociative(),
		sources: make(map[string]string),
	}
	if err := tpl.Walk(r.visit); err != nil {
		return nil, err
	}

	root, _ := r.holder.Get("")
	if root == nil {
		root = container.NewAssociative()
	}
	out, err := template.New(listify(root), cfg.tplOpts...)
	if err != nil {
		return nil, err
	}
	return &Result{Template: out, Skipped: r.skipped}, nil
}

type reverser struct {
	cfg *config
	// holder keeps the reversed root under the "" key so a root-level leaf
	// can replace it.
	holder  *container.Associative
	sources map[string]string
	skipped []*dmerrors.ReverseError
}

func (r *reverser) visit(path []string, n template.Node) error {
	switch node := n.(type) {
	case *template.Block:
		if node.Directives != nil && node.Directives.Len() > 0 {
			return r.reject(&dmerrors.ReverseError{
				Path:   dotpath.Join(path...),
				Reason: "blocks with directives are not invertible",
			}, template.SkipChildren)
		}
	case *template.Leaf:
		return r.leaf(path, node)
	}
	return nil
}

func (r *reverser) leaf(path []string, l *template.Leaf) error {
	target := targetSegments(path)
	at := dotpath.Join(target...)
	fail := func(reason string) error {
		return r.reject(&dmerrors.ReverseError{Path: at, Expression: fmt.Sprint(l.Value()), Reason: reason}, nil)
	}

	e := l.Expr
	switch e.Kind() {
	case expr.KindLiteral:
		return fail("literal values have no source")
	case expr.KindInterpolation:
		return fail("interpolations are not invertible")
	}
	if len(target) == 0 {
		return fail("a root leaf has no target path to read back")
	}
	src, ok := e.PurePath()
	if !ok {
		switch {
		case e.HasFilters():
			return fail("filters are not invertible")
		case len(e.Aliases()) > 0:
			return fail("aliases are not invertible")
		case e.Expr().Default != nil:
			return fail("defaults are not invertible")
		}
		return fail("only single path references are invertible")
	}

	if src.WildcardCount() > countWildcards(target) {
		target = append(target, dotpath.Wildcard)
	}
	if src.WildcardCount() != countWildcards(target) {
		return fail(fmt.Sprintf("source has %d wildcards but the target binds %d", src.WildcardCount(), countWildcards(target)))
	}

	key := src.String()
	if prev, dup := r.sources[key]; dup {
		return fail(fmt.Sprintf("source %s is also mapped to %s", key, prev))
	}

	raw := "{{ " + dotpath.Join(target...) + " }}"
	segments := append([]string{""}, src.Segments()...)
	if err := insert(r.holder, segments, raw); err != nil {
		return fail(err.Error())
	}
	r.sources[key] = at
	return nil
}

// reject records err and continues when lenient, returning next.
func (r *reverser) reject(err *dmerrors.ReverseError, next error) error {
	if !r.cfg.lenient {
		return err
	}
	r.skipped = append(r.skipped, err)
	return next
}

// targetSegments splits keys that are dot paths into their segments.
func targetSegments(path []string) []string {
	out := make([]string, 0, len(path))
	for _, key := range path {
		out = append(out, dotpath.Split(key)...)
	}
	return out
}

func countWildcards(segments []string) int {
	n := 0
	for _, s := range segments {
		if s == dotpath.Wildcard {
			n++
		}
	}
	return n
}

var errConflict = errors.New("conflicts with another reversed leaf")

// insert places raw at segments. A trailing wildcard collapses into a leaf
// at its parent, since a wildcard leaf already writes a list.
func insert(m *container.Associative, segments []string, raw string) error {
	key, rest := segments[0], segments[1:]
	if len(rest) == 1 && rest[0] == dotpath.Wildcard {
		rest = nil
	}

	if err := checkBlockKeys(m, key); err != nil {
		return err
	}
	if len(rest) == 0 {
		if _, exists := m.Get(key); exists {
			return errConflict
		}
		m.Set(key, raw)
		return nil
	}

	existing, exists := m.Get(key)
	if !exists {
		child := container.NewAssociative()
		m.Set(key, child)
		return insert(child, rest, raw)
	}
	child, ok := existing.(*container.Associative)
	if !ok {
		return errConflict
	}
	return insert(child, rest, raw)
}

// checkBlockKeys keeps "*" from sharing a map with other keys.
func checkBlockKeys(m *container.Associative, key string) error {
	if m.Len() == 0 {
		return nil
	}
	_, hasWildcard := m.Get(dotpath.Wildcard)
	if (key == dotpath.Wildcard) != hasWildcard {
		return errConflict
	}
	return nil
}

// listify turns maps keyed "0".."n-1" in order back into lists.
func listify(v any) any {
	m, ok := v.(*container.Associative)
	if !ok {
		return v
	}
	isList := m.Len() > 0
	i := 0
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value = listify(pair.Value)
		if pair.Key != strconv.Itoa(i) {
			isList = false
		}
		i++
	}
	if !isList {
		return m
	}
	return slices.Collect(func(yield func(any) bool) {
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Value) {
				return
			}
		}
	})
}
