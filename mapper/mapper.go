package mapper

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/expr"
	"github.com/erraggy/dotmap/filter"
	"github.com/erraggy/dotmap/hook"
	"github.com/erraggy/dotmap/query"
	"github.com/erraggy/dotmap/reverse"
	"github.com/erraggy/dotmap/template"
)

// Mapper applies templates. It is immutable once built and safe for
// concurrent use.
type Mapper struct {
	cfg         *config
	accessor    *dotpath.Accessor
	mutator     *dotpath.Mutator
	pathFilters []compiledPathFilter
}

// New creates a Mapper. Invalid options return a *dmerrors.ConfigError.
func New(opts ...Option) (*Mapper, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	pathFilters, err := compilePathFilters(cfg)
	if err != nil {
		return nil, err
	}
	dopts := []dotpath.Option{dotpath.WithCompiler(cfg.compiler), dotpath.WithRegistry(cfg.registry)}
	return &Mapper{
		cfg:         cfg,
		accessor:    dotpath.NewAccessor(dopts...),
		mutator:     dotpath.NewMutator(dopts...),
		pathFilters: pathFilters,
	}, nil
}

// Result is the outcome of MapWithResult.
type Result struct {
	// Target is the target root.
	Target any
	// Warnings holds soft errors, such as values skipped by SUM or AVG.
	Warnings []error
	// Written counts the leaf values written to the target.
	Written int
	// Skipped counts the leaves skipped by hooks or the null policy.
	Skipped int
}

// Map writes the template's values, resolved against source, into target
// and returns the target root. A nil target starts from an empty map, or
// an empty list when the template root is a sequence or a block.
func (m *Mapper) Map(source, target any, tpl *template.Template) (any, error) {
	res, err := m.MapWithResult(source, target, tpl)
	if err != nil {
		return nil, err
	}
	return res.Target, nil
}

// MapWithResult is like Map and also reports warnings and counts.
func (m *Mapper) MapWithResult(source, target any, tpl *template.Template) (*Result, error) {
	if tpl == nil || tpl.Root == nil {
		return nil, &dmerrors.TemplateError{Message: "nil template"}
	}

	p := &pass{
		m:      m,
		source: source,
		tpl:    tpl,
		log:    m.cfg.logger,
	}
	p.ref = p.targetRef(target)
	p.ctx = hook.NewContext(source, p.target(), tpl)

	p.log.Debug("mapping started")

	src, ok, err := p.phase(hook.BeforeAll, source, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.log.Info("mapping skipped by beforeAll hook")
		return &Result{Target: p.target()}, nil
	}
	p.source = src
	p.ctx.Source = src

	if err := p.node(scope{p: p}, tpl.Root, nil, ""); err != nil {
		p.log.Error("mapping failed", "error", err)
		return nil, err
	}

	out := p.target()
	if v, ok, err := p.phase(hook.AfterAll, out, nil); err != nil {
		return nil, err
	} else if ok {
		out = v
	}

	p.log.Debug("mapping finished", "written", p.written, "skipped", p.skipped, "warnings", len(p.warnings))
	return &Result{Target: out, Warnings: p.warnings, Written: p.written, Skipped: p.skipped}, nil
}

// MapReverse reverses tpl and maps source through the reversed template.
func (m *Mapper) MapReverse(source, target any, tpl *template.Template) (any, error) {
	reversed, err := reverse.Reverse(tpl, reverse.WithTemplateOptions(template.WithParser(m.cfg.parser)))
	if err != nil {
		return nil, err
	}
	return m.Map(source, target, reversed)
}

// Map maps source into target with a Mapper built from opts.
func Map(source, target any, tpl *template.Template, opts ...Option) (any, error) {
	m, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return m.Map(source, target, tpl)
}

// MapReverse reverses tpl and maps source through it with a Mapper built
// from opts.
func MapReverse(source, target any, tpl *template.Template, opts ...Option) (any, error) {
	m, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return m.MapReverse(source, target, tpl)
}

// pass holds the state of one Map call.
type pass struct {
	m      *Mapper
	source any
	tpl    *template.Template
	ctx    *hook.Context
	log    Logger

	// ref is what writes go through: a pointer root passed by the caller,
	// or &holder.
	ref    any
	holder any

	warnings []error
	written  int
	skipped  int

	// wrote holds the target paths set during this pass; under holds them
	// and all of their prefixes. Aliases only see what these cover.
	wrote map[string]bool
	under map[string]bool
}

func (p *pass) targetRef(target any) any {
	switch t := target.(type) {
	case *any, *[]any, *map[string]any:
		return t
	case nil:
		switch root := p.tpl.Root.(type) {
		case *template.Map:
			if root.IsList() {
				p.holder = []any{}
				return &p.holder
			}
		case *template.Block:
			if p.m.cfg.reindex {
				p.holder = []any{}
				return &p.holder
			}
		}
		p.holder = map[string]any{}
	default:
		p.holder = target
	}
	return &p.holder
}

// target returns the current target root.
func (p *pass) target() any {
	switch r := p.ref.(type) {
	case *any:
		return *r
	case *[]any:
		return *r
	case *map[string]any:
		return *r
	}
	return p.ref
}

func (p *pass) set(path []string, v any) error {
	if err := p.replace(path, v); err != nil {
		return err
	}
	p.record(path)
	return nil
}

func (p *pass) replace(path []string, v any) error {
	if len(path) > 0 {
		return p.m.mutator.SetSegments(p.ref, path, v)
	}
	switch r := p.ref.(type) {
	case *any:
		*r = v
		return nil
	case *[]any:
		if list, ok := v.([]any); ok {
			*r = list
			return nil
		}
	case *map[string]any:
		if m, ok := v.(map[string]any); ok {
			*r = m
			return nil
		}
	}
	return &dmerrors.MutationError{Operation: "set", Message: fmt.Sprintf("cannot replace the target root with %T", v)}
}

// record marks path as written in this pass.
func (p *pass) record(path []string) {
	if p.wrote == nil {
		p.wrote, p.under = map[string]bool{}, map[string]bool{}
	}
	p.wrote[dotpath.Join(path...)] = true
	for i := 0; i <= len(path); i++ {
		p.under[dotpath.Join(path[:i]...)] = true
	}
}

// wasWritten reports whether path was written in this pass, lies inside a
// value written in this pass, or is a container of such a value.
func (p *pass) wasWritten(path []string) bool {
	if p.under[dotpath.Join(path...)] {
		return true
	}
	for i := 0; i < len(path); i++ {
		if p.wrote[dotpath.Join(path[:i]...)] {
			return true
		}
	}
	return false
}

// phase runs the phase filters registered for ph, then the hooks.
func (p *pass) phase(ph hook.Phase, value any, sc *scope) (any, bool, error) {
	for _, pf := range p.m.cfg.phaseFilters {
		if pf.phase != ph {
			continue
		}
		params := &filter.Params{Source: p.source, Template: p.tpl, Target: p.target(), Value: value, Args: pf.args}
		if sc != nil {
			params.Key, params.Path = sc.key, dotpath.Join(sc.path...)
		}
		out, err := p.m.cfg.filters.Apply(pf.name, value, params)
		if err != nil {
			return nil, false, err
		}
		value = out
	}

	if !p.m.cfg.hooks.Has(ph) {
		return value, true, nil
	}
	p.ctx.Target = p.target()
	p.ctx.Key, p.ctx.Path = "", ""
	if sc != nil {
		p.ctx.Key, p.ctx.Path = sc.key, dotpath.Join(sc.path...)
	}
	out, ok := p.m.cfg.hooks.Run(ph, value, p.ctx)
	return out, ok, nil
}

func (p *pass) node(sc scope, n template.Node, path []string, key string) error {
	switch node := n.(type) {
	case *template.Map:
		sc.node = path
		var err error
		node.Each(func(k string, child template.Node) bool {
			err = p.node(sc, child, append(slices.Clip(path), dotpath.Split(k)...), k)
			return err == nil
		})
		return err
	case *template.Block:
		return p.block(sc, node, path)
	case *template.Leaf:
		return p.leaf(sc, node, path, key)
	}
	return &dmerrors.TemplateError{Path: dotpath.Join(path...), Message: fmt.Sprintf("unsupported node %T", n)}
}

func (p *pass) leaf(sc scope, l *template.Leaf, path []string, key string) error {
	sc.path, sc.key = path, key
	at := dotpath.Join(path...)

	e := l.Expr
	raw, ok, err := p.phase(hook.BeforeTransform, l.Value(), &sc)
	if err != nil {
		return err
	}
	if !ok {
		p.skip("leaf skipped by beforeTransform hook", at)
		return nil
	}
	switch r := raw.(type) {
	case string:
		if r != e.Raw() {
			if e, err = p.m.cfg.parser.Parse(r); err != nil {
				return &dmerrors.TemplateError{Path: at, Message: "hook returned an invalid expression", Cause: err}
			}
		}
	default:
		if !e.IsLiteral() || !reflect.DeepEqual(raw, e.Value()) {
			e = expr.NewLiteral(raw)
		}
	}

	v, err := e.Eval(&sc)
	if err != nil {
		return err
	}
	if v, err = p.applyPathFilters(&sc, v); err != nil {
		return err
	}

	v, ok, err = p.phase(hook.AfterTransform, v, &sc)
	if err != nil {
		return err
	}
	if !ok {
		p.skip("leaf skipped by afterTransform hook", at)
		return nil
	}
	return p.write(&sc, path, v)
}

func (p *pass) applyPathFilters(sc *scope, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var err error
	for i := range p.m.pathFilters {
		pf := &p.m.pathFilters[i]
		if !pf.matches(sc.path) {
			continue
		}
		for _, call := range pf.filters {
			if v, err = sc.ApplyFilter(call.Name, v, call.Args); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}

func (p *pass) write(sc *scope, path []string, v any) error {
	if rs, ok := v.(*dotpath.ResultSet); ok {
		if !p.m.cfg.reindex {
			return p.writeEntries(sc, path, rs)
		}
		v = rs.Values()
	}

	at := dotpath.Join(path...)
	if v == nil && p.m.cfg.skipNull {
		p.skip("null value not written", at)
		return nil
	}
	v, ok, err := p.phase(hook.BeforeWrite, v, sc)
	if err != nil {
		return err
	}
	if !ok {
		p.skip("write skipped by beforeWrite hook", at)
		return nil
	}
	if err := p.set(path, v); err != nil {
		return err
	}
	p.written++
	return nil
}

// writeEntries writes each wildcard entry at the index it was captured at.
func (p *pass) writeEntries(sc *scope, path []string, rs *dotpath.ResultSet) error {
	var err error
	rs.Each(func(key string, value any) bool {
		entry := *sc
		entry.path = append(slices.Clip(path), rs.Captures(key)...)
		err = p.write(&entry, entry.path, value)
		return err == nil
	})
	return err
}

func (p *pass) skip(msg, path string) {
	p.skipped++
	p.log.Debug(msg, "path", path)
}

func (p *pass) block(sc scope, b *template.Block, path []string) error {
	at := dotpath.Join(path...)
	pattern, err := p.binding(sc, b, at)
	if err != nil {
		return err
	}

	prefix := sc.bind(pattern[:len(pattern)-1])
	var elements []query.Element
	if coll, found := p.m.accessor.Lookup(p.source, prefix); found {
		if entries, ok := p.m.cfg.registry.ToAssociative(coll); ok {
			elements = make([]query.Element, 0, entries.Len())
			for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
				elements = append(elements, query.Element{Key: pair.Key, Value: pair.Value})
			}
		}
	}

	res, err := b.Query.Apply(elements, p.resolver(sc, pattern))
	if err != nil {
		return &dmerrors.TemplateError{Path: at, Message: "directives failed", Cause: err}
	}
	for _, w := range res.Warnings {
		p.warnings = append(p.warnings, w)
		p.log.Warn("aggregation skipped a value", "path", at, "error", w)
	}
	p.log.Debug("block expanded", "path", at, "binding", dotpath.Join(pattern...),
		"elements", len(elements), "rows", len(res.Elements))

	if len(res.Elements) == 0 {
		return p.set(path, []any{})
	}
	for i, row := range res.Elements {
		idx := row.Key
		if p.m.cfg.reindex {
			idx = strconv.Itoa(i)
		}
		if err := p.row(sc, b, pattern, row, append(slices.Clip(path), idx)); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) row(sc scope, b *template.Block, pattern []string, row query.Element, path []string) error {
	key := row.Key
	if row.Group != nil && len(row.Group.Members) > 0 {
		key = row.Group.Members[0].Key
	}
	child := sc.with(pattern, key)
	idx := path[len(path)-1]

	if row.Group != nil {
		if l, ok := b.Template.(*template.Leaf); ok && bindsElement(l, pattern) {
			child.path, child.key = path, idx
			return p.write(&child, path, groupRow(row.Group))
		}
		if err := p.set(path, groupRow(row.Group)); err != nil {
			return err
		}
		p.written++
	}
	return p.node(child, b.Template, path, idx)
}

// groupRow copies a group's fields and aggregates into a fresh map.
func groupRow(grp *query.Group) map[string]any {
	out := maps.Clone(grp.Row)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// bindsElement reports whether l is exactly the bound wildcard, as in
// "{{ items.* }}".
func bindsElement(l *template.Leaf, pattern []string) bool {
	path, ok := l.Expr.PurePath()
	return ok && slices.Equal(path.Segments(), pattern)
}

// binding finds the wildcard a block iterates: the shortest wildcard prefix
// of its references that no enclosing block has bound yet.
func (p *pass) binding(sc scope, b *template.Block, at string) ([]string, error) {
	var best []string
	consider := func(paths []*dotpath.Path) {
		for _, ref := range paths {
			segs := ref.Segments()
			for i, s := range segs {
				if s != dotpath.Wildcard {
					continue
				}
				cand := segs[:i+1]
				if sc.bound(cand) {
					continue
				}
				if best == nil || len(cand) < len(best) {
					best = cand
				}
				break
			}
		}
	}

	var visit func(n template.Node) error
	visit = func(n template.Node) error {
		switch node := n.(type) {
		case *template.Leaf:
			consider(node.Expr.Paths())
		case *template.Map:
			var err error
			node.Each(func(_ string, child template.Node) bool {
				err = visit(child)
				return err == nil
			})
			return err
		case *template.Block:
			for _, f := range node.Query.Fields() {
				if !query.IsExpression(f) {
					continue
				}
				e, err := p.m.cfg.parser.Parse(f)
				if err != nil {
					return &dmerrors.TemplateError{Path: at, Cause: err}
				}
				consider(e.Paths())
			}
			return visit(node.Template)
		}
		return nil
	}
	if err := visit(b); err != nil {
		return nil, err
	}

	if best == nil {
		return nil, &dmerrors.TemplateError{Path: at, Message: "block references no unbound wildcard path"}
	}
	return slices.Clone(best), nil
}

// resolver reads directive fields for a block's elements. Expressions are
// evaluated with the element bound, bare names are paths inside the element.
func (p *pass) resolver(sc scope, pattern []string) query.Resolver {
	return func(e query.Element, field string) (any, error) {
		if query.IsExpression(field) {
			x, err := p.m.cfg.parser.Parse(field)
			if err != nil {
				return nil, err
			}
			child := sc.with(pattern, e.Key)
			return x.Eval(&child)
		}
		path := query.FieldPath(field)
		if path == "" || path == dotpath.Wildcard {
			return e.Value, nil
		}
		compiled, err := p.m.cfg.compiler.Compile(path)
		if err != nil {
			return nil, err
		}
		return p.m.accessor.GetPath(e.Value, compiled, nil), nil
	}
}
