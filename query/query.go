package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/compare"
)

// Directive keys reserved inside a wildcard block.
const (
	KeyWhere    = "WHERE"
	KeyOrderBy  = "ORDER BY"
	KeyLimit    = "LIMIT"
	KeyOffset   = "OFFSET"
	KeyDistinct = "DISTINCT"
	KeyGroupBy  = "GROUP BY"
	KeyHaving   = "HAVING"
)

var directives = []string{KeyWhere, KeyGroupBy, KeyHaving, KeyOrderBy, KeyDistinct, KeyLimit, KeyOffset}

// Directives returns the directive keys in the order they apply.
func Directives() []string {
	return slices.Clone(directives)
}

// NormalizeKey returns the canonical directive key for k, or "" when k is
// not a directive. Case and inner whitespace are ignored.
func NormalizeKey(k string) string {
	norm := strings.ToUpper(strings.Join(strings.Fields(k), " "))
	if slices.Contains(directives, norm) {
		return norm
	}
	return ""
}

// IsDirective reports whether k is a directive key.
func IsDirective(k string) bool {
	return NormalizeKey(k) != ""
}

// Element is one row of a wildcard binding.
type Element struct {
	// Key is the key the bound wildcard matched, or the group ordinal.
	Key string
	// Value is the element, or the group row for grouped elements.
	Value any
	// Group is set on rows produced by GROUP BY.
	Group *Group
}

// Resolver reads field from an element. Fields are bare names relative to
// the element or {{ }} expressions; interpreting them is up to the caller.
type Resolver func(e Element, field string) (any, error)

// Distinct describes a DISTINCT directive.
type Distinct struct {
	// Field, when set, makes rows distinct on that field's value instead of
	// the whole element.
	Field string
}

// Query is a parsed set of directives.
type Query struct {
	Where    *Condition
	GroupBy  *GroupBy
	Having   *Condition
	OrderBy  []OrderKey
	Distinct *Distinct
	// Limit is nil when unlimited.
	Limit  *int
	Offset int
}

// Result is the outcome of Apply.
type Result struct {
	Elements []Element
	// Warnings holds soft errors, such as values numeric aggregations skipped.
	Warnings []error
}

// Values returns the element values in order.
func (r *Result) Values() []any {
	out := make([]any, len(r.Elements))
	for i, e := range r.Elements {
		out[i] = e.Value
	}
	return out
}

// Empty reports whether q has no directives.
func (q *Query) Empty() bool {
	return q == nil || (q.Where == nil && q.GroupBy == nil && q.Having == nil &&
		len(q.OrderBy) == 0 && q.Distinct == nil && q.Limit == nil && q.Offset == 0)
}

// Fields returns every field the directives read, in directive order.
func (q *Query) Fields() []string {
	if q == nil {
		return nil
	}
	var out []string
	out = append(out, q.Where.Fields()...)
	if q.GroupBy != nil {
		for _, f := range q.GroupBy.Fields {
			out = append(out, f.Field)
		}
		for _, a := range q.GroupBy.Aggregations {
			if a.Field != "" {
				out = append(out, a.Field)
			}
		}
	}
	out = append(out, q.Having.Fields()...)
	for _, k := range q.OrderBy {
		out = append(out, k.Field)
	}
	if q.Distinct != nil && q.Distinct.Field != "" {
		out = append(out, q.Distinct.Field)
	}
	return out
}

// Parse builds a Query from directive entries. Keys that are not directives
// are ignored. Errors are *dmerrors.TemplateError naming the directive.
func Parse(entries any) (*Query, error) {
	m, ok := asMap(entries)
	if !ok {
		if entries == nil {
			return &Query{}, nil
		}
		return nil, &dmerrors.TemplateError{Message: fmt.Sprintf("directives must be a map, got %T", entries)}
	}

	q := &Query{}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		key := NormalizeKey(pair.Key)
		if key == "" {
			continue
		}
		if err := q.set(key, pair.Value); err != nil {
			return nil, &dmerrors.TemplateError{Path: key, Cause: err}
		}
	}
	if q.Having != nil && q.GroupBy == nil {
		return nil, &dmerrors.TemplateError{Path: KeyHaving, Message: "HAVING requires GROUP BY"}
	}
	return q, nil
}

func (q *Query) set(key string, v any) error {
	var err error
	switch key {
	case KeyWhere:
		q.Where, err = ParseCondition(v)
	case KeyHaving:
		q.Having, err = ParseCondition(v)
	case KeyGroupBy:
		q.GroupBy, err = ParseGroupBy(v)
	case KeyOrderBy:
		q.OrderBy, err = ParseOrderBy(v)
	case KeyDistinct:
		q.Distinct, err = parseDistinct(v)
	case KeyLimit:
		var n int
		if n, err = count(v); err == nil {
			q.Limit = &n
		}
	case KeyOffset:
		q.Offset, err = count(v)
	}
	return err
}

func parseDistinct(v any) (*Distinct, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if val {
			return &Distinct{}, nil
		}
		return nil, nil
	case string:
		switch s := strings.TrimSpace(val); strings.ToLower(s) {
		case "", "false":
			return nil, nil
		case "true", "*":
			return &Distinct{}, nil
		default:
			return &Distinct{Field: s}, nil
		}
	}
	return nil, fmt.Errorf("DISTINCT must be true, false or a field, got %T", v)
}

func count(v any) (int, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("expected a non-negative integer, got %v", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer, got %d", n)
	}
	return n, nil
}

// Apply runs the directives over elements in the fixed order WHERE, GROUP BY,
// HAVING, ORDER BY, DISTINCT, OFFSET, LIMIT. The input slice is not modified.
func (q *Query) Apply(elements []Element, resolve Resolver) (*Result, error) {
	res := &Result{Elements: slices.Clone(elements)}
	if q.Empty() {
		return res, nil
	}
	field := q.fieldResolver(resolve)

	if q.Where != nil {
		kept := res.Elements[:0]
		for _, e := range res.Elements {
			ok, err := q.Where.Match(func(f string) (any, error) { return resolve(e, f) })
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, e)
			}
		}
		res.Elements = kept
	}

	if q.GroupBy != nil {
		grouped, warnings, err := q.GroupBy.apply(res.Elements, resolve)
		if err != nil {
			return nil, err
		}
		res.Elements = grouped
		res.Warnings = append(res.Warnings, warnings...)

		if q.Having != nil {
			kept := res.Elements[:0]
			for _, e := range res.Elements {
				ok, err := q.Having.Match(func(f string) (any, error) { return field(e, f) })
				if err != nil {
					return nil, err
				}
				if ok {
					kept = append(kept, e)
				}
			}
			res.Elements = kept
		}
	}

	if len(q.OrderBy) > 0 {
		if err := q.sort(res.Elements, field); err != nil {
			return nil, err
		}
	}

	if q.Distinct != nil {
		kept, err := q.distinct(res.Elements, field)
		if err != nil {
			return nil, err
		}
		res.Elements = kept
	}

	if q.Offset > 0 {
		res.Elements = res.Elements[min(q.Offset, len(res.Elements)):]
	}
	if q.Limit != nil && *q.Limit < len(res.Elements) {
		res.Elements = res.Elements[:*q.Limit]
	}
	return res, nil
}

// fieldResolver reads group fields and aggregates from group rows first,
// then falls back to the first member of the group.
func (q *Query) fieldResolver(resolve Resolver) Resolver {
	return func(e Element, field string) (any, error) {
		if e.Group == nil {
			return resolve(e, field)
		}
		if v, ok := e.Group.Row[FieldName(field)]; ok {
			return v, nil
		}
		if len(e.Group.Members) == 0 {
			return nil, nil
		}
		return resolve(e.Group.Members[0], field)
	}
}

func (q *Query) sort(elements []Element, resolve Resolver) error {
	keys := make([][]any, len(elements))
	for i, e := range elements {
		row := make([]any, len(q.OrderBy))
		for j, k := range q.OrderBy {
			v, err := resolve(e, k.Field)
			if err != nil {
				return err
			}
			row[j] = v
		}
		keys[i] = row
	}

	idx := make([]int, len(elements))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		for j, k := range q.OrderBy {
			c := compare.Compare(keys[a][j], keys[b][j])
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	sorted := make([]Element, len(elements))
	for i, j := range idx {
		sorted[i] = elements[j]
	}
	copy(elements, sorted)
	return nil
}

func (q *Query) distinct(elements []Element, resolve Resolver) ([]Element, error) {
	seen := make(map[uint64]struct{}, len(elements))
	kept := make([]Element, 0, len(elements))
	for _, e := range elements {
		v := e.Value
		if q.Distinct.Field != "" {
			var err error
			if v, err = resolve(e, q.Distinct.Field); err != nil {
				return nil, err
			}
		}
		h, err := compare.Hash(v)
		if err != nil {
			return nil, fmt.Errorf("DISTINCT: %w", err)
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		kept = append(kept, e)
	}
	return kept, nil
}

func (g *GroupBy) apply(elements []Element, resolve Resolver) ([]Element, []error, error) {
	var (
		order    []uint64
		groups   = make(map[uint64]*Group)
		warnings []error
	)
	for _, e := range elements {
		tuple := make([]any, len(g.Fields))
		for i, f := range g.Fields {
			v, err := resolve(e, f.Field)
			if err != nil {
				return nil, nil, err
			}
			tuple[i] = v
		}
		h, err := compare.Hash(tuple)
		if err != nil {
			return nil, nil, fmt.Errorf("GROUP BY: %w", err)
		}
		grp, ok := groups[h]
		if !ok {
			grp = &Group{Row: make(map[string]any, len(g.Fields)+len(g.Aggregations))}
			for i, f := range g.Fields {
				grp.Row[f.Name] = tuple[i]
			}
			groups[h] = grp
			order = append(order, h)
		}
		grp.Members = append(grp.Members, e)
	}

	out := make([]Element, 0, len(order))
	for i, h := range order {
		grp := groups[h]
		for _, a := range g.Aggregations {
			v, w, err := a.compute(grp.Members, resolve)
			if err != nil {
				return nil, nil, err
			}
			grp.Row[a.Name] = v
			warnings = append(warnings, w...)
		}
		out = append(out, Element{Key: strconv.Itoa(i), Value: grp.Row, Group: grp})
	}
	return out, warnings, nil
}

// FieldPath strips the braces, filters and default from a field reference,
// leaving its path: "{{ items.*.price | int }}" becomes "items.*.price".
func FieldPath(field string) string {
	s := strings.TrimSpace(field)
	if inner, ok := strings.CutPrefix(s, "{{"); ok {
		s = strings.TrimSuffix(strings.TrimSpace(inner), "}}")
	}
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "??"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// FieldName returns the last segment of a field's path, which names the
// field in group rows.
func FieldName(field string) string {
	p := strings.TrimPrefix(FieldPath(field), "@")
	if i := strings.LastIndex(p, dotpath.Separator); i >= 0 {
		return p[i+1:]
	}
	return p
}

// IsExpression reports whether field is a {{ }} expression rather than a
// bare name.
func IsExpression(field string) bool {
	return strings.Contains(field, "{{")
}

// Run applies q to a plain list. Bare fields are paths relative to each
// item; expression fields are read by their path after the first wildcard.
func Run(items []any, q *Query) (*Result, error) {
	elements := make([]Element, len(items))
	for i, item := range items {
		elements[i] = Element{Key: strconv.Itoa(i), Value: item}
	}
	return q.Apply(elements, relativeResolver)
}

func relativeResolver(e Element, field string) (any, error) {
	path := FieldPath(field)
	if IsExpression(field) {
		if _, rest, ok := strings.Cut(path, dotpath.Wildcard+dotpath.Separator); ok {
			path = rest
		}
	}
	if path == "" || path == dotpath.Wildcard || strings.HasSuffix(path, dotpath.Separator+dotpath.Wildcard) {
		return e.Value, nil
	}
	return dotpath.Get(e.Value, path, nil)
}
