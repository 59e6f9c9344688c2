package expr

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/dotpath"
)

// Env supplies the data an expression is evaluated against.
type Env interface {
	// Resolve reads a source path. Missing paths resolve to nil.
	Resolve(path *dotpath.Path) (any, error)
	// ResolveAlias reads a value already written to the target.
	ResolveAlias(name string) (any, error)
	// ApplyFilter runs the named filter.
	ApplyFilter(name string, value any, args []any) (any, error)
}

// Eval evaluates the expression. Interpolations always return a string.
func (e *Expression) Eval(env Env) (any, error) {
	switch e.kind {
	case KindExpr:
		return e.expr.Eval(env)
	case KindInterpolation:
		var b strings.Builder
		for _, part := range e.parts {
			if part.Expr == nil {
				b.WriteString(part.Text)
				continue
			}
			v, err := part.Expr.Eval(env)
			if err != nil {
				return nil, err
			}
			b.WriteString(Render(v))
		}
		return b.String(), nil
	}
	return e.value, nil
}

// Eval resolves the term and falls back to the default when the result is
// nil. For wildcard results the default replaces each nil entry.
func (x *Expr) Eval(env Env) (any, error) {
	v, err := x.Term.Eval(env)
	if err != nil {
		return nil, err
	}
	if x.Default == nil {
		return v, nil
	}
	return withDefault(v, x.Default, env)
}

// Eval resolves the primary and runs the filter chain left to right.
func (t *Term) Eval(env Env) (any, error) {
	var (
		v   any
		err error
	)
	switch p := t.Primary.(type) {
	case *PathRef:
		v, err = env.Resolve(p.Path)
	case *AliasRef:
		v, err = env.ResolveAlias(p.Name)
	case *Literal:
		v = p.Value
	}
	if err != nil {
		return nil, err
	}

	for _, call := range t.Filters {
		v, err = env.ApplyFilter(call.Name, v, call.Args)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func withDefault(v any, def *Expr, env Env) (any, error) {
	rs, ok := v.(*dotpath.ResultSet)
	if !ok {
		if v != nil {
			return v, nil
		}
		return def.Eval(env)
	}
	if rs.Len() == 0 {
		return def.Eval(env)
	}

	var (
		fallback any
		loaded   bool
	)
	out, err := rs.Transform(func(key string, value any) (any, error) {
		if value != nil {
			return value, nil
		}
		if !loaded {
			f, err := def.Eval(env)
			if err != nil {
				return nil, err
			}
			fallback, loaded = f, true
		}
		if other, ok := fallback.(*dotpath.ResultSet); ok {
			return matching(other, rs.Captures(key)), nil
		}
		return fallback, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// matching returns the entry of rs whose wildcard captures equal captures.
func matching(rs *dotpath.ResultSet, captures []string) any {
	var found any
	rs.Each(func(key string, value any) bool {
		if slices.Equal(rs.Captures(key), captures) {
			found = value
			return false
		}
		return true
	})
	return found
}

// Render formats a value for interpolation. nil renders as "", lists as
// comma-separated values and other containers as JSON.
func Render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *dotpath.ResultSet:
		return renderList(val.Values())
	case []any:
		return renderList(val)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func renderList(list []any) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = Render(e)
	}
	return strings.Join(parts, ",")
}
