package mapper

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/filter"
	"github.com/erraggy/dotmap/hook"
	"github.com/erraggy/dotmap/internal/codec"
	"github.com/erraggy/dotmap/template"
)

func tpl(t *testing.T, v any) *template.Template {
	t.Helper()
	out, err := template.New(v)
	require.NoError(t, err)
	return out
}

func yamlTpl(t *testing.T, doc string) *template.Template {
	t.Helper()
	out, err := template.Parse([]byte(doc))
	require.NoError(t, err)
	return out
}

func mapWith(t *testing.T, source any, tp *template.Template, opts ...Option) any {
	t.Helper()
	out, err := Map(source, nil, tp, opts...)
	require.NoError(t, err)
	return out
}

func TestMap_Leaves(t *testing.T) {
	source := map[string]any{
		"user": map[string]any{"name": "al", "age": nil},
	}
	out := mapWith(t, source, tpl(t, map[string]any{
		"name": "{{ user.name | upper }}",
		"age":  "{{ user.age ?? 18 }}",
		"kind": "customer",
	}))
	assert.Equal(t, map[string]any{"name": "AL", "age": 18, "kind": "customer"}, out)
}

func TestMap_DottedKeysNest(t *testing.T) {
	source := map[string]any{"first": "Ada", "city": "London"}
	out := mapWith(t, source, tpl(t, map[string]any{
		"person.name":         "{{ first }}",
		"person.address.city": "{{ city }}",
	}))
	assert.Equal(t, map[string]any{
		"person": map[string]any{
			"name":    "Ada",
			"address": map[string]any{"city": "London"},
		},
	}, out)
}

func TestMap_WildcardLeaf(t *testing.T) {
	source := map[string]any{
		"users": []any{
			map[string]any{"email": "a@x.io"},
			map[string]any{"name": "no email"},
			map[string]any{"email": "c@x.io"},
		},
	}
	out := mapWith(t, source, tpl(t, map[string]any{"emails": "{{ users.*.email }}"}))
	assert.Equal(t, map[string]any{"emails": []any{"a@x.io", "c@x.io"}}, out)
}

func TestMap_BlockDirectives(t *testing.T) {
	source := map[string]any{
		"products": []any{
			map[string]any{"p": 50},
			map[string]any{"p": 200},
			map[string]any{"p": 150},
		},
	}
	out := mapWith(t, source, tpl(t, map[string]any{
		"WHERE":    map[string]any{"p": []any{">", 100}},
		"ORDER BY": "p DESC",
		"LIMIT":    1,
		"*":        "{{ products.* }}",
	}))
	assert.Equal(t, []any{map[string]any{"p": 200}}, out)
}

func TestMap_GroupBy(t *testing.T) {
	source := map[string]any{
		"items": []any{
			map[string]any{"cat": "a"},
			map[string]any{"cat": "b"},
			map[string]any{"cat": "a"},
		},
	}
	out := mapWith(t, source, tpl(t, map[string]any{
		"GROUP BY": "cat",
		"*":        "{{ items.* }}",
	}))
	assert.Equal(t, []any{
		map[string]any{"cat": "a", "count": 2},
		map[string]any{"cat": "b", "count": 1},
	}, out)
}

func TestMap_GroupByAliasesAggregates(t *testing.T) {
	source := map[string]any{
		"items": []any{
			map[string]any{"cat": "a", "v": 1},
			map[string]any{"cat": "b", "v": 5},
			map[string]any{"cat": "a", "v": 2},
		},
	}
	out := mapWith(t, source, yamlTpl(t, `
totals:
  GROUP BY:
    fields: cat
    aggregations:
      sum: SUM(v)
  "*":
    first: "{{ items.*.v }}"
    label: "{{ @cat }}={{ @sum }}"
`))
	assert.Equal(t, map[string]any{
		"totals": []any{
			map[string]any{"cat": "a", "sum": 3, "first": 1, "label": "a=3"},
			map[string]any{"cat": "b", "sum": 5, "first": 5, "label": "b=5"},
		},
	}, out)
}

func TestMap_EmptyBlockWritesEmptyList(t *testing.T) {
	source := map[string]any{"items": []any{map[string]any{"n": 1}}}
	out := mapWith(t, source, yamlTpl(t, `
big:
  WHERE: {n: [">", 10]}
  "*": "{{ items.* }}"
none:
  "*": "{{ missing.* }}"
`))
	assert.Equal(t, map[string]any{"big": []any{}, "none": []any{}}, out)
}

func TestMap_BlockWithoutWildcard(t *testing.T) {
	_, err := Map(map[string]any{}, nil, yamlTpl(t, `
items:
  "*":
    n: "{{ name }}"
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, dmerrors.ErrTemplate)
	var te *dmerrors.TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "items", te.Path)
}

func TestMap_Warnings(t *testing.T) {
	source := map[string]any{
		"items": []any{
			map[string]any{"cat": "a", "v": 1},
			map[string]any{"cat": "a", "v": "lots"},
		},
	}
	m, err := New()
	require.NoError(t, err)
	res, err := m.MapWithResult(source, nil, tpl(t, map[string]any{
		"GROUP BY": map[string]any{"fields": "cat", "aggregations": map[string]any{"total": "SUM(v)"}},
		"*":        "{{ items.* }}",
	}))
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"cat": "a", "total": 1}}, res.Target)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], dmerrors.ErrAggregationType)
	assert.Equal(t, 1, res.Written)
}

func TestMap_SkipNull(t *testing.T) {
	source := map[string]any{"a": 1}
	tp := tpl(t, map[string]any{"a": "{{ a }}", "b": "{{ missing }}"})

	m, err := New()
	require.NoError(t, err)
	res, err := m.MapWithResult(source, nil, tp)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, res.Target)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, res.Skipped)

	out := mapWith(t, source, tp, WithSkipNull(false))
	assert.Equal(t, map[string]any{"a": 1, "b": nil}, out)
}

func TestMap_ReindexWildcard(t *testing.T) {
	source := map[string]any{
		"users": map[string]any{
			"alice": map[string]any{"e": "a@x.io"},
			"bob":   map[string]any{"e": "b@x.io"},
		},
	}
	leaf := tpl(t, map[string]any{"emails": "{{ users.*.e }}"})
	block := yamlTpl(t, `
people:
  "*":
    mail: "{{ users.*.e }}"
`)

	t.Run("reindexed", func(t *testing.T) {
		assert.Equal(t, map[string]any{"emails": []any{"a@x.io", "b@x.io"}}, mapWith(t, source, leaf))
		assert.Equal(t, map[string]any{
			"people": []any{
				map[string]any{"mail": "a@x.io"},
				map[string]any{"mail": "b@x.io"},
			},
		}, mapWith(t, source, block))
	})

	t.Run("source keys", func(t *testing.T) {
		assert.Equal(t, map[string]any{
			"emails": map[string]any{"alice": "a@x.io", "bob": "b@x.io"},
		}, mapWith(t, source, leaf, WithReindexWildcard(false)))
		assert.Equal(t, map[string]any{
			"people": map[string]any{
				"alice": map[string]any{"mail": "a@x.io"},
				"bob":   map[string]any{"mail": "b@x.io"},
			},
		}, mapWith(t, source, block, WithReindexWildcard(false)))
	})
}

func TestMap_ExistingTarget(t *testing.T) {
	source := map[string]any{"name": "Ada"}
	tp := tpl(t, map[string]any{"user.name": "{{ name }}"})

	target := map[string]any{"keep": true, "user": map[string]any{"id": 7}}
	out, err := Map(source, target, tp)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"keep": true, "user": map[string]any{"id": 7, "name": "Ada"}}, out)
	assert.Equal(t, "Ada", target["user"].(map[string]any)["name"])

	var list []any
	_, err = Map(map[string]any{"xs": []any{1, 2}}, &list, tpl(t, map[string]any{"*": "{{ xs.* }}"}))
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, list)
}

func TestMap_SequenceTemplate(t *testing.T) {
	source := map[string]any{"a": "x", "b": "y"}
	out := mapWith(t, source, tpl(t, []any{"{{ a }}", "{{ b }}"}))
	assert.Equal(t, []any{"x", "y"}, out)
}

func TestMap_Aliases(t *testing.T) {
	source := map[string]any{"first": "Ada", "last": "Lovelace"}
	out := mapWith(t, source, yamlTpl(t, `
name: "{{ first }}"
profile:
  name: "{{ last }}"
  relative: "{{ @name }}"
  absolute: "{{ @profile.name }}"
greeting: "Hello {{ @name }}"
`))
	assert.Equal(t, map[string]any{
		"name": "Ada",
		"profile": map[string]any{
			"name":     "Lovelace",
			"relative": "Lovelace",
			"absolute": "Lovelace",
		},
		"greeting": "Hello Ada",
	}, out)
}

func TestMap_UnresolvedAlias(t *testing.T) {
	_, err := Map(map[string]any{}, nil, yamlTpl(t, `
a: "{{ @later }}"
later: 1
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, dmerrors.ErrUnresolvedAlias)
	var ae *dmerrors.AliasError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "later", ae.Alias)
	assert.Equal(t, "a", ae.Path)
}

func TestMap_AliasesIgnoreExistingTarget(t *testing.T) {
	tests := []struct {
		name   string
		source map[string]any
		target map[string]any
		doc    string
	}{
		{
			name:   "written later in the pass",
			source: map[string]any{"x": 1},
			target: map[string]any{"a": "stale"},
			doc:    "b: \"{{ @a }}\"\na: \"{{ x }}\"\n",
		},
		{
			name:   "never written in the pass",
			source: map[string]any{},
			target: map[string]any{"a": "pre-existing"},
			doc:    "b: \"{{ @a }}\"\n",
		},
		{
			name:   "sibling of a written leaf",
			source: map[string]any{"x": 1},
			target: map[string]any{"user": map[string]any{"old": "kept"}},
			doc:    "user:\n  new: \"{{ x }}\"\n  copy: \"{{ @old }}\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(tt.source, tt.target, yamlTpl(t, tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, dmerrors.ErrUnresolvedAlias)
		})
	}
}

func TestMap_AliasesSeeWritesIntoExistingTarget(t *testing.T) {
	target := map[string]any{"a": "stale", "keep": true}
	out, err := Map(map[string]any{"x": 1, "y": 2}, target, yamlTpl(t, `
a: "{{ x }}"
b: "{{ @a }}"
user:
  id: "{{ y }}"
whole: "{{ @user }}"
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":     1,
		"b":     1,
		"keep":  true,
		"user":  map[string]any{"id": 2},
		"whole": map[string]any{"id": 2},
	}, out)
}

func TestMap_FilterParams(t *testing.T) {
	type call struct {
		key, path string
		value     any
		target    map[string]any
		source    any
		template  any
	}
	var calls []call
	spy := filter.Filter{Name: "spy", Fn: func(v any, p *filter.Params) (any, error) {
		target, _ := p.Target.(map[string]any)
		calls = append(calls, call{
			key:      p.Key,
			path:     p.Path,
			value:    p.Value,
			target:   maps.Clone(target),
			source:   p.Source,
			template: p.Template,
		})
		return v, nil
	}}

	source := map[string]any{
		"a":     1,
		"b":     1,
		"items": []any{map[string]any{"id": 7}},
	}
	tp := yamlTpl(t, `
first: "{{ a }}"
nest:
  x: "{{ b | spy }}"
rows:
  "*": "{{ items.* | spy }}"
`)
	out := mapWith(t, source, tp, WithFilters(spy))
	assert.Equal(t, map[string]any{
		"first": 1,
		"nest":  map[string]any{"x": 1},
		"rows":  []any{map[string]any{"id": 7}},
	}, out)

	require.Len(t, calls, 2)

	leaf := calls[0]
	assert.Equal(t, "x", leaf.key)
	assert.Equal(t, "nest.x", leaf.path)
	assert.Equal(t, 1, leaf.value)
	assert.Equal(t, map[string]any{"first": 1}, leaf.target)
	assert.Equal(t, source, leaf.source)
	assert.Same(t, tp, leaf.template)

	row := calls[1]
	assert.Equal(t, "0", row.key)
	assert.Equal(t, "rows.0", row.path)
	assert.Equal(t, map[string]any{"id": 7}, row.value)
	assert.Equal(t, map[string]any{"first": 1, "nest": map[string]any{"x": 1}}, row.target)
	assert.Equal(t, source, row.source)
	assert.Same(t, tp, row.template)
}

func TestMap_UnknownFilter(t *testing.T) {
	_, err := Map(map[string]any{"a": 1}, nil, tpl(t, map[string]any{"a": "{{ a | nope }}"}))
	assert.ErrorIs(t, err, dmerrors.ErrUnknownFilter)
}

func TestMap_NilTemplate(t *testing.T) {
	_, err := Map(nil, nil, nil)
	assert.ErrorIs(t, err, dmerrors.ErrTemplate)
}

func TestMap_Hooks(t *testing.T) {
	source := map[string]any{"a": "x", "b": "y", "c": "z"}
	tp := yamlTpl(t, `
a: "{{ a }}"
b: "{{ b }}"
c: "{{ c }}"
`)

	tests := []struct {
		name string
		opts []Option
		want any
	}{
		{
			name: "beforeAll replaces source",
			opts: []Option{WithHook(hook.BeforeAll, func(_ any, _ *hook.Context) any {
				return map[string]any{"a": "replaced"}
			})},
			want: map[string]any{"a": "replaced"},
		},
		{
			name: "beforeAll skip",
			opts: []Option{WithHook(hook.BeforeAll, func(_ any, _ *hook.Context) any { return hook.Skip })},
			want: map[string]any{},
		},
		{
			name: "beforeTransform rewrites expression",
			opts: []Option{WithHook(hook.BeforeTransform, func(v any, ctx *hook.Context) any {
				if ctx.Key == "a" {
					return "{{ c | upper }}"
				}
				return v
			})},
			want: map[string]any{"a": "Z", "b": "y", "c": "z"},
		},
		{
			name: "beforeTransform literal",
			opts: []Option{WithHook(hook.BeforeTransform, func(v any, ctx *hook.Context) any {
				if ctx.Path == "b" {
					return 42
				}
				return v
			})},
			want: map[string]any{"a": "x", "b": 42, "c": "z"},
		},
		{
			name: "beforeTransform skip",
			opts: []Option{WithHook(hook.BeforeTransform, func(v any, ctx *hook.Context) any {
				if ctx.Key == "b" {
					return hook.Skip
				}
				return v
			})},
			want: map[string]any{"a": "x", "c": "z"},
		},
		{
			name: "afterTransform",
			opts: []Option{WithHook(hook.AfterTransform, func(v any, _ *hook.Context) any {
				return fmt.Sprintf("<%v>", v)
			})},
			want: map[string]any{"a": "<x>", "b": "<y>", "c": "<z>"},
		},
		{
			name: "beforeWrite skip",
			opts: []Option{WithHook(hook.BeforeWrite, func(v any, _ *hook.Context) any {
				if v == "z" {
					return hook.Skip
				}
				return v
			})},
			want: map[string]any{"a": "x", "b": "y"},
		},
		{
			name: "afterAll replaces target",
			opts: []Option{WithHook(hook.AfterAll, func(v any, _ *hook.Context) any {
				return len(v.(map[string]any))
			})},
			want: 3,
		},
		{
			name: "hooks chain in order",
			opts: []Option{WithHooks(hook.New().
				On(hook.AfterTransform, func(v any, _ *hook.Context) any { return v.(string) + "1" }).
				On(hook.AfterTransform, func(v any, _ *hook.Context) any { return v.(string) + "2" }))},
			want: map[string]any{"a": "x12", "b": "y12", "c": "z12"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapWith(t, source, tp, tt.opts...))
		})
	}
}

func TestMap_HookContextScratch(t *testing.T) {
	var seen []string
	out := mapWith(t, map[string]any{"a": 1, "b": 2}, yamlTpl(t, `
a: "{{ a }}"
nested:
  b: "{{ b }}"
`),
		WithHook(hook.BeforeWrite, func(v any, ctx *hook.Context) any {
			n, _ := ctx.Get("n")
			count, _ := n.(int)
			ctx.Set("n", count+1)
			seen = append(seen, ctx.Path)
			return v
		}),
		WithHook(hook.AfterAll, func(v any, ctx *hook.Context) any {
			n, _ := ctx.Get("n")
			v.(map[string]any)["writes"] = n
			return v
		}),
	)
	assert.Equal(t, []string{"a", "nested.b"}, seen)
	assert.Equal(t, 2, out.(map[string]any)["writes"])
}

func TestMap_PathFilters(t *testing.T) {
	source := map[string]any{
		"email": "  ADA@Example.COM ",
		"t1":    "go",
		"t2":    "yaml",
		"code":  "7",
	}
	out := mapWith(t, source, yamlTpl(t, `
user:
  email: "{{ email }}"
  code: "{{ code }}"
tags: ["{{ t1 }}", "{{ t2 }}"]
missing: "{{ nothing }}"
`), WithPathFilters(map[string]string{
		"user.email": "trim | lower",
		"user.code":  "pad_left:3:'0'",
		"tags.*":     "upper",
		"missing":    "upper",
	}))
	assert.Equal(t, map[string]any{
		"user": map[string]any{"email": "ada@example.com", "code": "007"},
		"tags": []any{"GO", "YAML"},
	}, out)
}

func TestMap_PhaseFilters(t *testing.T) {
	source := map[string]any{"a": " x ", "b": []any{" y", "z "}}
	out := mapWith(t, source, tpl(t, map[string]any{"a": "{{ a }}", "b": "{{ b.* }}"}),
		WithPhaseFilter(hook.BeforeWrite, "trim"),
		WithPhaseFilter(hook.BeforeWrite, "upper"),
	)
	assert.Equal(t, map[string]any{"a": "X", "b": []any{"Y", "Z"}}, out)
}

func TestMap_CustomFilters(t *testing.T) {
	double := filter.Filter{
		Name: "double",
		Fn: func(v any, _ *filter.Params) (any, error) {
			n, ok := v.(int)
			if !ok {
				return nil, fmt.Errorf("expected an int, got %T", v)
			}
			return n * 2, nil
		},
	}
	out := mapWith(t, map[string]any{"n": 21}, tpl(t, map[string]any{"n": "{{ n | double }}"}), WithFilters(double))
	assert.Equal(t, map[string]any{"n": 42}, out)

	_, found := filter.Default().Lookup("double")
	assert.False(t, found, "custom filters must not leak into the default registry")

	_, mapErr := Map(map[string]any{"n": "x"}, nil, tpl(t, map[string]any{"n": "{{ n | double }}"}), WithFilters(double))
	assert.ErrorIs(t, mapErr, dmerrors.ErrFilter)
}

func TestNew_OptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "nil hooks", opt: WithHooks(nil)},
		{name: "nil hook", opt: WithHook(hook.BeforeAll, nil)},
		{name: "bad phase", opt: WithHook(hook.Phase("sometime"), func(v any, _ *hook.Context) any { return v })},
		{name: "nil registry", opt: WithFilterRegistry(nil)},
		{name: "nil adapter", opt: WithAdapters(nil)},
		{name: "nil compiler", opt: WithCompiler(nil)},
		{name: "nil parser", opt: WithParser(nil)},
		{name: "bad path filter pattern", opt: WithPathFilters(map[string]string{"a..b": "upper"})},
		{name: "empty path filter chain", opt: WithPathFilters(map[string]string{"a": " "})},
		{name: "unknown path filter", opt: WithPathFilters(map[string]string{"a": "upper | nope"})},
		{name: "unknown phase filter", opt: WithPhaseFilter(hook.BeforeWrite, "nope")},
		{name: "phase filter without phase", opt: WithPhaseFilter(hook.BeforeWrite, "title")},
		{name: "phase filter bad phase", opt: WithPhaseFilter(hook.Phase("later"), "trim")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, dmerrors.ErrConfig)
		})
	}

	_, err := New(
		WithFilterRegistry(filter.NewRegistry(filter.WithStrict())),
		WithFilters(filter.Filter{Name: "upper", Fn: func(v any, _ *filter.Params) (any, error) { return v, nil }}),
	)
	assert.ErrorIs(t, err, dmerrors.ErrConfig, "strict registries reject collisions")
}

func TestMapper_MapReverse(t *testing.T) {
	tp := yamlTpl(t, `
name: "{{ user.name }}"
emails: "{{ users.*.email }}"
`)
	source := map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"users": []any{map[string]any{"email": "a@x.io"}, map[string]any{"email": "b@x.io"}},
	}

	m, err := New()
	require.NoError(t, err)
	forward, err := m.Map(source, nil, tp)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "emails": []any{"a@x.io", "b@x.io"}}, forward)

	back, err := m.MapReverse(forward, nil, tp)
	require.NoError(t, err)
	assert.Equal(t, source, back)

	_, err = MapReverse(forward, nil, yamlTpl(t, `a: "{{ x | upper }}"`))
	assert.ErrorIs(t, err, dmerrors.ErrNonInvertible)
}

func TestMapper_Concurrent(t *testing.T) {
	m, err := New(WithPathFilters(map[string]string{"items.*.n": "string"}))
	require.NoError(t, err)
	tp := yamlTpl(t, `
items:
  ORDER BY: v DESC
  "*":
    n: "{{ xs.*.v }}"
`)

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			source := map[string]any{"xs": []any{
				map[string]any{"v": i},
				map[string]any{"v": i + 1},
			}}
			out, err := m.Map(source, nil, tp)
			if err != nil {
				return err
			}
			want := map[string]any{"items": []any{
				map[string]any{"n": fmt.Sprint(i + 1)},
				map[string]any{"n": fmt.Sprint(i)},
			}}
			if !assert.ObjectsAreEqual(want, out) {
				return fmt.Errorf("run %d: got %v", i, out)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestMap_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	source := map[string]any{"items": []any{map[string]any{"v": "x"}}}

	_ = mapWith(t, source, yamlTpl(t, `
sums:
  GROUP BY: {fields: v, aggregations: {total: SUM(v)}}
  "*": "{{ items.* }}"
`), WithLogger(NewSlogAdapter(logger)))

	logs := buf.String()
	assert.Contains(t, logs, "mapping started")
	assert.Contains(t, logs, "block expanded")
	assert.Contains(t, logs, "level=WARN")
	assert.Equal(t, 1, strings.Count(logs, "aggregation skipped a value"))
}

func TestMap_Golden(t *testing.T) {
	for _, name := range []string{"catalog", "people"} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join("testdata", name)
			srcData, err := os.ReadFile(filepath.Join(dir, "source.yaml"))
			require.NoError(t, err)
			source, err := codec.Decode(srcData)
			require.NoError(t, err)
			tplData, err := os.ReadFile(filepath.Join(dir, "template.yaml"))
			require.NoError(t, err)

			out := mapWith(t, source, yamlTpl(t, string(tplData)))
			data, err := codec.EncodeJSON(out, "  ")
			require.NoError(t, err)

			g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
			g.Assert(t, name, append(data, '\n'))
		})
	}
}

func TestMap_ErrorsAreTyped(t *testing.T) {
	_, err := Map(map[string]any{}, nil, yamlTpl(t, `
items:
  ORDER BY: "{{ xs.*.v | nope }}"
  "*": "{{ xs.* }}"
`))
	// no elements, so the broken directive never runs
	require.NoError(t, err)

	_, err = Map(map[string]any{"xs": []any{1}}, nil, yamlTpl(t, `
items:
  ORDER BY: "{{ xs.* | nope }}"
  "*": "{{ xs.* }}"
`))
	require.Error(t, err)
	var te *dmerrors.TemplateError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "items", te.Path)
	assert.ErrorIs(t, err, dmerrors.ErrUnknownFilter)
}
