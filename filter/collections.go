package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/internal/compare"
)

// toList returns the values of any iterable container, in order.
func toList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	entries, ok := container.Default().ToAssociative(v)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out, true
}

func join(v any, p *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := toList(v)
	if !ok {
		return compare.String(v), nil
	}
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = compare.String(e)
	}
	return strings.Join(parts, p.StringArg(0, ",")), nil
}

func first(v any, _ *Params) (any, error) {
	if s, ok := v.(string); ok {
		for _, r := range s {
			return string(r), nil
		}
		return "", nil
	}
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func last(v any, _ *Params) (any, error) {
	if s, ok := v.(string); ok {
		rs := []rune(s)
		if len(rs) == 0 {
			return "", nil
		}
		return string(rs[len(rs)-1]), nil
	}
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func count(v any, _ *Params) (any, error) {
	if v == nil {
		return 0, nil
	}
	if list, ok := toList(v); ok {
		return len(list), nil
	}
	return 1, nil
}

// unique keeps the first occurrence of every distinct value.
func unique(v any, _ *Params) (any, error) {
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	seen := make(map[uint64]struct{}, len(list))
	out := make([]any, 0, len(list))
	for _, e := range list {
		h, err := compare.Hash(e)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func sortList(v any, p *Params) (any, error) {
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	out := slices.Clone(list)
	desc := strings.EqualFold(p.StringArg(0, "asc"), "desc")
	slices.SortStableFunc(out, func(a, b any) int {
		if desc {
			return compare.Compare(b, a)
		}
		return compare.Compare(a, b)
	})
	return out, nil
}

func reverse(v any, _ *Params) (any, error) {
	if s, ok := v.(string); ok {
		rs := []rune(s)
		slices.Reverse(rs)
		return string(rs), nil
	}
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	out := slices.Clone(list)
	slices.Reverse(out)
	return out, nil
}

// flatten inlines nested lists. An optional depth limits how many levels are
// removed; the default flattens completely.
func flatten(v any, p *Params) (any, error) {
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	depth, err := p.IntArg(0, -1)
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	return flattenList(list, depth), nil
}

func flattenList(list []any, depth int) []any {
	out := make([]any, 0, len(list))
	for _, e := range list {
		if depth != 0 {
			if inner, ok := e.([]any); ok {
				out = append(out, flattenList(inner, depth-1)...)
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func keys(v any, _ *Params) (any, error) {
	entries, ok := container.Default().ToAssociative(v)
	if !ok {
		return nil, nil
	}
	_, isList := v.([]any)
	out := make([]any, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		if isList {
			i, _ := strconv.Atoi(pair.Key)
			out = append(out, i)
			continue
		}
		out = append(out, pair.Key)
	}
	return out, nil
}

func values(v any, _ *Params) (any, error) {
	list, ok := toList(v)
	if !ok {
		return nil, nil
	}
	return slices.Clone(list), nil
}

// slice takes an offset (negative counts from the end) and an optional length.
func slice(v any, p *Params) (any, error) {
	list, ok := toList(v)
	if !ok {
		return v, nil
	}
	start, err := p.IntArg(0, 0)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if start < 0 {
		start = max(len(list)+start, 0)
	}
	if start >= len(list) {
		return []any{}, nil
	}
	end := len(list)
	if _, ok := p.Arg(1); ok {
		n, err := p.IntArg(1, 0)
		if err != nil {
			return nil, fmt.Errorf("length: %w", err)
		}
		end = min(start+max(n, 0), len(list))
	}
	return slices.Clone(list[start:end]), nil
}
