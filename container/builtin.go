package container

import (
	"fmt"
	"slices"
	"strconv"
)

// MapAdapter handles map[string]any. Iteration order is sorted by key
// because Go maps carry no insertion order.
type MapAdapter struct{}

func (MapAdapter) Supports(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func (MapAdapter) HasKey(v any, key string) bool {
	_, ok := v.(map[string]any)[key]
	return ok
}

func (MapAdapter) GetKey(v any, key string) (any, bool) {
	val, ok := v.(map[string]any)[key]
	return val, ok
}

func (MapAdapter) ToAssociative(v any) (*Associative, bool) {
	m := v.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := NewAssociative()
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out, true
}

func (MapAdapter) SetKey(v any, key string, value any) (any, error) {
	m := v.(map[string]any)
	m[key] = value
	return m, nil
}

func (MapAdapter) DeleteKey(v any, key string) (any, error) {
	m := v.(map[string]any)
	delete(m, key)
	return m, nil
}

// SliceAdapter handles []any with canonical decimal index keys.
type SliceAdapter struct{}

func (SliceAdapter) Supports(v any) bool {
	_, ok := v.([]any)
	return ok
}

func (SliceAdapter) HasKey(v any, key string) bool {
	_, ok := SliceAdapter{}.GetKey(v, key)
	return ok
}

func (SliceAdapter) GetKey(v any, key string) (any, bool) {
	s := v.([]any)
	idx, ok := ParseIndex(key)
	if !ok || idx >= len(s) {
		return nil, false
	}
	return s[idx], true
}

func (SliceAdapter) ToAssociative(v any) (*Associative, bool) {
	s := v.([]any)
	out := NewAssociative()
	for i, elem := range s {
		out.Set(strconv.Itoa(i), elem)
	}
	return out, true
}

// SetKey writes s[key], growing the slice with nil padding when needed.
func (SliceAdapter) SetKey(v any, key string, value any) (any, error) {
	s := v.([]any)
	idx, ok := ParseIndex(key)
	if !ok {
		return s, fmt.Errorf("list index must be a non-negative integer, got %q", key)
	}
	if idx >= len(s) {
		s = append(s, make([]any, idx-len(s)+1)...)
	}
	s[idx] = value
	return s, nil
}

// DeleteKey removes s[key] and shifts the following elements down.
func (SliceAdapter) DeleteKey(v any, key string) (any, error) {
	s := v.([]any)
	idx, ok := ParseIndex(key)
	if !ok || idx >= len(s) {
		return s, nil
	}
	return slices.Delete(s, idx, idx+1), nil
}

// OrderedAdapter handles *Associative values, preserving insertion order.
type OrderedAdapter struct{}

func (OrderedAdapter) Supports(v any) bool {
	m, ok := v.(*Associative)
	return ok && m != nil
}

func (OrderedAdapter) HasKey(v any, key string) bool {
	_, ok := v.(*Associative).Get(key)
	return ok
}

func (OrderedAdapter) GetKey(v any, key string) (any, bool) {
	return v.(*Associative).Get(key)
}

func (OrderedAdapter) ToAssociative(v any) (*Associative, bool) {
	return v.(*Associative), true
}

func (OrderedAdapter) SetKey(v any, key string, value any) (any, error) {
	m := v.(*Associative)
	m.Set(key, value)
	return m, nil
}

func (OrderedAdapter) DeleteKey(v any, key string) (any, error) {
	m := v.(*Associative)
	m.Delete(key)
	return m, nil
}

var (
	_ Adapter = MapAdapter{}
	_ Writer  = MapAdapter{}
	_ Adapter = SliceAdapter{}
	_ Writer  = SliceAdapter{}
	_ Adapter = OrderedAdapter{}
	_ Writer  = OrderedAdapter{}
)
