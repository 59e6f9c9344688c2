package dotpath

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ResultSet maps full resolved paths to the values a wildcard read found
// there. Keys are unique and kept in traversal order.
type ResultSet struct {
	pattern *Path
	entries *orderedmap.OrderedMap[string, any]
}

// NewResultSet creates an empty ResultSet for pattern. A nil pattern is
// allowed for hand-built sets; Captures then falls back to ordinal positions.
func NewResultSet(pattern *Path) *ResultSet {
	return &ResultSet{pattern: pattern, entries: orderedmap.New[string, any]()}
}

// Pattern returns the path that produced the set, or nil.
func (r *ResultSet) Pattern() *Path {
	return r.pattern
}

// Add stores value under key, replacing any previous value for key.
func (r *ResultSet) Add(key string, value any) {
	r.entries.Set(key, value)
}

// Get returns the value stored under key.
func (r *ResultSet) Get(key string) (any, bool) {
	return r.entries.Get(key)
}

// Len returns the number of entries.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return r.entries.Len()
}

// Keys returns the entry keys in order.
func (r *ResultSet) Keys() []string {
	keys := make([]string, 0, r.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns the entry values in order.
func (r *ResultSet) Values() []any {
	values := make([]any, 0, r.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}

// Each calls fn for every entry in order until fn returns false.
func (r *ResultSet) Each(fn func(key string, value any) bool) {
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Transform returns a new set with fn applied to every value.
func (r *ResultSet) Transform(fn func(key string, value any) (any, error)) (*ResultSet, error) {
	out := NewResultSet(r.pattern)
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		v, err := fn(pair.Key, pair.Value)
		if err != nil {
			return nil, err
		}
		out.entries.Set(pair.Key, v)
	}
	return out, nil
}

// Captures returns the keys matched by each wildcard for the entry at key.
// Entries of a set without a pattern capture their ordinal position.
func (r *ResultSet) Captures(key string) []string {
	if r.pattern != nil {
		if c, ok := r.pattern.Captures(key); ok {
			return c
		}
	}
	i := 0
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == key {
			return []string{strconv.Itoa(i)}
		}
		i++
	}
	return nil
}

// ToMap copies the entries into a plain map.
func (r *ResultSet) ToMap() map[string]any {
	out := make(map[string]any, r.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// MarshalJSON encodes the set as a JSON object in traversal order.
func (r *ResultSet) MarshalJSON() ([]byte, error) {
	return r.entries.MarshalJSON()
}
