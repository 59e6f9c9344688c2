package compare

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/erraggy/dotmap/container"
)

// Hash returns a structural hash of v. Numbers and numeric strings hash by
// value, so 1, 1.0 and "1" collide as they do under Equal. Ordered maps
// hash like plain maps.
func Hash(v any) (uint64, error) {
	return hashstructure.Hash(canonical(v), hashstructure.FormatV2, nil)
}

func canonical(v any) any {
	switch val := v.(type) {
	case nil, bool:
		return v
	case string:
		if n, ok := Number(val); ok {
			return n
		}
		return v
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = canonical(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = canonical(e)
		}
		return out
	case *container.Associative:
		out := make(map[string]any, val.Len())
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = canonical(pair.Value)
		}
		return out
	}
	if n, ok := Number(v); ok {
		return n
	}
	return v
}

