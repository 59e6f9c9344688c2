package container

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Associative is the ordered key/value view every container can be flattened to.
type Associative = orderedmap.OrderedMap[string, any]

// NewAssociative returns an empty ordered key/value map.
func NewAssociative() *Associative {
	return orderedmap.New[string, any]()
}

// Adapter exposes one container kind to path traversal.
//
// Implementations are stateless views over values owned by the caller.
// ToAssociative may return the container itself when it is already an
// *Associative; callers must not modify the result.
type Adapter interface {
	// Supports reports whether the adapter understands v.
	Supports(v any) bool
	// HasKey reports whether key exists in v.
	HasKey(v any, key string) bool
	// GetKey returns the value stored under key.
	GetKey(v any, key string) (any, bool)
	// ToAssociative flattens v into ordered key/value pairs.
	// The boolean is false when v cannot be iterated.
	ToAssociative(v any) (*Associative, bool)
}

// Writer is implemented by adapters whose containers can be modified.
//
// Both methods return the container that must be stored back into the
// parent. It differs from v when a slice had to grow or shrink.
type Writer interface {
	SetKey(v any, key string, value any) (any, error)
	DeleteKey(v any, key string) (any, error)
}

// Collection is an ORM-style collection of records.
type Collection interface {
	Items() []any
}

// Entity is an ORM-style record exposing its attributes.
type Entity interface {
	Attributes() map[string]any
}

// MutableEntity is an Entity that accepts attribute writes.
type MutableEntity interface {
	Entity
	SetAttribute(key string, value any)
	UnsetAttribute(key string)
}

// Accessible is implemented by types that adapt themselves.
type Accessible interface {
	HasKey(key string) bool
	GetKey(key string) (any, bool)
	ToAssociative() *Associative
}

// ParseIndex parses a canonical non-negative decimal list index.
// "01", "+1" and "-1" are rejected so that index keys round-trip through strconv.Itoa.
func ParseIndex(key string) (int, bool) {
	if key == "" || len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}
