package container

import (
	"fmt"
	"slices"
	"strconv"
)

// AccessibleAdapter delegates to types implementing Accessible.
type AccessibleAdapter struct{}

func (AccessibleAdapter) Supports(v any) bool {
	_, ok := v.(Accessible)
	return ok
}

func (AccessibleAdapter) HasKey(v any, key string) bool {
	return v.(Accessible).HasKey(key)
}

func (AccessibleAdapter) GetKey(v any, key string) (any, bool) {
	return v.(Accessible).GetKey(key)
}

func (AccessibleAdapter) ToAssociative(v any) (*Associative, bool) {
	m := v.(Accessible).ToAssociative()
	return m, m != nil
}

// EntityAdapter reads ORM-style records through their attribute map.
// Writes require the record to implement MutableEntity.
type EntityAdapter struct{}

func (EntityAdapter) Supports(v any) bool {
	_, ok := v.(Entity)
	return ok
}

func (EntityAdapter) HasKey(v any, key string) bool {
	_, ok := v.(Entity).Attributes()[key]
	return ok
}

func (EntityAdapter) GetKey(v any, key string) (any, bool) {
	val, ok := v.(Entity).Attributes()[key]
	return val, ok
}

func (EntityAdapter) ToAssociative(v any) (*Associative, bool) {
	return MapAdapter{}.ToAssociative(v.(Entity).Attributes())
}

func (EntityAdapter) SetKey(v any, key string, value any) (any, error) {
	me, ok := v.(MutableEntity)
	if !ok {
		return v, fmt.Errorf("%T does not accept attribute writes", v)
	}
	me.SetAttribute(key, value)
	return v, nil
}

func (EntityAdapter) DeleteKey(v any, key string) (any, error) {
	me, ok := v.(MutableEntity)
	if !ok {
		return v, fmt.Errorf("%T does not accept attribute writes", v)
	}
	me.UnsetAttribute(key)
	return v, nil
}

// CollectionAdapter reads ORM-style collections as index-keyed lists.
// Collections are read-only: writes go through a materialized []any.
type CollectionAdapter struct{}

func (CollectionAdapter) Supports(v any) bool {
	_, ok := v.(Collection)
	return ok
}

func (CollectionAdapter) HasKey(v any, key string) bool {
	_, ok := CollectionAdapter{}.GetKey(v, key)
	return ok
}

func (CollectionAdapter) GetKey(v any, key string) (any, bool) {
	items := v.(Collection).Items()
	idx, ok := ParseIndex(key)
	if !ok || idx >= len(items) {
		return nil, false
	}
	return items[idx], true
}

func (CollectionAdapter) ToAssociative(v any) (*Associative, bool) {
	out := NewAssociative()
	for i, item := range v.(Collection).Items() {
		out.Set(strconv.Itoa(i), item)
	}
	return out, true
}

// SetKey copies the collection into a []any and writes into the copy.
func (CollectionAdapter) SetKey(v any, key string, value any) (any, error) {
	items := slices.Clone(v.(Collection).Items())
	return SliceAdapter{}.SetKey(items, key, value)
}

// DeleteKey copies the collection into a []any and removes from the copy.
func (CollectionAdapter) DeleteKey(v any, key string) (any, error) {
	items := slices.Clone(v.(Collection).Items())
	return SliceAdapter{}.DeleteKey(items, key)
}

var (
	_ Adapter = AccessibleAdapter{}
	_ Adapter = EntityAdapter{}
	_ Writer  = EntityAdapter{}
	_ Adapter = CollectionAdapter{}
	_ Writer  = CollectionAdapter{}
)
