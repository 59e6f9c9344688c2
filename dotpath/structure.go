package dotpath

import (
	"reflect"
	"slices"
	"strings"

	"github.com/erraggy/dotmap/container"
)

// TypeKey holds a struct's Go type name in nested structure output.
const TypeKey = "@type"

// Type names reported by Structure.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeNull   = "null"
	TypeMap    = "map"
	TypeList   = "list"
)

// Structure describes the shape of root as a flat map from dot path to type.
//
// Lists are described once under a "*" segment with the shapes of all their
// elements merged; leaves whose types disagree get a sorted union such as
// "int|string". Structs report their Go type name at their own path (or under
// "@type" for the root) and are described field by field.
func (a *Accessor) Structure(root any) map[string]string {
	out := make(map[string]string)
	flattenShape(a.shape(root), "", out)
	return out
}

// StructureMultidimensional is Structure as a nested map mirroring root.
// Struct type names appear under "@type".
func (a *Accessor) StructureMultidimensional(root any) map[string]any {
	switch s := a.shape(root).(type) {
	case map[string]any:
		return s
	case string:
		return map[string]any{TypeKey: s}
	}
	return map[string]any{}
}

// shape returns either a type string or a map[string]any of child shapes.
func (a *Accessor) shape(v any) any {
	if v == nil {
		return TypeNull
	}
	if leaf, ok := scalarType(v); ok {
		return leaf
	}
	if !a.adapters.IsContainer(v) {
		return container.TypeName(v)
	}
	entries, ok := a.adapters.ToAssociative(v)
	if !ok {
		return container.TypeName(v)
	}

	if a.adapters.IsList(v) {
		if entries.Len() == 0 {
			return TypeList
		}
		var merged any
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			merged = mergeShapes(merged, a.shape(pair.Value))
		}
		return map[string]any{Wildcard: merged}
	}

	out := make(map[string]any, entries.Len()+1)
	if container.IsStruct(v) {
		out[TypeKey] = container.TypeName(v)
	} else if entries.Len() == 0 {
		return TypeMap
	}
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = a.shape(pair.Value)
	}
	return out
}

func scalarType(v any) (string, bool) {
	switch v.(type) {
	case string:
		return TypeString, true
	case bool:
		return TypeBool, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt, true
	case float32, float64:
		return TypeFloat, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return TypeString, true
	case reflect.Bool:
		return TypeBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, true
	case reflect.Float32, reflect.Float64:
		return TypeFloat, true
	}
	return "", false
}

// mergeShapes combines the shapes of two list elements.
func mergeShapes(a, b any) any {
	if a == nil {
		return b
	}
	am, aIsMap := a.(map[string]any)
	bm, bIsMap := b.(map[string]any)
	switch {
	case aIsMap && bIsMap:
		out := make(map[string]any, len(am)+len(bm))
		for k, v := range am {
			out[k] = v
		}
		for k, v := range bm {
			out[k] = mergeShapes(out[k], v)
		}
		return out
	case aIsMap:
		return union(shapeName(am), b.(string))
	case bIsMap:
		return union(a.(string), shapeName(bm))
	default:
		return union(a.(string), b.(string))
	}
}

func shapeName(m map[string]any) string {
	if t, ok := m[TypeKey].(string); ok {
		return t
	}
	if _, ok := m[Wildcard]; ok && len(m) == 1 {
		return TypeList
	}
	return TypeMap
}

func union(a, b string) string {
	parts := append(strings.Split(a, "|"), strings.Split(b, "|")...)
	slices.Sort(parts)
	return strings.Join(slices.Compact(parts), "|")
}

func flattenShape(shape any, prefix string, out map[string]string) {
	m, ok := shape.(map[string]any)
	if !ok {
		out[prefix] = shape.(string)
		return
	}
	for k, v := range m {
		if k == TypeKey {
			if prefix == "" {
				out[TypeKey] = v.(string)
			} else {
				out[prefix] = v.(string)
			}
			continue
		}
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		flattenShape(v, key, out)
	}
}

// Structure describes root with the default accessor.
func Structure(root any) map[string]string {
	return defaultAccessor.Structure(root)
}

// StructureMultidimensional describes root as a nested map with the default accessor.
func StructureMultidimensional(root any) map[string]any {
	return defaultAccessor.StructureMultidimensional(root)
}
