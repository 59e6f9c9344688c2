package container

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ReflectAdapter is the fallback for plain Go values: structs (exported
// fields, addressed by json tag, field name, or case-insensitive name),
// maps with string keys, slices and arrays. Pointers are followed.
//
// Structs without exported fields (time.Time, for example) are treated as
// scalars.
type ReflectAdapter struct{}

func (ReflectAdapter) Supports(v any) bool {
	rv, ok := deref(reflect.ValueOf(v))
	if !ok {
		return false
	}
	switch rv.Kind() {
	case reflect.Struct:
		return len(structFields(rv.Type())) > 0
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func (a ReflectAdapter) HasKey(v any, key string) bool {
	_, ok := a.GetKey(v, key)
	return ok
}

func (ReflectAdapter) GetKey(v any, key string) (any, bool) {
	rv, ok := deref(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Struct:
		f, ok := lookupField(rv, key)
		if !ok {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Map:
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := ParseIndex(key)
		if !ok || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

func (ReflectAdapter) ToAssociative(v any) (*Associative, bool) {
	rv, ok := deref(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}
	out := NewAssociative()
	switch rv.Kind() {
	case reflect.Struct:
		for _, sf := range structFields(rv.Type()) {
			fv, err := rv.FieldByIndexErr(sf.field.Index)
			if err != nil || !fv.CanInterface() {
				continue
			}
			out.Set(sf.name, fv.Interface())
		}
	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		for _, k := range keys {
			out.Set(k.String(), rv.MapIndex(k).Interface())
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out.Set(strconv.Itoa(i), rv.Index(i).Interface())
		}
	default:
		return nil, false
	}
	return out, true
}

// SetKey writes through pointers to structs, into string-keyed maps, and into
// slices (growing them with zero values when needed).
func (ReflectAdapter) SetKey(v any, key string, value any) (any, error) {
	orig := reflect.ValueOf(v)
	rv, ok := deref(orig)
	if !ok {
		return v, fmt.Errorf("cannot write into nil %T", v)
	}
	switch rv.Kind() {
	case reflect.Struct:
		if !rv.CanAddr() {
			return v, fmt.Errorf("cannot write field %q into non-pointer struct %T", key, v)
		}
		f, ok := lookupField(rv, key)
		if !ok {
			return v, fmt.Errorf("%T has no field %q", v, key)
		}
		if err := assign(f, value); err != nil {
			return v, fmt.Errorf("field %q: %w", key, err)
		}
		return v, nil
	case reflect.Map:
		if rv.IsNil() {
			return v, fmt.Errorf("cannot write into nil %T", v)
		}
		elem := reflect.New(rv.Type().Elem()).Elem()
		if err := assign(elem, value); err != nil {
			return v, fmt.Errorf("key %q: %w", key, err)
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), elem)
		return v, nil
	case reflect.Slice:
		idx, ok := ParseIndex(key)
		if !ok {
			return v, fmt.Errorf("list index must be a non-negative integer, got %q", key)
		}
		if idx >= rv.Len() {
			grown := reflect.AppendSlice(rv, reflect.MakeSlice(rv.Type(), idx-rv.Len()+1, idx-rv.Len()+1))
			if err := assign(grown.Index(idx), value); err != nil {
				return v, err
			}
			if orig.Kind() == reflect.Pointer && rv.CanSet() {
				rv.Set(grown)
				return v, nil
			}
			return grown.Interface(), nil
		}
		if err := assign(rv.Index(idx), value); err != nil {
			return v, err
		}
		return v, nil
	}
	return v, fmt.Errorf("cannot write key %q into %T", key, v)
}

// DeleteKey zeroes struct fields, deletes map keys and removes slice elements.
func (ReflectAdapter) DeleteKey(v any, key string) (any, error) {
	orig := reflect.ValueOf(v)
	rv, ok := deref(orig)
	if !ok {
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Struct:
		if f, ok := lookupField(rv, key); ok && f.CanSet() {
			f.Set(reflect.Zero(f.Type()))
		}
		return v, nil
	case reflect.Map:
		if !rv.IsNil() {
			rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), reflect.Value{})
		}
		return v, nil
	case reflect.Slice:
		idx, ok := ParseIndex(key)
		if !ok || idx >= rv.Len() {
			return v, nil
		}
		shrunk := reflect.AppendSlice(rv.Slice(0, idx), rv.Slice(idx+1, rv.Len()))
		if orig.Kind() == reflect.Pointer && rv.CanSet() {
			rv.Set(shrunk)
			return v, nil
		}
		return shrunk.Interface(), nil
	}
	return v, fmt.Errorf("cannot delete key %q from %T", key, v)
}

// TypeName returns the concrete Go type name used by structure introspection.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "null"
	}
	return t.String()
}

// IsStruct reports whether v is (a pointer to) a struct with exported fields.
func IsStruct(v any) bool {
	rv, ok := deref(reflect.ValueOf(v))
	return ok && rv.Kind() == reflect.Struct && len(structFields(rv.Type())) > 0
}

type namedField struct {
	name  string
	field reflect.StructField
}

func structFields(t reflect.Type) []namedField {
	var out []namedField
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous && f.Type.Kind() == reflect.Struct {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out = append(out, namedField{name: name, field: f})
	}
	return out
}

func lookupField(rv reflect.Value, key string) (reflect.Value, bool) {
	fields := structFields(rv.Type())
	match := func(pred func(namedField) bool) (reflect.Value, bool) {
		for _, sf := range fields {
			if pred(sf) {
				fv, err := rv.FieldByIndexErr(sf.field.Index)
				if err != nil || !fv.CanInterface() {
					return reflect.Value{}, false
				}
				return fv, true
			}
		}
		return reflect.Value{}, false
	}
	if fv, ok := match(func(sf namedField) bool { return sf.name == key }); ok {
		return fv, true
	}
	if fv, ok := match(func(sf namedField) bool { return sf.field.Name == key }); ok {
		return fv, true
	}
	return match(func(sf namedField) bool { return strings.EqualFold(sf.field.Name, key) })
}

func deref(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func assign(dst reflect.Value, value any) error {
	if !dst.CanSet() {
		return fmt.Errorf("value of type %s is not settable", dst.Type())
	}
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && (dst.Kind() != reflect.String || src.Kind() == reflect.String):
		// Integer to string conversion yields a rune, never what a mapping wants.
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", value, dst.Type())
	}
	return nil
}

var (
	_ Adapter = ReflectAdapter{}
	_ Writer  = ReflectAdapter{}
)

func reflectValue(v any) reflect.Value {
	return reflect.ValueOf(v)
}

func isSequenceKind(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

// Addressable returns a pointer to a copy of v when v is a struct value, so
// the copy can be written into. The boolean reports whether a copy was made.
func Addressable(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Struct || len(structFields(rv.Type())) == 0 {
		return v, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface(), true
}

// Indirect undoes Addressable.
func Indirect(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

// ElementZero returns a fresh value of the type stored under key in a typed
// container (struct field, typed map or slice element). Pointer types are
// allocated. The boolean is false for untyped containers.
func ElementZero(v any, key string) (any, bool) {
	rv, ok := deref(reflect.ValueOf(v))
	if !ok {
		return nil, false
	}
	var t reflect.Type
	switch rv.Kind() {
	case reflect.Struct:
		f, ok := lookupField(rv, key)
		if !ok {
			return nil, false
		}
		t = f.Type()
	case reflect.Map, reflect.Slice, reflect.Array:
		t = rv.Type().Elem()
	default:
		return nil, false
	}
	switch t.Kind() {
	case reflect.Interface:
		return nil, false
	case reflect.Pointer:
		return reflect.New(t.Elem()).Interface(), true
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), true
	}
	return reflect.Zero(t).Interface(), true
}

// IsNil reports whether v is nil or a nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
