// Package compare orders and equates loosely typed values the way query
// directives and collection filters need: numbers compare numerically
// whatever their Go type, numeric strings count as numbers, and nil sorts
// before everything else.
package compare

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Number converts v to float64 when it is numeric. Numeric strings are
// accepted; booleans and nil are not.
func Number(v any) (float64, bool) {
	switch val := v.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// IsIntegral reports whether v is a Go integer type.
func IsIntegral(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Int64 returns v as an int64 when it is a Go integer that fits.
func Int64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

// Compare returns -1, 0 or 1. nil sorts first. Two numeric values compare
// numerically, two times chronologically, everything else by string form.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if an, ok := Number(a); ok {
		if bn, ok := Number(b); ok {
			return cmpFloat(an, bn)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(String(a), String(b))
}

// Equal reports whether a and b are equal under Compare, falling back to
// deep equality for containers.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			bb, ok = parseBool(b)
		}
		return ok && ab == bb
	}
	if _, ok := b.(bool); ok {
		return Equal(b, a)
	}
	if !scalar(a) || !scalar(b) {
		return reflect.DeepEqual(a, b)
	}
	return Compare(a, b) == 0
}

// String renders v for string comparison and concatenation. nil is "".
func String(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return reflect.ValueOf(v).String()
	}
	return s
}

func parseBool(v any) (bool, bool) {
	s, ok := v.(string)
	if !ok {
		return false, false
	}
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func scalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		_, isTime := v.(time.Time)
		return isTime
	}
	return true
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
