package filter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/itchyny/gojq"
	"github.com/ohler55/ojg/jp"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/cache"
)

var (
	jqCodes   = cache.New[*gojq.Code]()
	jsonPaths = cache.New[jp.Expr]()
)

// ClearQueryCache drops every compiled jq program and JSONPath expression.
func ClearQueryCache() {
	jqCodes.Clear()
	jsonPaths.Clear()
}

func compileJQ(program string) (*gojq.Code, error) {
	return jqCodes.GetOrLoad(program, func() (*gojq.Code, error) {
		query, err := gojq.Parse(program)
		if err != nil {
			return nil, err
		}
		return gojq.Compile(query)
	})
}

// jq runs a jq program over the value. A single output is returned as is,
// several outputs as a list, no output as nil.
func jq(v any, p *Params) (any, error) {
	program := strings.TrimSpace(p.StringArg(0, ""))
	if program == "" {
		return nil, fmt.Errorf("jq needs a program argument")
	}
	code, err := compileJQ(program)
	if err != nil {
		return nil, fmt.Errorf("invalid jq program %q: %w", program, err)
	}

	iter := code.Run(plain(v))
	var results []any
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := value.(error); isErr {
			return nil, fmt.Errorf("jq %q: %w", program, err)
		}
		results = append(results, value)
	}
	return collapse(results), nil
}

// jsonPath evaluates a JSONPath expression over the value, collapsing the
// matches like jq.
func jsonPath(v any, p *Params) (any, error) {
	raw := strings.TrimSpace(p.StringArg(0, ""))
	if raw == "" {
		return nil, fmt.Errorf("jsonpath needs an expression argument")
	}
	x, err := jsonPaths.GetOrLoad(raw, func() (jp.Expr, error) {
		return jp.ParseString(raw)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", raw, err)
	}
	return collapse(x.Get(plain(v))), nil
}

func collapse(results []any) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	}
	return results
}

// plain converts v to the decoded-JSON shapes gojq and ojg operate on:
// nil, bool, int, float64, string, []any and map[string]any.
func plain(v any) any {
	switch val := v.(type) {
	case nil, bool, int, float64, string:
		return v
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = plain(e)
		}
		return out
	case *container.Associative:
		out := make(map[string]any, val.Len())
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case *dotpath.ResultSet:
		return plain(val.Values())
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float32:
		return float64(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Sprint(v)
	}
	return plain(decoded)
}
