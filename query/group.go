package query

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/internal/compare"
)

// Function is an aggregation function.
type Function string

// Aggregation functions.
const (
	Count   Function = "COUNT"
	Sum     Function = "SUM"
	Avg     Function = "AVG"
	Min     Function = "MIN"
	Max     Function = "MAX"
	First   Function = "FIRST"
	Last    Function = "LAST"
	Collect Function = "COLLECT"
	Concat  Function = "CONCAT"
)

// ParseFunction normalizes a function name.
func ParseFunction(s string) (Function, bool) {
	switch f := Function(strings.ToUpper(strings.TrimSpace(s))); f {
	case Count, Sum, Avg, Min, Max, First, Last, Collect, Concat:
		return f, true
	}
	return "", false
}

// Aggregation computes one value per group.
type Aggregation struct {
	// Name is the output key in the group row.
	Name     string
	Function Function
	// Field is the value read from each member. COUNT ignores it.
	Field string
	// Separator joins CONCAT values. Defaults to ",".
	Separator string
}

// GroupField is one grouping key.
type GroupField struct {
	// Name is the output key in the group row.
	Name  string
	Field string
}

// GroupBy describes a GROUP BY directive.
type GroupBy struct {
	Fields       []GroupField
	Aggregations []Aggregation
}

// Group is attached to the rows GROUP BY produces.
type Group struct {
	// Row holds the group fields and aggregation results.
	Row map[string]any
	// Members are the elements of the group in encounter order.
	Members []Element
}

// ParseGroupBy accepts a field, a comma-separated list of fields, a list of
// fields, or a map with "fields" and "aggregations" keys. Without declared
// aggregations every group gets a "count".
func ParseGroupBy(v any) (*GroupBy, error) {
	if v == nil {
		return nil, nil
	}
	g := &GroupBy{}

	if entries, ok := asMap(v); ok {
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			switch strings.ToLower(strings.TrimSpace(pair.Key)) {
			case "fields", "field", "by":
				fields, err := parseGroupFields(pair.Value)
				if err != nil {
					return nil, err
				}
				g.Fields = append(g.Fields, fields...)
			case "aggregations", "aggregate", "select":
				aggs, err := parseAggregations(pair.Value)
				if err != nil {
					return nil, err
				}
				g.Aggregations = append(g.Aggregations, aggs...)
			default:
				return nil, fmt.Errorf("GROUP BY: unknown key %q, expected fields or aggregations", pair.Key)
			}
		}
	} else {
		fields, err := parseGroupFields(v)
		if err != nil {
			return nil, err
		}
		g.Fields = fields
	}

	if len(g.Fields) == 0 {
		return nil, fmt.Errorf("GROUP BY needs at least one field")
	}
	if len(g.Aggregations) == 0 {
		g.Aggregations = []Aggregation{{Name: "count", Function: Count}}
	}
	return g, nil
}

func parseGroupFields(v any) ([]GroupField, error) {
	switch val := v.(type) {
	case string:
		var fields []GroupField
		for _, part := range splitOutsideBraces(val) {
			if field := strings.TrimSpace(part); field != "" {
				fields = append(fields, GroupField{Name: FieldName(field), Field: field})
			}
		}
		return fields, nil
	}
	if list, ok := asList(v); ok {
		var fields []GroupField
		for _, item := range list {
			f, err := parseGroupFields(item)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f...)
		}
		return fields, nil
	}
	if entries, ok := asMap(v); ok {
		fields := make([]GroupField, 0, entries.Len())
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			field, ok := pair.Value.(string)
			if !ok {
				return nil, fmt.Errorf("GROUP BY field %s must be a string, got %T", pair.Key, pair.Value)
			}
			fields = append(fields, GroupField{Name: pair.Key, Field: field})
		}
		return fields, nil
	}
	return nil, fmt.Errorf("GROUP BY fields must be a string, list or map, got %T", v)
}

func parseAggregations(v any) ([]Aggregation, error) {
	entries, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("aggregations must be a map of name to function, got %T", v)
	}
	aggs := make([]Aggregation, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		a, err := ParseAggregation(pair.Key, pair.Value)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, nil
}

var callSyntax = regexp.MustCompile(`^\s*(\w+)\s*\((.*)\)\s*$`)

// ParseAggregation builds an aggregation named name from "COUNT",
// "SUM(price)", "CONCAT(name, '-')", [SUM, price], [CONCAT, name, "-"] or
// {function: SUM, field: price, separator: "-"}.
func ParseAggregation(name string, v any) (Aggregation, error) {
	a := Aggregation{Name: name, Separator: ","}
	var parts []any

	switch val := v.(type) {
	case string:
		if m := callSyntax.FindStringSubmatch(val); m != nil {
			parts = []any{m[1]}
			for _, arg := range splitList(m[2]) {
				if s := strings.TrimSpace(arg); s != "" {
					parts = append(parts, operand(s))
				}
			}
		} else {
			parts = []any{val}
		}
	default:
		if list, ok := asList(v); ok {
			parts = list
		} else if entries, ok := asMap(v); ok {
			fn, _ := entries.Get("function")
			field, _ := entries.Get("field")
			parts = []any{fn, field}
			if sep, ok := entries.Get("separator"); ok {
				parts = append(parts, sep)
			}
		} else {
			return a, fmt.Errorf("aggregation %s: unsupported definition %T", name, v)
		}
	}

	if len(parts) == 0 {
		return a, fmt.Errorf("aggregation %s: empty definition", name)
	}
	fn, ok := ParseFunction(cast.ToString(parts[0]))
	if !ok {
		return a, fmt.Errorf("aggregation %s: unknown function %v", name, parts[0])
	}
	a.Function = fn
	if len(parts) > 1 && parts[1] != nil {
		a.Field = cast.ToString(parts[1])
	}
	if len(parts) > 2 && parts[2] != nil {
		a.Separator = cast.ToString(parts[2])
	}
	if a.Field == "" && fn != Count {
		return a, fmt.Errorf("aggregation %s: %s needs a field", name, fn)
	}
	return a, nil
}

// compute evaluates a over members. Values SUM, AVG, MIN and MAX cannot
// use are skipped and reported as *dmerrors.AggregationError warnings.
func (a *Aggregation) compute(members []Element, resolve Resolver) (any, []error, error) {
	if a.Function == Count {
		return len(members), nil, nil
	}

	values := make([]any, len(members))
	for i, m := range members {
		v, err := resolve(m, a.Field)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
	}

	switch a.Function {
	case First:
		if len(values) == 0 {
			return nil, nil, nil
		}
		return values[0], nil, nil
	case Last:
		if len(values) == 0 {
			return nil, nil, nil
		}
		return values[len(values)-1], nil, nil
	case Collect:
		return values, nil, nil
	case Concat:
		parts := make([]string, 0, len(values))
		for _, v := range values {
			if v != nil {
				parts = append(parts, compare.String(v))
			}
		}
		return strings.Join(parts, a.Separator), nil, nil
	}

	var (
		warnings []error
		nums     []float64
		raw      []any
		integral = true
	)
	for i, v := range values {
		if v == nil {
			continue
		}
		n, ok := compare.Number(v)
		if !ok {
			warnings = append(warnings, &dmerrors.AggregationError{
				Function: string(a.Function),
				Name:     a.Name,
				Key:      members[i].Key,
				Value:    v,
			})
			continue
		}
		integral = integral && compare.IsIntegral(v)
		nums = append(nums, n)
		raw = append(raw, v)
	}

	switch a.Function {
	case Sum:
		if integral {
			if total, ok := sumInts(raw); ok {
				return int(total), warnings, nil
			}
		}
		var total float64
		for _, n := range nums {
			total += n
		}
		return total, warnings, nil
	case Avg:
		if len(nums) == 0 {
			return nil, warnings, nil
		}
		var total float64
		for _, n := range nums {
			total += n
		}
		return total / float64(len(nums)), warnings, nil
	case Min, Max:
		if len(nums) == 0 {
			return nil, warnings, nil
		}
		best := 0
		for i := 1; i < len(nums); i++ {
			if (a.Function == Min && nums[i] < nums[best]) || (a.Function == Max && nums[i] > nums[best]) {
				best = i
			}
		}
		return raw[best], warnings, nil
	}
	return nil, warnings, fmt.Errorf("aggregation %s: unsupported function %s", a.Name, a.Function)
}

// sumInts adds integer values exactly. It reports false when a value does
// not fit an int64 or the sum overflows.
func sumInts(values []any) (int64, bool) {
	var total int64
	for _, v := range values {
		n, ok := compare.Int64(v)
		if !ok {
			return 0, false
		}
		if (n > 0 && total > math.MaxInt64-n) || (n < 0 && total < math.MinInt64-n) {
			return 0, false
		}
		total += n
	}
	return total, true
}
