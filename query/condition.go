package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/internal/compare"
)

// Operator is a comparison operator usable in WHERE and HAVING.
type Operator string

// Supported operators. "<>" and "==" are accepted as spellings of OpNe and OpEq.
const (
	OpEq         Operator = "="
	OpNe         Operator = "!="
	OpGt         Operator = ">"
	OpLt         Operator = "<"
	OpGe         Operator = ">="
	OpLe         Operator = "<="
	OpBetween    Operator = "BETWEEN"
	OpNotBetween Operator = "NOT BETWEEN"
	OpIn         Operator = "IN"
	OpNotIn      Operator = "NOT IN"
	OpLike       Operator = "LIKE"
	OpNotLike    Operator = "NOT LIKE"
	OpIsNull     Operator = "IS NULL"
	OpIsNotNull  Operator = "IS NOT NULL"
)

var operators = map[string]Operator{
	"=": OpEq, "==": OpEq, "!=": OpNe, "<>": OpNe,
	">": OpGt, "<": OpLt, ">=": OpGe, "<=": OpLe,
	"BETWEEN": OpBetween, "NOT BETWEEN": OpNotBetween,
	"IN": OpIn, "NOT IN": OpNotIn,
	"LIKE": OpLike, "NOT LIKE": OpNotLike,
	"IS NULL": OpIsNull, "IS NOT NULL": OpIsNotNull,
}

// ParseOperator normalizes an operator spelling. Case and inner whitespace
// are ignored.
func ParseOperator(s string) (Operator, bool) {
	op, ok := operators[strings.ToUpper(strings.Join(strings.Fields(s), " "))]
	return op, ok
}

// arity returns the number of operands op takes; -1 means one or more.
func (op Operator) arity() int {
	switch op {
	case OpIsNull, OpIsNotNull:
		return 0
	case OpBetween, OpNotBetween:
		return 2
	case OpIn, OpNotIn:
		return -1
	}
	return 1
}

// Logic joins the terms of a condition group.
type Logic string

const (
	And Logic = "AND"
	Or  Logic = "OR"
)

// Condition is either a predicate (Field set) or a group of terms joined
// by Logic.
type Condition struct {
	Logic Logic
	Terms []*Condition

	Field    string
	Operator Operator
	Values   []any

	like *regexp.Regexp
}

// Predicate builds a single comparison and validates its operand count.
func Predicate(field string, op Operator, values ...any) (*Condition, error) {
	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("condition field is empty")
	}
	if op == OpIn || op == OpNotIn || op == OpBetween || op == OpNotBetween {
		if len(values) == 1 {
			if list, ok := asList(values[0]); ok {
				values = list
			}
		}
	}
	switch n := op.arity(); {
	case n < 0 && len(values) == 0:
		return nil, fmt.Errorf("%s on %s needs at least one value", op, field)
	case n >= 0 && len(values) != n:
		return nil, fmt.Errorf("%s on %s needs %d value(s), got %d", op, field, n, len(values))
	}

	c := &Condition{Field: field, Operator: op, Values: values}
	if op == OpLike || op == OpNotLike {
		re, err := likePattern(compare.String(values[0]))
		if err != nil {
			return nil, err
		}
		c.like = re
	}
	return c, nil
}

// All joins terms with AND. Nil terms are dropped.
func All(terms ...*Condition) *Condition {
	return group(And, terms)
}

// Any joins terms with OR. Nil terms are dropped.
func Any(terms ...*Condition) *Condition {
	return group(Or, terms)
}

func group(logic Logic, terms []*Condition) *Condition {
	kept := make([]*Condition, 0, len(terms))
	for _, t := range terms {
		if t != nil {
			kept = append(kept, t)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &Condition{Logic: logic, Terms: kept}
}

// Fields returns every field the condition reads.
func (c *Condition) Fields() []string {
	if c == nil {
		return nil
	}
	if c.Field != "" {
		return []string{c.Field}
	}
	var out []string
	for _, t := range c.Terms {
		out = append(out, t.Fields()...)
	}
	return out
}

// Match evaluates the condition. A nil condition matches everything.
func (c *Condition) Match(resolve func(field string) (any, error)) (bool, error) {
	if c == nil {
		return true, nil
	}
	if c.Field == "" {
		for _, t := range c.Terms {
			ok, err := t.Match(resolve)
			if err != nil {
				return false, err
			}
			if c.Logic == Or && ok {
				return true, nil
			}
			if c.Logic != Or && !ok {
				return false, nil
			}
		}
		return c.Logic != Or || len(c.Terms) == 0, nil
	}

	v, err := resolve(c.Field)
	if err != nil {
		return false, err
	}
	return c.test(v), nil
}

func (c *Condition) test(v any) bool {
	switch c.Operator {
	case OpEq:
		return compare.Equal(v, c.Values[0])
	case OpNe:
		return !compare.Equal(v, c.Values[0])
	case OpIsNull:
		return v == nil
	case OpIsNotNull:
		return v != nil
	case OpIn, OpNotIn:
		found := false
		for _, want := range c.Values {
			if compare.Equal(v, want) {
				found = true
				break
			}
		}
		return found == (c.Operator == OpIn)
	case OpLike, OpNotLike:
		if v == nil {
			return false
		}
		return c.like.MatchString(compare.String(v)) == (c.Operator == OpLike)
	}

	// Ordering operators never match nil.
	if v == nil {
		return false
	}
	switch c.Operator {
	case OpGt:
		return c.Values[0] != nil && compare.Compare(v, c.Values[0]) > 0
	case OpLt:
		return c.Values[0] != nil && compare.Compare(v, c.Values[0]) < 0
	case OpGe:
		return c.Values[0] != nil && compare.Compare(v, c.Values[0]) >= 0
	case OpLe:
		return c.Values[0] != nil && compare.Compare(v, c.Values[0]) <= 0
	case OpBetween, OpNotBetween:
		in := compare.Compare(v, c.Values[0]) >= 0 && compare.Compare(v, c.Values[1]) <= 0
		return in == (c.Operator == OpBetween)
	}
	return false
}

// likePattern translates a LIKE pattern into a case-insensitive regexp.
// % matches any run, _ one character; a backslash escapes either.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		b.WriteString(`\\`)
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// ParseCondition builds a condition from directive data:
//
//	price: 100                      # price = 100
//	price: [">", 100]               # one predicate
//	price: [[">", 10], ["<", 50]]   # several, ANDed
//	price: {">": 10, "<": 50}       # same, keyed by operator
//	status: [a, b]                  # status IN (a, b)
//	AND: [{...}, {...}]             # explicit groups, nestable
//	OR: [{...}, {...}]
//	"price > 100"                   # string predicate
//
// Lists of any of these are ANDed.
func ParseCondition(v any) (*Condition, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *Condition:
		return val, nil
	case string:
		return parsePredicate(val)
	case bool:
		return nil, fmt.Errorf("condition must be a map, list or string, got %v", val)
	}

	if list, ok := asList(v); ok {
		terms := make([]*Condition, 0, len(list))
		for _, item := range list {
			c, err := ParseCondition(item)
			if err != nil {
				return nil, err
			}
			terms = append(terms, c)
		}
		return All(terms...), nil
	}

	entries, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("condition must be a map, list or string, got %T", v)
	}
	terms := make([]*Condition, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		c, err := entryCondition(pair.Key, pair.Value)
		if err != nil {
			return nil, err
		}
		terms = append(terms, c)
	}
	return All(terms...), nil
}

func entryCondition(key string, v any) (*Condition, error) {
	switch logic := Logic(strings.ToUpper(strings.TrimSpace(key))); logic {
	case And, Or:
		return parseGroup(logic, v)
	}
	return fieldCondition(key, v)
}

func parseGroup(logic Logic, v any) (*Condition, error) {
	var terms []*Condition
	if list, ok := asList(v); ok {
		for _, item := range list {
			c, err := ParseCondition(item)
			if err != nil {
				return nil, err
			}
			terms = append(terms, c)
		}
	} else if entries, ok := asMap(v); ok {
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			c, err := entryCondition(pair.Key, pair.Value)
			if err != nil {
				return nil, err
			}
			terms = append(terms, c)
		}
	} else {
		return nil, fmt.Errorf("%s expects a list of conditions, got %T", logic, v)
	}
	return group(logic, terms), nil
}

func fieldCondition(field string, v any) (*Condition, error) {
	if list, ok := asList(v); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("condition on %s is an empty list", field)
		}
		if _, nested := asList(list[0]); nested {
			terms := make([]*Condition, 0, len(list))
			for _, item := range list {
				inner, ok := asList(item)
				if !ok {
					return nil, fmt.Errorf("condition on %s mixes lists and values", field)
				}
				c, err := listPredicate(field, inner)
				if err != nil {
					return nil, err
				}
				terms = append(terms, c)
			}
			return All(terms...), nil
		}
		if s, ok := list[0].(string); ok {
			if _, isOp := ParseOperator(s); isOp {
				return listPredicate(field, list)
			}
		}
		return Predicate(field, OpIn, list...)
	}

	if entries, ok := asMap(v); ok {
		terms := make([]*Condition, 0, entries.Len())
		for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
			op, ok := ParseOperator(pair.Key)
			if !ok {
				return nil, fmt.Errorf("unknown operator %q on %s", pair.Key, field)
			}
			var values []any
			if op.arity() != 0 {
				values = []any{pair.Value}
			}
			c, err := Predicate(field, op, values...)
			if err != nil {
				return nil, err
			}
			terms = append(terms, c)
		}
		return All(terms...), nil
	}

	return Predicate(field, OpEq, v)
}

func listPredicate(field string, list []any) (*Condition, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("condition on %s is an empty list", field)
	}
	name, ok := list[0].(string)
	if !ok {
		return nil, fmt.Errorf("condition on %s must start with an operator, got %v", field, list[0])
	}
	op, ok := ParseOperator(name)
	if !ok {
		return nil, fmt.Errorf("unknown operator %q on %s", name, field)
	}
	return Predicate(field, op, list[1:]...)
}

var (
	symbolOp = regexp.MustCompile(`^(>=|<=|!=|<>|==|=|>|<)\s*`)
	wordOp   = regexp.MustCompile(`(?i)^(NOT\s+BETWEEN|BETWEEN|NOT\s+IN|IN|NOT\s+LIKE|LIKE|IS\s+NOT\s+NULL|IS\s+NULL)\b\s*`)
	andSep   = regexp.MustCompile(`(?i)\s+AND\s+`)
)

// parsePredicate parses "field OP operand". The field may be a {{ }}
// expression; operands are numbers, booleans, null, quoted or bare strings.
func parsePredicate(s string) (*Condition, error) {
	field, rest, err := splitField(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}

	var opText string
	if m := symbolOp.FindStringSubmatch(rest); m != nil {
		opText = m[1]
		rest = rest[len(m[0]):]
	} else if m := wordOp.FindStringSubmatch(rest); m != nil {
		opText = m[1]
		rest = rest[len(m[0]):]
	} else {
		return nil, fmt.Errorf("condition %q has no operator", s)
	}
	op, _ := ParseOperator(opText)
	rest = strings.TrimSpace(rest)

	var values []any
	switch op.arity() {
	case 0:
		if rest != "" {
			return nil, fmt.Errorf("condition %q: unexpected %q after %s", s, rest, op)
		}
	case 2:
		parts := andSep.Split(rest, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("condition %q: %s needs two operands joined by AND", s, op)
		}
		values = []any{operand(parts[0]), operand(parts[1])}
	case -1:
		inner := strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
		for _, part := range splitList(inner) {
			values = append(values, operand(part))
		}
	default:
		values = []any{operand(rest)}
	}
	return Predicate(field, op, values...)
}

func splitField(s string) (string, string, error) {
	if strings.HasPrefix(s, "{{") {
		end := strings.Index(s, "}}")
		if end < 0 {
			return "", "", fmt.Errorf("condition %q: unclosed {{", s)
		}
		return s[:end+2], strings.TrimSpace(s[end+2:]), nil
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '<' || r == '>' || r == '=' || r == '!'
	})
	if end <= 0 {
		return "", "", fmt.Errorf("condition %q has no field", s)
	}
	return s[:end], strings.TrimSpace(s[end:]), nil
}

// splitList splits on commas outside quotes.
func splitList(s string) []string {
	var (
		parts []string
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func operand(s string) any {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	switch strings.ToLower(s) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	return s
}

func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	reg := container.Default()
	if !reg.IsList(v) {
		return nil, false
	}
	entries, ok := reg.ToAssociative(v)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out, true
}

func asMap(v any) (*container.Associative, bool) {
	reg := container.Default()
	if v == nil || reg.IsList(v) {
		return nil, false
	}
	return reg.ToAssociative(v)
}
