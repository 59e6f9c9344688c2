package query

import (
	"fmt"
	"strings"
)

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Field string
	Desc  bool
}

// ParseOrderBy accepts "price DESC", "price DESC, name", a map of field to
// direction, or a list of any of these.
func ParseOrderBy(v any) ([]OrderKey, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		var keys []OrderKey
		for _, part := range splitOutsideBraces(val) {
			if strings.TrimSpace(part) == "" {
				continue
			}
			k, err := parseOrderString(part)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
		}
		return keys, nil
	}

	if list, ok := asList(v); ok {
		var keys []OrderKey
		for _, item := range list {
			k, err := ParseOrderBy(item)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k...)
		}
		return keys, nil
	}

	entries, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("ORDER BY must be a string, map or list, got %T", v)
	}
	keys := make([]OrderKey, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		dir, _ := pair.Value.(string)
		desc, err := parseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("ORDER BY %s: %w", pair.Key, err)
		}
		keys = append(keys, OrderKey{Field: pair.Key, Desc: desc})
	}
	return keys, nil
}

func parseOrderString(s string) (OrderKey, error) {
	s = strings.TrimSpace(s)
	field, dir := s, ""
	if i := strings.LastIndexAny(s, " \t"); i >= 0 && !strings.HasSuffix(s, "}}") {
		field, dir = strings.TrimSpace(s[:i]), s[i+1:]
	}
	desc, err := parseDirection(dir)
	if err != nil {
		return OrderKey{}, fmt.Errorf("ORDER BY %q: %w", s, err)
	}
	return OrderKey{Field: field, Desc: desc}, nil
}

func parseDirection(dir string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "", "ASC":
		return false, nil
	case "DESC":
		return true, nil
	}
	return false, fmt.Errorf("direction must be ASC or DESC, got %q", dir)
}

// splitOutsideBraces splits on commas that are not inside {{ }}.
func splitOutsideBraces(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			depth++
			i++
		case strings.HasPrefix(s[i:], "}}") && depth > 0:
			depth--
			i++
		case s[i] == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
