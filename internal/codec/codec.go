// Package codec decodes JSON and YAML documents into ordered values and
// encodes them back without losing key order.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/dotmap/container"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat normalizes a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "JSON":
		return FormatJSON, nil
	case "yaml", "yml", "YAML", "YML":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q, expected json or yaml", s)
}

// maxAliasDepth bounds alias expansion so self-referencing documents fail
// instead of recursing forever.
const maxAliasDepth = 64

// Decode parses a JSON or YAML document. Mappings become
// *container.Associative in source order, sequences become []any. An empty
// document decodes to nil.
func Decode(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return FromNode(&root)
}

// FromNode converts a parsed YAML node tree.
func FromNode(node *yaml.Node) (any, error) {
	return fromNode(node, 0)
}

func fromNode(node *yaml.Node, aliases int) (any, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromNode(node.Content[0], aliases)

	case yaml.MappingNode:
		out := container.NewAssociative()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Tag == "!!merge" {
				if err := mergeInto(out, valNode, aliases); err != nil {
					return nil, err
				}
				continue
			}
			val, err := fromNode(valNode, aliases)
			if err != nil {
				return nil, err
			}
			out.Set(keyNode.Value, val)
		}
		return out, nil

	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			val, err := fromNode(child, aliases)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil

	case yaml.AliasNode:
		if aliases >= maxAliasDepth {
			return nil, fmt.Errorf("line %d: alias nesting exceeds %d", node.Line, maxAliasDepth)
		}
		return fromNode(node.Alias, aliases+1)

	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %v", node.Line, node.Kind)
}

// mergeInto applies a "<<" merge key. Keys already present win.
func mergeInto(out *container.Associative, node *yaml.Node, aliases int) error {
	v, err := fromNode(node, aliases)
	if err != nil {
		return err
	}
	var sources []any
	if list, ok := v.([]any); ok {
		sources = list
	} else {
		sources = []any{v}
	}
	for _, src := range sources {
		m, ok := src.(*container.Associative)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", node.Line)
		}
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if _, exists := out.Get(pair.Key); !exists {
				out.Set(pair.Key, pair.Value)
			}
		}
	}
	return nil
}

// EncodeJSON encodes v as JSON. Ordered maps keep their order; plain maps
// are sorted by key. An empty indent produces compact output.
func EncodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeYAML encodes v as YAML, keeping the order of ordered maps.
func EncodeYAML(v any) ([]byte, error) {
	node, err := ToNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// Encode encodes v in the given format.
func Encode(v any, format Format) ([]byte, error) {
	if format == FormatYAML {
		return EncodeYAML(v)
	}
	return EncodeJSON(v, "  ")
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// ToNode converts a value into a YAML node tree. Values with no direct
// YAML form go through their JSON encoding.
func ToNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return scalarNode("!!null", "null"), nil
	case *yaml.Node:
		return val, nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(val)), nil
	case string:
		return scalarNode("!!str", val), nil
	case float64:
		return floatNode(val), nil
	case float32:
		return floatNode(float64(val)), nil
	case time.Time:
		return scalarNode("!!timestamp", val.Format(time.RFC3339Nano)), nil
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return scalarNode("!!int", val.String()), nil
		}
		return scalarNode("!!float", val.String()), nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, len(val))}
		for _, item := range val {
			child, err := ToNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *container.Associative:
		if val == nil {
			return scalarNode("!!null", "null"), nil
		}
		node := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, val.Len()*2)}
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			child, err := ToNode(pair.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", pair.Key), child)
		}
		return node, nil
	case map[string]any:
		if len(val) > math.MaxInt/2 {
			return nil, fmt.Errorf("map size %d exceeds safe conversion limit", len(val))
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, len(keys)*2)}
		for _, k := range keys {
			child, err := ToNode(val[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", k), child)
		}
		return node, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarNode("!!int", strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarNode("!!int", strconv.FormatUint(rv.Uint(), 10)), nil
	}

	// Structs, typed containers and json.Marshaler values such as
	// result sets are normalized through their JSON form.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T: %w", v, err)
	}
	plain, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return ToNode(plain)
}

func floatNode(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return scalarNode("!!float", ".nan")
	case math.IsInf(f, 1):
		return scalarNode("!!float", ".inf")
	case math.IsInf(f, -1):
		return scalarNode("!!float", "-.inf")
	}
	return scalarNode("!!float", strconv.FormatFloat(f, 'f', -1, 64))
}
