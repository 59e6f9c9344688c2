package filter

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"

	"github.com/erraggy/dotmap/internal/compare"
)

func toInt(v any, _ *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		// cast rejects "12.0" for ints; go through float for numeric strings.
		if f, ok := compare.Number(s); ok {
			return int(f), nil
		}
	}
	return cast.ToIntE(v)
}

func toFloat(v any, _ *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return cast.ToFloat64E(strings.TrimSpace(s))
	}
	return cast.ToFloat64E(v)
}

func toBool(v any, _ *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "on", "y":
			return true, nil
		case "no", "off", "n", "":
			return false, nil
		}
	}
	return cast.ToBoolE(v)
}

// toString renders scalars with cast and containers as JSON.
func toString(v any, _ *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// toJSON encodes v; the "pretty" argument indents the output.
func toJSON(v any, p *Params) (any, error) {
	var (
		data []byte
		err  error
	)
	if p.StringArg(0, "") == "pretty" {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
