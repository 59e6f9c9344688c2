package filter

import (
	"strings"

	"github.com/erraggy/dotmap/container"
	"github.com/erraggy/dotmap/internal/compare"
)

// emptyToNull maps blank strings and empty containers to nil.
func emptyToNull(v any, _ *Params) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return val, nil
	}
	if entries, ok := container.Default().ToAssociative(v); ok && entries.Len() == 0 {
		return nil, nil
	}
	return v, nil
}

func nullIf(v any, p *Params) (any, error) {
	arg, _ := p.Arg(0)
	if compare.Equal(v, arg) {
		return nil, nil
	}
	return v, nil
}

func defaultValue(v any, p *Params) (any, error) {
	if v == nil {
		arg, _ := p.Arg(0)
		return arg, nil
	}
	return v, nil
}
