package filter

import (
	"fmt"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/spf13/cast"
)

const defaultDateFormat = "%Y-%m-%d"

// date formats a time with a strftime layout. Strings in any layout cast
// understands and unix timestamps are accepted.
func date(v any, p *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, err := asTime(v)
	if err != nil {
		return nil, err
	}
	return timefmt.Format(t, p.StringArg(0, defaultDateFormat)), nil
}

// dateParse parses a string with a strftime layout. With a second layout
// the result is reformatted, otherwise the time.Time is returned.
func dateParse(v any, p *Params) (any, error) {
	if v == nil {
		return nil, nil
	}
	layout, ok := p.Arg(0)
	if !ok {
		return nil, fmt.Errorf("date_parse needs a layout argument")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	t, err := timefmt.Parse(s, cast.ToString(layout))
	if err != nil {
		return nil, err
	}
	if out := p.StringArg(1, ""); out != "" {
		return timefmt.Format(t, out), nil
	}
	return t, nil
}

func asTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case *time.Time:
		if val != nil {
			return *val, nil
		}
	}
	return cast.ToTimeE(v)
}
