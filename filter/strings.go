package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stringFunc lifts a string transformation to a filter. nil passes through
// and lists are transformed element by element.
func stringFunc(fn func(s string, p *Params) (any, error)) Func {
	var apply Func
	apply = func(v any, p *Params) (any, error) {
		switch val := v.(type) {
		case nil:
			return nil, nil
		case string:
			return fn(val, p)
		case []any:
			out := make([]any, len(val))
			for i, e := range val {
				r, err := apply(e, p)
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return out, nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		return fn(s, p)
	}
	return apply
}

func upper(s string, _ *Params) (any, error) {
	return strings.ToUpper(s), nil
}

func lower(s string, _ *Params) (any, error) {
	return strings.ToLower(s), nil
}

func ucfirst(s string, _ *Params) (any, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s, nil
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:], nil
}

func lcfirst(s string, _ *Params) (any, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s, nil
	}
	return cases.Lower(language.Und).String(string(r)) + s[size:], nil
}

func title(s string, _ *Params) (any, error) {
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Und).String(s), nil
}

func trim(s string, p *Params) (any, error) {
	if chars := p.StringArg(0, ""); chars != "" {
		return strings.Trim(s, chars), nil
	}
	return strings.TrimSpace(s), nil
}

func ltrim(s string, p *Params) (any, error) {
	if chars := p.StringArg(0, ""); chars != "" {
		return strings.TrimLeft(s, chars), nil
	}
	return strings.TrimLeftFunc(s, unicode.IsSpace), nil
}

func rtrim(s string, p *Params) (any, error) {
	if chars := p.StringArg(0, ""); chars != "" {
		return strings.TrimRight(s, chars), nil
	}
	return strings.TrimRightFunc(s, unicode.IsSpace), nil
}

func replace(s string, p *Params) (any, error) {
	if len(p.Args) < 2 {
		return nil, fmt.Errorf("replace needs a search and a replacement argument")
	}
	return strings.ReplaceAll(s, p.StringArg(0, ""), p.StringArg(1, "")), nil
}

// substr takes a rune offset (negative counts from the end) and an optional length.
func substr(s string, p *Params) (any, error) {
	start, err := p.IntArg(0, 0)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	rs := []rune(s)
	if start < 0 {
		start = max(len(rs)+start, 0)
	}
	if start >= len(rs) {
		return "", nil
	}
	end := len(rs)
	if _, ok := p.Arg(1); ok {
		n, err := p.IntArg(1, 0)
		if err != nil {
			return nil, fmt.Errorf("length: %w", err)
		}
		if n < 0 {
			end = max(len(rs)+n, start)
		} else {
			end = min(start+n, len(rs))
		}
	}
	return string(rs[start:end]), nil
}

func padLeft(s string, p *Params) (any, error) {
	pad, n, err := padArgs(p)
	if err != nil {
		return nil, err
	}
	if missing := n - utf8.RuneCountInString(s); missing > 0 {
		return strings.Repeat(pad, missing) + s, nil
	}
	return s, nil
}

func padRight(s string, p *Params) (any, error) {
	pad, n, err := padArgs(p)
	if err != nil {
		return nil, err
	}
	if missing := n - utf8.RuneCountInString(s); missing > 0 {
		return s + strings.Repeat(pad, missing), nil
	}
	return s, nil
}

func padArgs(p *Params) (string, int, error) {
	n, err := p.IntArg(0, 0)
	if err != nil {
		return "", 0, fmt.Errorf("length: %w", err)
	}
	pad := p.StringArg(1, " ")
	if utf8.RuneCountInString(pad) != 1 {
		return "", 0, fmt.Errorf("pad must be a single character, got %q", pad)
	}
	return pad, n, nil
}

func prefix(s string, p *Params) (any, error) {
	return p.StringArg(0, "") + s, nil
}

func suffix(s string, p *Params) (any, error) {
	return s + p.StringArg(0, ""), nil
}

// slug lowercases s, strips accents and joins runs of letters and digits
// with the separator (default "-").
func slug(s string, p *Params) (any, error) {
	sep := p.StringArg(0, "-")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteString(sep)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String(), nil
}

func caseFunc(conv func(string) string) func(string, *Params) (any, error) {
	return func(s string, _ *Params) (any, error) {
		return conv(s), nil
	}
}

func split(s string, p *Params) (any, error) {
	parts := strings.Split(s, p.StringArg(0, ","))
	out := make([]any, len(parts))
	for i, part := range parts {
		out[i] = part
	}
	return out, nil
}

// length counts runes of strings and entries of containers.
func length(v any, _ *Params) (any, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(val), nil
	case []any:
		return len(val), nil
	case map[string]any:
		return len(val), nil
	}
	if entries, ok := toList(v); ok {
		return len(entries), nil
	}
	return utf8.RuneCountInString(cast.ToString(v)), nil
}
