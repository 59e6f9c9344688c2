package filter

import (
	"github.com/erraggy/dotmap/hook"
	"github.com/erraggy/dotmap/internal/naming"
)

// writePhases are the phases in which normalizing filters may run as hooks.
var writePhases = []hook.Phase{hook.AfterTransform, hook.BeforeWrite}

// Builtins returns the filters every new registry starts with.
func Builtins() []Filter {
	return []Filter{
		// strings
		{Name: "upper", Phases: writePhases, Fn: stringFunc(upper)},
		{Name: "lower", Phases: writePhases, Fn: stringFunc(lower)},
		{Name: "ucfirst", Fn: stringFunc(ucfirst)},
		{Name: "lcfirst", Fn: stringFunc(lcfirst)},
		{Name: "title", Fn: stringFunc(title)},
		{Name: "trim", Phases: writePhases, Fn: stringFunc(trim)},
		{Name: "ltrim", Phases: writePhases, Fn: stringFunc(ltrim)},
		{Name: "rtrim", Phases: writePhases, Fn: stringFunc(rtrim)},
		{Name: "replace", Fn: stringFunc(replace)},
		{Name: "substr", Fn: stringFunc(substr)},
		{Name: "pad_left", Aliases: []string{"lpad"}, Fn: stringFunc(padLeft)},
		{Name: "pad_right", Aliases: []string{"rpad"}, Fn: stringFunc(padRight)},
		{Name: "prefix", Fn: stringFunc(prefix)},
		{Name: "suffix", Fn: stringFunc(suffix)},
		{Name: "camel", Aliases: []string{"camel_case"}, Fn: stringFunc(caseFunc(naming.ToCamelCase))},
		{Name: "pascal", Aliases: []string{"pascal_case"}, Fn: stringFunc(caseFunc(naming.ToPascalCase))},
		{Name: "snake", Aliases: []string{"snake_case"}, Fn: stringFunc(caseFunc(naming.ToSnakeCase))},
		{Name: "kebab", Aliases: []string{"kebab_case"}, Fn: stringFunc(caseFunc(naming.ToKebabCase))},
		{Name: "slug", Aliases: []string{"slugify"}, Fn: stringFunc(slug)},
		{Name: "split", Aliases: []string{"explode"}, Fn: stringFunc(split)},
		{Name: "length", Aliases: []string{"len"}, Fn: length},

		// collections
		{Name: "join", Aliases: []string{"implode"}, Collection: true, Fn: join},
		{Name: "first", Collection: true, Fn: first},
		{Name: "last", Collection: true, Fn: last},
		{Name: "count", Collection: true, Fn: count},
		{Name: "unique", Collection: true, Fn: unique},
		{Name: "sort", Collection: true, Fn: sortList},
		{Name: "reverse", Collection: true, Fn: reverse},
		{Name: "flatten", Collection: true, Fn: flatten},
		{Name: "keys", Collection: true, Fn: keys},
		{Name: "values", Collection: true, Fn: values},
		{Name: "slice", Collection: true, Fn: slice},

		// types
		{Name: "int", Aliases: []string{"integer"}, Phases: writePhases, Fn: toInt},
		{Name: "float", Phases: writePhases, Fn: toFloat},
		{Name: "bool", Aliases: []string{"boolean"}, Phases: writePhases, Fn: toBool},
		{Name: "string", Phases: writePhases, Fn: toString},
		{Name: "json", Fn: toJSON},

		// dates
		{Name: "date", Fn: date},
		{Name: "date_parse", Fn: dateParse},

		// nulls
		{Name: "empty_to_null", Phases: writePhases, Fn: emptyToNull},
		{Name: "null_if", Fn: nullIf},
		{Name: "default", Fn: defaultValue},

		// queries
		{Name: "jq", Collection: true, Fn: jq},
		{Name: "jsonpath", Collection: true, Fn: jsonPath},
	}
}
