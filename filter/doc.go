// Package filter provides the named value transformations used in template
// expressions such as {{ user.name | trim | upper }}.
//
// A [Registry] maps names to [Filter] values. [NewRegistry] starts from the
// built-in set returned by [Builtins]:
//
//   - strings: upper, lower, ucfirst, lcfirst, title, trim, ltrim, rtrim,
//     replace, substr, pad_left, pad_right, prefix, suffix, camel, pascal,
//     snake, kebab, slug, split, length
//   - collections: join, first, last, count, unique, sort, reverse, flatten,
//     keys, values, slice
//   - types: int, float, bool, string, json
//   - dates: date, date_parse (strftime layouts)
//   - nulls: empty_to_null, null_if, default
//   - queries: jq, jsonpath
//
// Registering a name that already exists replaces the previous filter unless
// the registry was created with [WithStrict].
//
// Filters marked Collection receive a wildcard result as a single list. All
// other filters are applied to each matched value and keep the result keyed
// by path.
//
// A filter that lists hook phases in Phases may also be attached to a mapper
// as a hook for those phases.
package filter
