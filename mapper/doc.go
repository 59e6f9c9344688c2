// Package mapper applies templates to source data.
//
// A [Mapper] walks a [template.Template] and writes one value per leaf into
// the target:
//
//	tpl, err := template.Parse([]byte(`
//	name: "{{ user.name | upper }}"
//	age: "{{ user.age ?? 18 }}"
//	`))
//	out, err := mapper.Map(source, nil, tpl)
//
// Leaves that resolve through a wildcard, such as "{{ users.*.email }}",
// write a list, or one entry per captured key when
// [WithReindexWildcard](false) is set. Blocks bind their wildcard to one
// element at a time; their directives filter, group, sort and page the
// elements first (see package query).
//
// Aliases ("{{ @name }}") read values already written to the target,
// relative to the enclosing map first and then from the target root.
// Unresolved aliases fail with *dmerrors.AliasError.
//
// Hooks registered with [WithHook] or [WithHooks] run at the phases of
// package hook. Path filters ([WithPathFilters]) and phase filters
// ([WithPhaseFilter]) run registered filters at target paths and phases
// without touching the template.
//
// Nil values are not written unless [WithSkipNull](false) is set.
//
// A Mapper is immutable and safe for concurrent use. [Mapper.MapReverse]
// maps through the inverse of a template; see package reverse.
package mapper
