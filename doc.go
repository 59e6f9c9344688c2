// Package dotmap provides tools for reading, writing and reshaping nested data
// with dot-notation paths and declarative mapping templates.
//
// # Overview
//
// The library consists of these primary packages:
//
//   - dotpath: compile paths, read values (Accessor) and write them (Mutator)
//   - container: adapters that make maps, lists, ordered maps, structs and
//     ORM-like values look like keyed containers
//   - expr: parse and evaluate template expressions
//   - filter: the registry of value transformations used in expressions
//   - template: the template model, built from Go values, JSON or YAML
//   - query: WHERE, GROUP BY, HAVING, ORDER BY, DISTINCT, OFFSET and LIMIT
//     over the elements of a wildcard
//   - hook: callbacks at fixed phases of a mapping pass
//   - mapper: apply templates to source data
//   - reverse: derive the inverse of a pure-path template
//   - dmerrors: error types and sentinels shared by every package
//
// # Installation
//
//	go get github.com/erraggy/dotmap
//
// # Quick Start
//
// Read and write with paths:
//
//	import "github.com/erraggy/dotmap/dotpath"
//
//	name, _ := dotpath.Get(data, "user.profile.name", "anonymous")
//	emails, _ := dotpath.Get(data, "users.*.email", nil) // *dotpath.ResultSet
//	_ = dotpath.Set(&data, "user.tags.0", "admin")
//
// Map a source document onto a new shape:
//
//	import (
//		"github.com/erraggy/dotmap/mapper"
//		"github.com/erraggy/dotmap/template"
//	)
//
//	tpl, err := template.Parse([]byte(`
//	name: "{{ user.name | upper }}"
//	age: "{{ user.age ?? 18 }}"
//	expensive:
//	  WHERE: {price: [">", 100]}
//	  ORDER BY: price DESC
//	  LIMIT: 3
//	  "*":
//	    title: "{{ products.*.name | title }}"
//	    price: "{{ products.*.price }}"
//	`))
//	out, err := mapper.Map(source, nil, tpl)
//
// Map back through the inverse template:
//
//	back, err := mapper.MapReverse(out, nil, pathOnlyTemplate)
//
// # Paths
//
// A path is a sequence of keys joined by dots. The "*" segment matches every
// key of a container; a path with wildcards resolves to a *dotpath.ResultSet
// keyed by concrete path. Missing keys are not errors: reads fall back to a
// default and wildcards skip the elements that lack the rest of the path.
//
// # Expressions
//
// Template leaves hold expressions such as
//
//	{{ user.email | trim | lower ?? @fallback ?? 'none' }}
//
// A primary (a source path, an @alias of a value already written to the
// target, or a literal) is piped through filters left to right, and "??"
// supplies defaults for nil results. Text around "{{ }}" makes the leaf an
// interpolated string.
//
// # Hooks and Filters
//
// Mappers accept hooks at the beforeAll, beforeTransform, afterTransform,
// beforeWrite and afterAll phases, path filters that post-process the
// values written at given target paths, and custom filters registered next
// to the built-ins.
//
// # Errors
//
// Every error returned by the library matches one of the sentinels in
// package dmerrors through errors.Is, and carries a struct type with the
// offending path, expression or option for errors.As.
//
// # Command-Line Interface
//
// The dotmap command exposes the library on documents in JSON or YAML:
//
//	# Read a path
//	dotmap get users.*.email data.yaml
//
//	# Map a document through a template
//	dotmap map -t template.yaml source.json
//
//	# Reverse a template
//	dotmap reverse template.yaml
//
//	# Serve the tools over MCP on stdio
//	dotmap mcp
//
// Install the CLI:
//
//	go install github.com/erraggy/dotmap/cmd/dotmap@latest
package dotmap
