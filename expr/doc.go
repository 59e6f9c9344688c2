// Package expr parses and evaluates template leaf expressions.
//
// A leaf is one of three kinds:
//
//   - a literal: any string without {{, or a non-string value
//   - an expression: exactly one {{ ... }} block, whose value keeps its type
//   - an interpolation: text mixed with {{ ... }} blocks, producing a string
//
// Inside the braces:
//
//	expr    := term ('??' expr)?
//	term    := primary ('|' call)*
//	primary := '@' alias | literal | dotPath
//	call    := ident (':' arg)*
//
// For example:
//
//	{{ user.name | trim | upper }}
//	{{ user.age ?? 18 }}
//	{{ items.*.price | int }}
//	{{ @name | lower }}
//	Hello {{ user.name ?? 'guest' }}!
//
// Paths resolve against the source, aliases against the target written so
// far. Filters run left to right; the default is evaluated only when the
// filtered value is nil. When the value is a wildcard result, the default
// replaces each nil entry.
//
// Parsing is cached per [Parser]. Evaluation goes through an [Env], which
// the mapper implements.
package expr
