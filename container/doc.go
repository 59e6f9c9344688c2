// Package container adapts heterogeneous Go values to a single key/value
// view used by path traversal and mutation.
//
// Supported out of the box:
//
//   - map[string]any and []any (decoded JSON or YAML)
//   - *Associative, an insertion-ordered map
//   - values implementing Accessible, Entity or Collection
//   - any struct, string-keyed map, slice or array, via reflection
//
// Custom adapters registered on a Registry take precedence over all of the above.
package container
