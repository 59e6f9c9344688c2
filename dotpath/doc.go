// Package dotpath reads and writes nested data with dot-separated paths.
//
// A path is a sequence of keys separated by dots. A key is a map key, a
// list index, or "*", which matches every entry of the container at that
// position:
//
//	users.0.email
//	users.*.email
//	orders.*.lines.*.sku
//
// Reads go through an Accessor. A path without wildcards returns the bare
// value; a wildcard path returns a *ResultSet keyed by the full resolved
// path of every match:
//
//	v, _ := dotpath.Get(doc, "users.*.email", nil)
//	// v.(*dotpath.ResultSet): users.0.email => "a", users.2.email => "b"
//
// Writes go through a Mutator (Set, Merge, Unset) and modify the root in
// place. Missing intermediate containers are created on the way down.
//
// Parsed paths are cached by a Compiler. The package-level functions share
// a default Compiler; call ClearCache to reset it, or give each Accessor
// and Mutator its own Compiler with WithCompiler.
//
// Containers are reached through the adapters of a container.Registry, so
// the same paths work over decoded JSON, ordered maps, structs, and custom
// collection types.
package dotpath
