// Package template models mapping templates.
//
// A template describes the shape of a target document. Its leaves are
// expressions over the source:
//
//	name: "{{ user.name | upper }}"
//	age: "{{ user.age ?? 18 }}"
//	kind: customer
//	products:
//	  WHERE: {price: [">", 100]}
//	  ORDER BY: price DESC
//	  "*":
//	    title: "{{ items.*.name }}"
//	    price: "{{ items.*.price }}"
//
// Each node is one of:
//
//   - [Leaf]: a string parsed by the expr package, or a literal scalar.
//   - [Map]: target keys in declaration order. Keys may be dot paths, which
//     nest in the target. Sequences become maps keyed by index.
//   - [Block]: a map holding the "*" key. The sub-template under "*" is
//     expanded once per element of a wildcard binding. The other keys of a
//     block must be upper-case directives (WHERE, ORDER BY, LIMIT, OFFSET,
//     DISTINCT, GROUP BY, HAVING).
//
// Templates are built from Go values with [New] or from JSON and YAML with
// [Parse], which keeps the key order of the document. Structural problems
// are reported as *dmerrors.TemplateError naming the template path.
package template
