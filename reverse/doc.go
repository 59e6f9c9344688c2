// Package reverse inverts mapping templates.
//
// A template made only of pure path leaves, such as
//
//	name: "{{ user.name }}"
//	emails: "{{ user.contacts.*.email }}"
//
// reverses into a template that maps the target back to the source:
//
//	user:
//	  name: "{{ name }}"
//	  contacts:
//	    "*":
//	      email: "{{ emails.* }}"
//
// Wildcard leaves reverse into blocks, and blocks whose sub-template ends in
// a single wildcard collapse back into leaves, so reversing twice returns
// the original template.
//
// Leaves with filters, defaults, aliases, literals or interpolation, blocks
// with directives and sources mapped twice have no inverse. [Reverse]
// rejects them with a *dmerrors.ReverseError naming the target path. With
// [Lenient] they are dropped and listed in [Result.Skipped] instead.
package reverse
