package expr

import (
	"github.com/erraggy/dotmap/dotpath"
)

// Kind classifies a parsed template leaf.
type Kind int

const (
	// KindLiteral is a static value with no {{ }} markers.
	KindLiteral Kind = iota
	// KindExpr is a single {{ }} expression; its value keeps its type.
	KindExpr
	// KindInterpolation mixes text with one or more {{ }} expressions and
	// always evaluates to a string.
	KindInterpolation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindExpr:
		return "expression"
	case KindInterpolation:
		return "interpolation"
	}
	return "unknown"
}

// Primary is the value source of a Term: a *PathRef, *AliasRef or *Literal.
type Primary interface {
	primary()
}

// PathRef reads a dot path from the source root.
type PathRef struct {
	Path *dotpath.Path
}

// AliasRef reads a value already written to the target, as in @user.name.
type AliasRef struct {
	// Name is the alias path without the leading '@'.
	Name string
}

// Literal is a constant.
type Literal struct {
	Value any
}

func (*PathRef) primary()  {}
func (*AliasRef) primary() {}
func (*Literal) primary()  {}

// Call is one filter invocation in a chain.
type Call struct {
	Name string
	Args []any
}

// Term is a primary followed by its filter chain.
type Term struct {
	Primary Primary
	Filters []Call
}

// Expr is a term with an optional default, evaluated only when the term
// resolves to nil.
type Expr struct {
	Term    Term
	Default *Expr
}

// Part is one piece of an interpolation: either Text or Expr is set.
type Part struct {
	Text string
	Expr *Expr
}

// Expression is a parsed template leaf. It is immutable and safe to share.
type Expression struct {
	raw   string
	kind  Kind
	value any
	expr  *Expr
	parts []Part
}

// NewLiteral wraps a static value.
func NewLiteral(v any) *Expression {
	raw, _ := v.(string)
	return &Expression{raw: raw, kind: KindLiteral, value: v}
}

// Raw returns the text the expression was parsed from. Non-string literals
// return "".
func (e *Expression) Raw() string {
	return e.raw
}

// String returns the raw text.
func (e *Expression) String() string {
	return e.raw
}

// Kind returns the expression kind.
func (e *Expression) Kind() Kind {
	return e.kind
}

// IsLiteral reports whether the expression is static.
func (e *Expression) IsLiteral() bool {
	return e.kind == KindLiteral
}

// Value returns the literal value; it is nil for other kinds.
func (e *Expression) Value() any {
	return e.value
}

// Expr returns the expression tree of a KindExpr expression.
func (e *Expression) Expr() *Expr {
	return e.expr
}

// Parts returns the pieces of an interpolation.
func (e *Expression) Parts() []Part {
	return e.parts
}

// PurePath returns the referenced path when the expression is exactly one
// path reference with no filters and no default.
func (e *Expression) PurePath() (*dotpath.Path, bool) {
	if e.kind != KindExpr || e.expr.Default != nil || len(e.expr.Term.Filters) > 0 {
		return nil, false
	}
	ref, ok := e.expr.Term.Primary.(*PathRef)
	if !ok {
		return nil, false
	}
	return ref.Path, true
}

// Paths returns every source path the expression may read, defaults
// included, in order of appearance.
func (e *Expression) Paths() []*dotpath.Path {
	var out []*dotpath.Path
	switch e.kind {
	case KindExpr:
		out = e.expr.paths(out)
	case KindInterpolation:
		for _, part := range e.parts {
			if part.Expr != nil {
				out = part.Expr.paths(out)
			}
		}
	}
	return out
}

// Aliases returns every alias name the expression references.
func (e *Expression) Aliases() []string {
	var out []string
	visit := func(x *Expr) {
		for ; x != nil; x = x.Default {
			if ref, ok := x.Term.Primary.(*AliasRef); ok {
				out = append(out, ref.Name)
			}
		}
	}
	switch e.kind {
	case KindExpr:
		visit(e.expr)
	case KindInterpolation:
		for _, part := range e.parts {
			visit(part.Expr)
		}
	}
	return out
}

// HasFilters reports whether any filter is applied anywhere in the expression.
func (e *Expression) HasFilters() bool {
	check := func(x *Expr) bool {
		for ; x != nil; x = x.Default {
			if len(x.Term.Filters) > 0 {
				return true
			}
		}
		return false
	}
	switch e.kind {
	case KindExpr:
		return check(e.expr)
	case KindInterpolation:
		for _, part := range e.parts {
			if check(part.Expr) {
				return true
			}
		}
	}
	return false
}

func (x *Expr) paths(out []*dotpath.Path) []*dotpath.Path {
	for ; x != nil; x = x.Default {
		if ref, ok := x.Term.Primary.(*PathRef); ok {
			out = append(out, ref.Path)
		}
	}
	return out
}
