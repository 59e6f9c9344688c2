package expr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/erraggy/dotmap/dmerrors"
	"github.com/erraggy/dotmap/dotpath"
	"github.com/erraggy/dotmap/internal/cache"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// Parser parses template leaves and caches the results by raw string.
// It is safe for concurrent use.
type Parser struct {
	cache    *cache.Cache[*Expression]
	compiler *dotpath.Compiler
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithCompiler sets the path compiler used for path references.
func WithCompiler(c *dotpath.Compiler) ParserOption {
	return func(p *Parser) {
		if c != nil {
			p.compiler = c
		}
	}
}

// WithMaxEntries bounds the expression cache to n entries, evicting the
// least recently used. n <= 0 keeps the cache unbounded.
func WithMaxEntries(n int) ParserOption {
	return func(p *Parser) {
		p.cache = cache.NewBounded[*Expression](n)
	}
}

// NewParser creates a parser with an empty cache.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		cache:    cache.New[*Expression](),
		compiler: dotpath.DefaultCompiler(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses raw. Strings without {{ are literals; a string that is one
// {{ }} block, ignoring surrounding whitespace, is an expression; anything
// else is an interpolation.
func (p *Parser) Parse(raw string) (*Expression, error) {
	return p.cache.GetOrLoad(raw, func() (*Expression, error) {
		return p.parse(raw)
	})
}

// MustParse is like Parse but panics on error.
func (p *Parser) MustParse(raw string) *Expression {
	e, err := p.Parse(raw)
	if err != nil {
		panic(err)
	}
	return e
}

// Len returns the number of cached expressions.
func (p *Parser) Len() int {
	return p.cache.Len()
}

// Clear empties the cache.
func (p *Parser) Clear() {
	p.cache.Clear()
}

var (
	defaultOnce   sync.Once
	defaultParser *Parser
)

// DefaultParser returns the shared parser used by the package-level functions.
func DefaultParser() *Parser {
	defaultOnce.Do(func() {
		defaultParser = NewParser()
	})
	return defaultParser
}

// Parse parses raw with the default parser.
func Parse(raw string) (*Expression, error) {
	return DefaultParser().Parse(raw)
}

// MustParse parses raw with the default parser and panics on error.
func MustParse(raw string) *Expression {
	return DefaultParser().MustParse(raw)
}

// ClearCache empties the default parser's cache.
func ClearCache() {
	DefaultParser().Clear()
}

// IsExpression reports whether s contains a {{ marker.
func IsExpression(s string) bool {
	return strings.Contains(s, openMarker)
}

// span is the byte range of one {{ }} block in a raw leaf, markers included.
type span struct {
	start, end int
}

func (p *Parser) parse(raw string) (*Expression, error) {
	spans, err := scan(raw)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return &Expression{raw: raw, kind: KindLiteral, value: raw}, nil
	}

	if len(spans) == 1 {
		s := spans[0]
		if strings.TrimSpace(raw[:s.start]) == "" && strings.TrimSpace(raw[s.end:]) == "" {
			x, err := p.parseInner(raw, s)
			if err != nil {
				return nil, err
			}
			return &Expression{raw: raw, kind: KindExpr, expr: x}, nil
		}
	}

	parts := make([]Part, 0, 2*len(spans)+1)
	last := 0
	for _, s := range spans {
		if s.start > last {
			parts = append(parts, Part{Text: raw[last:s.start]})
		}
		x, err := p.parseInner(raw, s)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Expr: x})
		last = s.end
	}
	if last < len(raw) {
		parts = append(parts, Part{Text: raw[last:]})
	}
	return &Expression{raw: raw, kind: KindInterpolation, parts: parts}, nil
}

// scan locates every {{ }} block. Quoted strings inside a block may contain
// "}}".
func scan(raw string) ([]span, error) {
	var spans []span
	i := 0
	for {
		idx := strings.Index(raw[i:], openMarker)
		if idx < 0 {
			return spans, nil
		}
		start := i + idx
		end, ok := closing(raw, start+len(openMarker))
		if !ok {
			return nil, &dmerrors.ExpressionError{
				Expression: raw,
				Position:   start,
				Message:    "unclosed {{",
			}
		}
		spans = append(spans, span{start: start, end: end})
		i = end
	}
}

// closing returns the offset just past the "}}" that ends the block whose
// body starts at from.
func closing(raw string, from int) (int, bool) {
	var quote byte
	for j := from; j < len(raw); j++ {
		c := raw[j]
		if quote != 0 {
			switch c {
			case '\\':
				j++
			case quote:
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(raw[j:], closeMarker):
			return j + len(closeMarker), true
		}
	}
	return 0, false
}

func (p *Parser) parseInner(raw string, s span) (*Expr, error) {
	ep := &exprParser{
		raw:      raw,
		pos:      s.start + len(openMarker),
		end:      s.end - len(closeMarker),
		compiler: p.compiler,
	}
	return ep.parse()
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokPipe
	tokColon
	tokDefault
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokWord:
		return "word"
	case tokString:
		return "string"
	case tokPipe:
		return "'|'"
	case tokColon:
		return "':'"
	case tokDefault:
		return "'??'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// exprParser parses the body of one {{ }} block. Positions are byte offsets
// into the full raw leaf.
type exprParser struct {
	raw      string
	pos      int
	end      int
	compiler *dotpath.Compiler

	peeked *token
}

func (p *exprParser) parse() (*Expr, error) {
	if t, err := p.peek(); err != nil {
		return nil, err
	} else if t.kind == tokEOF {
		return nil, p.errorf(t.pos, "empty expression")
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokEOF {
		return nil, p.errorf(t.pos, "unexpected %s %q", t.kind, t.text)
	}
	return x, nil
}

func (p *exprParser) parseExpr() (*Expr, error) {
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	x := &Expr{Term: *term}

	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	if t.kind == tokDefault {
		_, _ = p.next()
		def, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		x.Default = def
	}
	return x, nil
}

func (p *exprParser) parseTerm() (*Term, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	term := &Term{Primary: primary}

	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.kind != tokPipe {
			return term, nil
		}
		_, _ = p.next()
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		term.Filters = append(term.Filters, *call)
	}
}

func (p *exprParser) parsePrimary() (Primary, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokString:
		return &Literal{Value: t.text}, nil
	case tokWord:
	default:
		return nil, p.errorf(t.pos, "expected a path, alias or literal, got %s", t.kind)
	}

	if name, ok := strings.CutPrefix(t.text, "@"); ok {
		if name == "" {
			return nil, p.errorf(t.pos, "alias name is empty")
		}
		return &AliasRef{Name: name}, nil
	}
	if v, ok := wordLiteral(t.text); ok {
		return &Literal{Value: v}, nil
	}
	path, err := p.compiler.Compile(t.text)
	if err != nil {
		return nil, &dmerrors.ExpressionError{
			Expression: p.raw,
			Position:   t.pos,
			Message:    "invalid path",
			Cause:      err,
		}
	}
	return &PathRef{Path: path}, nil
}

func (p *exprParser) parseCall() (*Call, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokWord || !isIdent(t.text) {
		return nil, p.errorf(t.pos, "expected a filter name after '|'")
	}
	call := &Call{Name: t.text}

	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.kind != tokColon {
			return call, nil
		}
		_, _ = p.next()

		arg, err := p.next()
		if err != nil {
			return nil, err
		}
		switch arg.kind {
		case tokString:
			call.Args = append(call.Args, arg.text)
		case tokWord:
			if v, ok := wordLiteral(arg.text); ok {
				call.Args = append(call.Args, v)
			} else {
				call.Args = append(call.Args, arg.text)
			}
		default:
			return nil, p.errorf(arg.pos, "expected an argument for filter %s after ':'", call.Name)
		}
	}
}

func (p *exprParser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *exprParser) next() (token, error) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, nil
	}
	return p.lex()
}

func (p *exprParser) lex() (token, error) {
	for p.pos < p.end && isSpace(p.raw[p.pos]) {
		p.pos++
	}
	if p.pos >= p.end {
		return token{kind: tokEOF, pos: p.end}, nil
	}

	start := p.pos
	switch c := p.raw[p.pos]; {
	case c == '|':
		p.pos++
		return token{kind: tokPipe, text: "|", pos: start}, nil
	case c == ':':
		p.pos++
		return token{kind: tokColon, text: ":", pos: start}, nil
	case strings.HasPrefix(p.raw[p.pos:p.end], "??"):
		p.pos += 2
		return token{kind: tokDefault, text: "??", pos: start}, nil
	case c == '\'' || c == '"':
		return p.lexString(c)
	}

	for p.pos < p.end {
		c := p.raw[p.pos]
		if isSpace(c) || c == '|' || c == ':' || c == '\'' || c == '"' ||
			strings.HasPrefix(p.raw[p.pos:p.end], "??") {
			break
		}
		p.pos++
	}
	return token{kind: tokWord, text: p.raw[start:p.pos], pos: start}, nil
}

func (p *exprParser) lexString(quote byte) (token, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < p.end {
		c := p.raw[p.pos]
		switch c {
		case quote:
			p.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case '\\':
			if p.pos+1 < p.end {
				p.pos++
				b.WriteByte(unescape(p.raw[p.pos]))
				p.pos++
				continue
			}
		}
		b.WriteByte(c)
		p.pos++
	}
	return token{}, p.errorf(start, "unterminated string")
}

func (p *exprParser) errorf(pos int, format string, args ...any) error {
	return &dmerrors.ExpressionError{
		Expression: p.raw,
		Position:   pos,
		Message:    fmt.Sprintf(format, args...),
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// wordLiteral recognizes numbers, booleans and null among bare words.
func wordLiteral(w string) (any, bool) {
	switch w {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}
	if !looksNumeric(w) {
		return nil, false
	}
	if n, err := strconv.Atoi(w); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(w, 64); err == nil {
		return f, true
	}
	return nil, false
}

func looksNumeric(w string) bool {
	if w == "" {
		return false
	}
	if w[0] == '-' || w[0] == '+' {
		w = w[1:]
	}
	return w != "" && w[0] >= '0' && w[0] <= '9'
}
