package syntax

import (
	"fmt"
	"io"
)

// ParseError reports input that does not fit the grammar.
type ParseError struct {
	Pos Pos
	Msg string
	EOF bool // the input ended before the unit was complete
}

func (e *ParseError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Parser turns a token stream into top-level units, one per ParseUnit call.
// Binary operator precedences come from the shared OpTable, so a parser
// sees every operator registered before it reaches the operator's use.
type Parser struct {
	scanner *Scanner
	ops     *OpTable

	// Current token info (cached from scanner)
	tok Token
	lit string
	val float64
	pos Pos
}

// NewParser creates a new Parser reading src and consulting ops.
func NewParser(filename string, src io.Reader, ops *OpTable) *Parser {
	p := &Parser{
		scanner: NewScanner(filename, src),
		ops:     ops,
	}
	p.next() // prime the parser with first token
	return p
}

// Ops returns the operator table the parser consults.
func (p *Parser) Ops() *OpTable {
	return p.ops
}

// ReadErr returns the error, if any, that stopped reading the source.
// Parsing cannot continue past it.
func (p *Parser) ReadErr() error {
	return p.scanner.ReadErr()
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token.
func (p *Parser) next() {
	p.scanner.Next()
	p.tok = p.scanner.Token()
	p.lit = p.scanner.Literal()
	p.val = p.scanner.Value()
	p.pos = p.scanner.Pos()
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
func (p *Parser) want(tok Token) error {
	if !p.got(tok) {
		return p.errorf("expected %s, found %s", tok, p.describe())
	}
	return nil
}

// gotOp consumes the current token if it is the operator sym.
func (p *Parser) gotOp(sym string) bool {
	if p.tok == _Operator && p.lit == sym {
		p.next()
		return true
	}
	return false
}

// describe names the current token for error messages.
func (p *Parser) describe() string {
	switch p.tok {
	case _Name:
		return fmt.Sprintf("name %q", p.lit)
	case _Number:
		return fmt.Sprintf("number %s", p.lit)
	case _Operator:
		return fmt.Sprintf("operator %q", p.lit)
	case _EOF:
		return "end of input"
	}
	return fmt.Sprintf("%q", p.tok.String())
}

// ----------------------------------------------------------------------------
// Error handling

// errorf builds a ParseError at the current token. A pending lexical error
// takes precedence: it is what made the token unusable.
func (p *Parser) errorf(format string, args ...any) error {
	if p.tok == _Error {
		return p.scanner.Err()
	}
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...), EOF: p.tok == _EOF}
}

// errorAt builds a ParseError at pos.
func (p *Parser) errorAt(pos Pos, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Sync skips to the start of the next unit after an error: past the next
// ';', or up to the next "def" or "extern", or to EOF.
func (p *Parser) Sync() {
	for {
		switch p.tok {
		case _EOF, _Def, _Extern:
			return
		case _Semi:
			p.next()
			return
		}
		p.next()
	}
}

// ----------------------------------------------------------------------------
// Units

// ParseUnit parses the next top-level unit. It returns nil, nil at EOF.
// After a non-nil error call Sync before parsing on.
func (p *Parser) ParseUnit() (Unit, error) {
	if err := p.scanner.ReadErr(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.scanner.filename, err)
	}

	for p.tok == _Semi {
		p.next()
	}

	var (
		u   Unit
		err error
	)
	switch p.tok {
	case _EOF:
		return nil, nil
	case _Def:
		u, err = p.parseDefinition()
	case _Extern:
		u, err = p.parseExtern()
	default:
		u, err = p.parseTopLevelExpr()
	}
	if err != nil {
		return nil, err
	}

	p.got(_Semi)
	return u, nil
}

// parseDefinition parses: def Prototype Expr
func (p *Parser) parseDefinition() (*FuncDecl, error) {
	pos := p.pos
	p.next() // def

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	f := &FuncDecl{Proto: proto, Body: body}
	f.pos = pos
	return f, nil
}

// parseExtern parses: extern Prototype
func (p *Parser) parseExtern() (*ExternDecl, error) {
	pos := p.pos
	p.next() // extern

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	d := &ExternDecl{Proto: proto}
	d.pos = pos
	return d, nil
}

// parseTopLevelExpr parses a bare expression and wraps it into the
// zero-argument anonymous function.
func (p *Parser) parseTopLevelExpr() (*TopLevelExpr, error) {
	pos := p.pos
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	proto := &Prototype{Name: AnonName, Kind: FuncProto}
	proto.pos = pos
	fn := &FuncDecl{Proto: proto, Body: body}
	fn.pos = pos

	t := &TopLevelExpr{Fn: fn}
	t.pos = pos
	return t, nil
}

// parsePrototype parses one of
//
//	name(params)
//	unary<op>(x)
//	binary<op> [prec] (x y)
//
// Parameters are separated by blanks or commas.
func (p *Parser) parsePrototype() (*Prototype, error) {
	proto := &Prototype{}
	proto.pos = p.pos

	switch p.tok {
	case _Name:
		proto.Name = p.lit
		proto.Kind = FuncProto
		p.next()

	case _Unary, _Binary:
		if p.tok == _Unary {
			proto.Kind = UnaryProto
		} else {
			proto.Kind = BinaryProto
			proto.Prec = DefaultBinaryPrec
		}
		p.next()
		if p.tok != _Operator {
			return nil, p.errorf("expected operator symbol after %s, found %s", proto.Kind, p.describe())
		}
		proto.Op = p.lit
		proto.Name = OperatorFuncName(proto.Kind, proto.Op)
		p.next()

		if proto.Kind == BinaryProto && p.tok == _Number {
			prec := p.val
			if prec != float64(int(prec)) || prec < MinBinaryPrec || prec > MaxBinaryPrec {
				return nil, p.errorf("invalid precedence %s: must be an integer in %d..%d", p.lit, MinBinaryPrec, MaxBinaryPrec)
			}
			proto.Prec = int(prec)
			p.next()
		}

	default:
		return nil, p.errorf("expected function name in prototype, found %s", p.describe())
	}

	if err := p.want(_Lparen); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for p.tok == _Name || p.tok == _Comma {
		if p.got(_Comma) {
			continue
		}
		if seen[p.lit] {
			return nil, p.errorf("duplicate parameter %q in prototype of %s", p.lit, proto.Name)
		}
		seen[p.lit] = true
		n := &Name{Value: p.lit}
		n.pos = p.pos
		proto.Params = append(proto.Params, n)
		p.next()
	}
	if err := p.want(_Rparen); err != nil {
		return nil, err
	}

	switch proto.Kind {
	case UnaryProto:
		if len(proto.Params) != 1 {
			return nil, p.errorAt(proto.pos, "unary operator %q takes 1 parameter, got %d", proto.Op, len(proto.Params))
		}
	case BinaryProto:
		if len(proto.Params) != 2 {
			return nil, p.errorAt(proto.pos, "binary operator %q takes 2 parameters, got %d", proto.Op, len(proto.Params))
		}
	}
	return proto, nil
}

// ----------------------------------------------------------------------------
// Expressions

// parseExpression parses: unary binoprhs
func (p *Parser) parseExpression() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryRHS(0, lhs)
}

// parseBinaryRHS folds (op primary)* pairs onto lhs by precedence climbing.
// Operators of equal precedence associate to the left; a strictly tighter
// operator to the right is folded into the right operand first.
func (p *Parser) parseBinaryRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		if p.tok != _Operator {
			return lhs, nil
		}
		prec := p.ops.BinaryPrec(p.lit)
		if prec <= 0 {
			return nil, p.errorf("unknown binary operator %q", p.lit)
		}
		if prec < minPrec {
			return lhs, nil
		}

		op, pos := p.lit, p.pos
		p.next()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if p.tok == _Operator {
			if next := p.ops.BinaryPrec(p.lit); next > prec {
				rhs, err = p.parseBinaryRHS(prec+1, rhs)
				if err != nil {
					return nil, err
				}
			}
		}

		b := &BinaryExpr{Op: op, X: lhs, Y: rhs}
		b.pos = pos
		lhs = b
	}
}

// parseUnary parses a prefix operator application or a primary.
func (p *Parser) parseUnary() (Expr, error) {
	if p.tok != _Operator {
		return p.parsePrimary()
	}

	if _, ok := p.ops.Lookup(p.lit, Unary); !ok {
		return nil, p.errorf("unknown unary operator %q", p.lit)
	}
	u := &UnaryExpr{Op: p.lit}
	u.pos = p.pos
	p.next()

	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	u.X = x
	return u, nil
}

// parsePrimary parses a number, a name or call, a parenthesized
// expression, or an if/for/var expression.
func (p *Parser) parsePrimary() (Expr, error) {
	switch p.tok {
	case _Number:
		n := &NumberLit{Value: p.val}
		n.pos = p.pos
		p.next()
		return n, nil
	case _Name:
		return p.parseIdentifier()
	case _Lparen:
		return p.parseParen()
	case _If:
		return p.parseIf()
	case _For:
		return p.parseFor()
	case _Var:
		return p.parseVar()
	}
	return nil, p.errorf("expected expression, found %s", p.describe())
}

// parseParen parses: ( expression )
func (p *Parser) parseParen() (Expr, error) {
	p.next() // (
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.want(_Rparen); err != nil {
		return nil, err
	}
	return x, nil
}

// parseIdentifier parses a variable reference or a call: name(args)
func (p *Parser) parseIdentifier() (Expr, error) {
	name, pos := p.lit, p.pos
	p.next()

	if p.tok != _Lparen {
		n := &Name{Value: name}
		n.pos = pos
		return n, nil
	}
	p.next() // (

	call := &CallExpr{Callee: name}
	call.pos = pos
	if p.got(_Rparen) {
		return call, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.got(_Rparen) {
			return call, nil
		}
		if err := p.want(_Comma); err != nil {
			return nil, err
		}
	}
}

// parseIf parses: if cond then expr else expr
func (p *Parser) parseIf() (Expr, error) {
	x := &IfExpr{}
	x.pos = p.pos
	p.next() // if

	var err error
	if x.Cond, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.want(_Then); err != nil {
		return nil, err
	}
	if x.Then, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.want(_Else); err != nil {
		return nil, err
	}
	if x.Else, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return x, nil
}

// parseFor parses: for name = start, end [, step] in body
func (p *Parser) parseFor() (Expr, error) {
	x := &ForExpr{}
	x.pos = p.pos
	p.next() // for

	if p.tok != _Name {
		return nil, p.errorf("expected loop variable after for, found %s", p.describe())
	}
	x.Var = &Name{Value: p.lit}
	x.Var.pos = p.pos
	p.next()

	if !p.gotOp("=") {
		return nil, p.errorf("expected '=' after loop variable, found %s", p.describe())
	}

	var err error
	if x.Start, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.want(_Comma); err != nil {
		return nil, err
	}
	if x.End, err = p.parseExpression(); err != nil {
		return nil, err
	}

	if p.got(_Comma) {
		if x.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	} else {
		one := &NumberLit{Value: 1, Implicit: true}
		one.pos = p.pos
		x.Step = one
	}

	if err := p.want(_In); err != nil {
		return nil, err
	}
	if x.Body, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return x, nil
}

// parseVar parses: var name [= init] {, name [= init]} in body
func (p *Parser) parseVar() (Expr, error) {
	x := &VarExpr{}
	x.pos = p.pos
	p.next() // var

	if p.tok != _Name {
		return nil, p.errorf("expected at least one binding after var, found %s", p.describe())
	}
	for {
		if p.tok != _Name {
			return nil, p.errorf("expected variable name, found %s", p.describe())
		}
		b := &Binding{Name: &Name{Value: p.lit}}
		b.pos = p.pos
		b.Name.pos = p.pos
		p.next()

		if p.gotOp("=") {
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			b.Init = init
		}
		x.Bindings = append(x.Bindings, b)

		if !p.got(_Comma) {
			break
		}
	}

	if err := p.want(_In); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	x.Body = body
	return x, nil
}

// ----------------------------------------------------------------------------
// Convenience

// ParseAll parses every unit in src, registering operator prototypes into
// ops as they are accepted. Errors are collected and parsing resumes at the
// next unit.
func ParseAll(filename string, src io.Reader, ops *OpTable) ([]Unit, []error) {
	p := NewParser(filename, src, ops)
	var (
		units []Unit
		errs  []error
	)
	for {
		u, err := p.ParseUnit()
		if err != nil {
			errs = append(errs, err)
			if p.ReadErr() != nil {
				return units, errs
			}
			p.Sync()
			continue
		}
		if u == nil {
			return units, errs
		}
		if proto := PrototypeOf(u); proto != nil {
			ops.Register(proto)
		}
		units = append(units, u)
	}
}

// PrototypeOf returns the prototype declared by u.
func PrototypeOf(u Unit) *Prototype {
	switch u := u.(type) {
	case *FuncDecl:
		return u.Proto
	case *ExternDecl:
		return u.Proto
	case *TopLevelExpr:
		return u.Fn.Proto
	}
	return nil
}
