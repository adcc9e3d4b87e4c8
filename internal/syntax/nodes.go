package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// There are 2 classes of nodes: Expressions and Units. A Unit is what one
// call to ParseUnit yields: a function definition, an extern declaration,
// or a top-level expression. Prototypes and bindings are plain nodes.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Unit is the interface for top-level units.
type Unit interface {
	Node
	aUnit()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

// expr is embedded in all expression nodes.
type expr struct{ node }

func (*expr) aExpr() {}

// unit is embedded in all unit nodes.
type unit struct{ node }

func (*unit) aUnit() {}

// ----------------------------------------------------------------------------
// Units

// AnonName is the name given to the wrapper function of a top-level expression.
const AnonName = "__anon_expr"

// ProtoKind tells plain functions apart from operator definitions.
type ProtoKind uint8

const (
	FuncProto ProtoKind = iota
	UnaryProto
	BinaryProto
)

func (k ProtoKind) String() string {
	switch k {
	case UnaryProto:
		return "unary"
	case BinaryProto:
		return "binary"
	}
	return "func"
}

// Prototype is a function signature: name(params).
// For operator prototypes Name is the mangled "unary<op>" or "binary<op>".
type Prototype struct {
	node
	Name   string
	Params []*Name
	Kind   ProtoKind
	Op     string // operator symbol (operators only)
	Prec   int    // binary precedence (BinaryProto only)
}

// Arity returns the number of parameters.
func (p *Prototype) Arity() int { return len(p.Params) }

// IsOperator reports whether p defines a unary or binary operator.
func (p *Prototype) IsOperator() bool { return p.Kind != FuncProto }

// IsAnon reports whether p belongs to a top-level expression wrapper.
func (p *Prototype) IsAnon() bool { return p.Name == AnonName }

// OperatorFuncName returns the function name backing an operator.
func OperatorFuncName(kind ProtoKind, op string) string {
	return kind.String() + op
}

// FuncDecl is a function definition: def Proto Body
type FuncDecl struct {
	unit
	Proto *Prototype
	Body  Expr
}

// ExternDecl is a bodiless declaration: extern Proto
type ExternDecl struct {
	unit
	Proto *Prototype
}

// TopLevelExpr is a bare expression wrapped into a zero-argument function.
type TopLevelExpr struct {
	unit
	Fn *FuncDecl
}

// ----------------------------------------------------------------------------
// Expressions

// NumberLit is a numeric literal.
type NumberLit struct {
	expr
	Value    float64
	Implicit bool // synthesized by the parser, not written in the source
}

// Name is a variable reference, or an identifier in a binding position.
type Name struct {
	expr
	Value string
}

// UnaryExpr is a prefix operator application: Op X
type UnaryExpr struct {
	expr
	Op string
	X  Expr
}

// BinaryExpr is an infix operator application: X Op Y
type BinaryExpr struct {
	expr
	Op string
	X  Expr
	Y  Expr
}

// CallExpr is a function call: Callee(Args...)
type CallExpr struct {
	expr
	Callee string
	Args   []Expr
}

// IfExpr is a conditional: if Cond then Then else Else
type IfExpr struct {
	expr
	Cond Expr
	Then Expr
	Else Expr
}

// ForExpr is a counted loop: for Var = Start, End [, Step] in Body
// Step is an implicit NumberLit 1.0 when omitted.
type ForExpr struct {
	expr
	Var   *Name
	Start Expr
	End   Expr
	Step  Expr
	Body  Expr
}

// Binding is one "name [= init]" in a var expression. Init is nil when
// omitted and the variable starts at 0.0.
type Binding struct {
	node
	Name *Name
	Init Expr
}

// VarExpr introduces mutable locals for the extent of Body:
// var a = 1, b in Body
type VarExpr struct {
	expr
	Bindings []*Binding
	Body     Expr
}
