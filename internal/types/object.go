package types

import (
	"fmt"

	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Object represents a declared entity: a variable or a function.
// Every value is a float64, so objects carry no type.
type Object interface {
	Name() string    // object name
	Pos() syntax.Pos // declaration position
	Parent() *Scope  // enclosing scope
	String() string

	setParent(*Scope) // internal: set parent scope
	aObject()         // marker method to restrict implementations
}

// object is the base struct for all objects.
type object struct {
	name   string
	pos    syntax.Pos
	parent *Scope
}

func (o *object) Name() string       { return o.name }
func (o *object) Pos() syntax.Pos    { return o.pos }
func (o *object) Parent() *Scope     { return o.parent }
func (o *object) setParent(s *Scope) { o.parent = s }
func (*object) aObject()             {}

// VarKind records how a variable was introduced.
type VarKind uint8

const (
	ParamVar     VarKind = iota // function parameter
	LocalVar                    // var/in binding
	InductionVar                // for loop variable
)

func (k VarKind) String() string {
	switch k {
	case ParamVar:
		return "param"
	case LocalVar:
		return "local"
	case InductionVar:
		return "induction"
	}
	return fmt.Sprintf("VarKind(%d)", k)
}

// Var is a mutable float64 variable. All three kinds may be assigned to.
type Var struct {
	object
	kind VarKind
}

// NewVar creates a new variable object.
func NewVar(pos syntax.Pos, name string, kind VarKind) *Var {
	return &Var{object: object{name: name, pos: pos}, kind: kind}
}

// Kind returns how the variable was introduced.
func (v *Var) Kind() VarKind {
	return v.kind
}

func (v *Var) String() string {
	return fmt.Sprintf("%s var %s", v.kind, v.name)
}

// Func is a known function signature: a name and a parameter count.
// Functions live in the session's global scope and are never assignable.
type Func struct {
	object
	arity   int
	proto   *syntax.Prototype
	defined bool // a body has been accepted
	native  bool // bound to a host function
}

// NewFunc creates a function object from a prototype.
func NewFunc(proto *syntax.Prototype) *Func {
	return &Func{
		object: object{name: proto.Name, pos: proto.Pos()},
		arity:  proto.Arity(),
		proto:  proto,
	}
}

// Arity returns the number of parameters.
func (f *Func) Arity() int {
	return f.arity
}

// Proto returns the declaring prototype.
func (f *Func) Proto() *syntax.Prototype {
	return f.proto
}

// Defined reports whether the function has a body.
func (f *Func) Defined() bool {
	return f.defined
}

// SetDefined marks the function as having a body.
func (f *Func) SetDefined() {
	f.defined = true
}

// Native reports whether an extern declaration was bound to a host function.
func (f *Func) Native() bool {
	return f.native
}

// SetNative marks the function as bound to a host function.
func (f *Func) SetNative() {
	f.native = true
}

// Signature returns "name/arity".
func (f *Func) Signature() string {
	return fmt.Sprintf("%s/%d", f.name, f.arity)
}

func (f *Func) String() string {
	switch {
	case f.defined:
		return "func " + f.Signature()
	case f.native:
		return "native func " + f.Signature()
	}
	return "extern func " + f.Signature()
}
