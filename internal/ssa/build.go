package ssa

import (
	"fmt"

	"github.com/you-not-fish/kaleido/internal/syntax"
	"github.com/you-not-fish/kaleido/internal/types"
)

// ResolveKind classifies name resolution failures found while lowering.
type ResolveKind int

const (
	UnknownVariable ResolveKind = iota
	UnknownFunction
	ArityMismatch
	InvalidAssignment
)

var resolveKindNames = [...]string{
	UnknownVariable:   "unknown variable",
	UnknownFunction:   "unknown function",
	ArityMismatch:     "arity mismatch",
	InvalidAssignment: "invalid assignment",
}

func (k ResolveKind) String() string {
	if int(k) < len(resolveKindNames) {
		return resolveKindNames[k]
	}
	return fmt.Sprintf("ResolveKind(%d)", k)
}

// ResolveError reports a reference the function body cannot satisfy.
type ResolveError struct {
	Pos  syntax.Pos
	Kind ResolveKind
	Name string
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// builder holds the state for lowering a single function from AST to SSA.
type builder struct {
	fn *Func  // current SSA function
	b  *Block // current block

	scope *types.Scope          // innermost scope; its root is the session globals
	vars  map[*types.Var]*Value // variable → alloca mapping
}

// Build lowers a function definition to SSA. Calls are resolved against
// globals, which must already hold fn's own prototype if fn recurses.
// Parameters, var bindings and loop variables each live in an entry-block
// alloca; shadowing follows the nesting of var/in and for.
func Build(fd *syntax.FuncDecl, globals *types.Scope) (*Func, error) {
	proto := fd.Proto
	params := make([]string, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = p.Value
	}

	fn := NewFunc(proto.Name, params)
	fn.Pos = proto.Pos()

	b := &builder{
		fn:    fn,
		b:     fn.Entry,
		scope: types.NewScope(globals, proto.Pos(), "function "+proto.Name),
		vars:  make(map[*types.Var]*Value),
	}

	// Emit parameters: OpArg + OpAlloca + OpStore for each.
	for i, p := range proto.Params {
		arg := fn.NewValuePos(fn.Entry, OpArg, p.Pos())
		arg.AuxInt = int64(i)
		arg.Aux = p.Value

		v := types.NewVar(p.Pos(), p.Value, types.ParamVar)
		b.scope.Insert(v)
		slot := b.entryAlloca(p.Value)
		fn.NewValue(fn.Entry, OpStore, slot, arg)
		b.vars[v] = slot
	}

	ret, err := b.expr(fd.Body)
	if err != nil {
		return nil, err
	}
	b.b.Kind = BlockReturn
	b.b.SetControl(ret)
	return fn, nil
}

// entryAlloca creates an alloca in the entry block.
// All allocas go into the entry block so every slot dominates its uses.
func (b *builder) entryAlloca(name string) *Value {
	alloca := b.fn.NewValue(b.fn.Entry, OpAlloca)
	alloca.Aux = name
	return alloca
}

func (b *builder) errorf(pos syntax.Pos, kind ResolveKind, name, format string, args ...interface{}) error {
	return &ResolveError{Pos: pos, Kind: kind, Name: name, Msg: fmt.Sprintf(format, args...)}
}

// constFloat emits a float constant in the current block.
func (b *builder) constFloat(x float64) *Value {
	c := b.fn.NewValue(b.b, OpConstFloat)
	c.AuxFloat = x
	return c
}

// pushScope opens a scope holding a single variable bound to slot.
func (b *builder) pushScope(name *syntax.Name, kind types.VarKind, slot *Value, comment string) {
	b.scope = types.NewScope(b.scope, name.Pos(), comment)
	v := types.NewVar(name.Pos(), name.Value, kind)
	b.scope.Insert(v)
	b.vars[v] = slot
}

// expr lowers an expression and returns its float value.
func (b *builder) expr(x syntax.Expr) (*Value, error) {
	switch x := x.(type) {
	case *syntax.NumberLit:
		return b.constFloat(x.Value), nil

	case *syntax.Name:
		v := b.scope.LookupVar(x.Value)
		if v == nil {
			return nil, b.errorf(x.Pos(), UnknownVariable, x.Value, "unknown variable %q", x.Value)
		}
		return b.fn.NewValuePos(b.b, OpLoad, x.Pos(), b.vars[v]), nil

	case *syntax.UnaryExpr:
		return b.unaryExpr(x)

	case *syntax.BinaryExpr:
		return b.binaryExpr(x)

	case *syntax.CallExpr:
		return b.callExpr(x)

	case *syntax.IfExpr:
		return b.ifExpr(x)

	case *syntax.ForExpr:
		return b.forExpr(x)

	case *syntax.VarExpr:
		return b.varExpr(x)
	}
	panic(fmt.Sprintf("ssa.builder.expr: unhandled %T", x))
}

// call emits a call of name after checking it is known with the right arity.
func (b *builder) call(pos syntax.Pos, name, what string, args []*Value) (*Value, error) {
	f := b.scope.LookupFunc(name)
	if f == nil {
		return nil, b.errorf(pos, UnknownFunction, name, "unknown %s %q", what, name)
	}
	if f.Arity() != len(args) {
		return nil, b.errorf(pos, ArityMismatch, name, "%s %q takes %d arguments, got %d", what, name, f.Arity(), len(args))
	}
	v := b.fn.NewValuePos(b.b, OpStaticCall, pos, args...)
	v.Aux = name
	return v, nil
}

func (b *builder) callExpr(x *syntax.CallExpr) (*Value, error) {
	// Resolve before lowering arguments so the error names the callee.
	if b.scope.LookupFunc(x.Callee) == nil {
		return nil, b.errorf(x.Pos(), UnknownFunction, x.Callee, "unknown function %q", x.Callee)
	}
	args := make([]*Value, 0, len(x.Args))
	for _, a := range x.Args {
		v, err := b.expr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return b.call(x.Pos(), x.Callee, "function", args)
}

func (b *builder) unaryExpr(x *syntax.UnaryExpr) (*Value, error) {
	operand, err := b.expr(x.X)
	if err != nil {
		return nil, err
	}
	return b.call(x.Pos(), syntax.OperatorFuncName(syntax.UnaryProto, x.Op), "unary operator", []*Value{operand})
}

func (b *builder) binaryExpr(x *syntax.BinaryExpr) (*Value, error) {
	if x.Op == "=" {
		return b.assign(x)
	}

	lhs, err := b.expr(x.X)
	if err != nil {
		return nil, err
	}
	rhs, err := b.expr(x.Y)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case "+":
		return b.fn.NewValuePos(b.b, OpAddF64, x.Pos(), lhs, rhs), nil
	case "-":
		return b.fn.NewValuePos(b.b, OpSubF64, x.Pos(), lhs, rhs), nil
	case "*":
		return b.fn.NewValuePos(b.b, OpMulF64, x.Pos(), lhs, rhs), nil
	case "<":
		cmp := b.fn.NewValuePos(b.b, OpLtF64, x.Pos(), lhs, rhs)
		return b.fn.NewValuePos(b.b, OpBoolToFloat, x.Pos(), cmp), nil
	case "==":
		cmp := b.fn.NewValuePos(b.b, OpEqF64, x.Pos(), lhs, rhs)
		return b.fn.NewValuePos(b.b, OpBoolToFloat, x.Pos(), cmp), nil
	}
	return b.call(x.Pos(), syntax.OperatorFuncName(syntax.BinaryProto, x.Op), "binary operator", []*Value{lhs, rhs})
}

// assign lowers "name = expr": the value is stored and also yielded.
func (b *builder) assign(x *syntax.BinaryExpr) (*Value, error) {
	dst, ok := x.X.(*syntax.Name)
	if !ok {
		return nil, b.errorf(x.Pos(), InvalidAssignment, "", "destination of '=' must be a variable")
	}
	v := b.scope.LookupVar(dst.Value)
	if v == nil {
		if b.scope.LookupFunc(dst.Value) != nil {
			return nil, b.errorf(dst.Pos(), InvalidAssignment, dst.Value, "cannot assign to function %q", dst.Value)
		}
		return nil, b.errorf(dst.Pos(), UnknownVariable, dst.Value, "unknown variable %q", dst.Value)
	}

	val, err := b.expr(x.Y)
	if err != nil {
		return nil, err
	}
	b.fn.NewValuePos(b.b, OpStore, x.Pos(), b.vars[v], val)
	return val, nil
}

// ifExpr lowers: if cond then a else b
//
//	cur:   c = cond != 0; If c -> then else
//	then:  ... Plain -> merge
//	else:  ... Plain -> merge
//	merge: phi(a, b)
func (b *builder) ifExpr(x *syntax.IfExpr) (*Value, error) {
	cond, err := b.expr(x.Cond)
	if err != nil {
		return nil, err
	}
	test := b.fn.NewValuePos(b.b, OpNeqF64, x.Pos(), cond, b.constFloat(0))
	head := b.b
	head.Kind = BlockIf
	head.SetControl(test)

	thenB := b.fn.NewBlock(BlockPlain)
	thenB.Hint = "then"
	head.AddSucc(thenB)
	b.b = thenB
	thenV, err := b.expr(x.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := b.b

	elseB := b.fn.NewBlock(BlockPlain)
	elseB.Hint = "else"
	head.AddSucc(elseB)
	b.b = elseB
	elseV, err := b.expr(x.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := b.b

	merge := b.fn.NewBlock(BlockPlain)
	merge.Hint = "ifcont"
	thenEnd.AddSucc(merge)
	elseEnd.AddSucc(merge)
	b.b = merge
	return b.fn.NewValuePos(merge, OpPhi, x.Pos(), thenV, elseV), nil
}

// forExpr lowers: for v = start, end, step in body
//
// The body runs at least once. Each iteration evaluates body, step and
// the end condition (which sees the value before the increment), then
// adds step to v and loops while the condition is non-zero. The loop
// yields 0.0.
func (b *builder) forExpr(x *syntax.ForExpr) (*Value, error) {
	start, err := b.expr(x.Start)
	if err != nil {
		return nil, err
	}
	slot := b.entryAlloca(x.Var.Value)
	b.fn.NewValue(b.b, OpStore, slot, start)

	loop := b.fn.NewBlock(BlockPlain)
	loop.Hint = "loop"
	b.b.AddSucc(loop)
	b.b = loop

	saved := b.scope
	b.pushScope(x.Var, types.InductionVar, slot, "for "+x.Var.Value)
	defer func() { b.scope = saved }()

	if _, err := b.expr(x.Body); err != nil {
		return nil, err
	}
	step, err := b.expr(x.Step)
	if err != nil {
		return nil, err
	}
	end, err := b.expr(x.End)
	if err != nil {
		return nil, err
	}

	cur := b.fn.NewValue(b.b, OpLoad, slot)
	next := b.fn.NewValuePos(b.b, OpAddF64, x.Pos(), cur, step)
	b.fn.NewValue(b.b, OpStore, slot, next)
	test := b.fn.NewValuePos(b.b, OpNeqF64, x.End.Pos(), end, b.constFloat(0))

	latch := b.b
	latch.Kind = BlockIf
	latch.SetControl(test)
	latch.AddSucc(loop)

	after := b.fn.NewBlock(BlockPlain)
	after.Hint = "afterloop"
	latch.AddSucc(after)
	b.b = after

	return b.constFloat(0), nil
}

// varExpr lowers: var a = x, b in body
// Each initializer is evaluated before its own binding is visible but
// after the bindings to its left. Omitted initializers start at 0.0.
func (b *builder) varExpr(x *syntax.VarExpr) (*Value, error) {
	saved := b.scope
	defer func() { b.scope = saved }()

	for _, bind := range x.Bindings {
		var init *Value
		if bind.Init != nil {
			v, err := b.expr(bind.Init)
			if err != nil {
				return nil, err
			}
			init = v
		} else {
			init = b.constFloat(0)
		}
		slot := b.entryAlloca(bind.Name.Value)
		b.fn.NewValue(b.b, OpStore, slot, init)
		b.pushScope(bind.Name, types.LocalVar, slot, "var "+bind.Name.Value)
	}

	return b.expr(x.Body)
}
