// Package jit defines and executes Kaleidoscope functions. Definitions are
// lowered to SSA, optionally optimized, recorded in an LLVM IR module and
// run by an SSA interpreter against a table of host functions.
package jit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/you-not-fish/kaleido/internal/codegen"
	"github.com/you-not-fish/kaleido/internal/ssa"
	"github.com/you-not-fish/kaleido/internal/ssa/passes"
	"github.com/you-not-fish/kaleido/internal/syntax"
	"github.com/you-not-fish/kaleido/internal/types"
)

// Policy decides what happens when a function body is defined twice.
type Policy int

const (
	RejectRedefinition Policy = iota // second body is a Redefinition error
	ReplaceCompatible                // a body with the same arity replaces the old one
)

func (p Policy) String() string {
	if p == ReplaceCompatible {
		return "replace"
	}
	return "reject"
}

// ParsePolicy parses "reject" or "replace".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "reject":
		return RejectRedefinition, nil
	case "replace":
		return ReplaceCompatible, nil
	}
	return 0, fmt.Errorf("unknown redefinition policy %q (want reject or replace)", s)
}

// DefaultMaxCallDepth bounds nested calls when Config.MaxCallDepth is zero.
const DefaultMaxCallDepth = 10000

// Config configures an Engine. The zero value is usable.
type Config struct {
	Out          io.Writer          // host function output; os.Stdout if nil
	Log          logrus.FieldLogger // discards if nil
	Globals      *types.Scope       // known signatures; a fresh scope if nil
	Policy       Policy
	MaxCallDepth int
	Optimize     bool          // run the SSA pass pipeline before use
	Passes       passes.Config // dump settings for the pipeline; Verify is always on
	DumpSSA      io.Writer     // if set, every compiled function is printed here
	ModuleName   string
}

// Engine implements the driver's backend on top of an SSA interpreter.
type Engine struct {
	out      io.Writer
	log      logrus.FieldLogger
	globals  *types.Scope
	policy   Policy
	maxDepth int
	optimize bool
	passCfg  passes.Config
	dumpSSA  io.Writer

	funcs  map[string]*ssa.Func
	module *codegen.Module
}

// New returns an engine configured by cfg.
func New(cfg Config) *Engine {
	e := &Engine{
		out:      cfg.Out,
		log:      cfg.Log,
		globals:  cfg.Globals,
		policy:   cfg.Policy,
		maxDepth: cfg.MaxCallDepth,
		optimize: cfg.Optimize,
		passCfg:  cfg.Passes,
		dumpSSA:  cfg.DumpSSA,
		funcs:    make(map[string]*ssa.Func),
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.log == nil {
		l := logrus.New()
		l.Out = io.Discard
		e.log = l
	}
	e.passCfg.Verify = true
	if e.globals == nil {
		e.globals = types.NewGlobals()
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxCallDepth
	}
	name := cfg.ModuleName
	if name == "" {
		name = "kaleido"
	}
	e.module = codegen.NewModule(name)
	return e
}

// Globals returns the scope of known function signatures.
func (e *Engine) Globals() *types.Scope { return e.globals }

// Module returns the LLVM IR module of everything defined so far.
func (e *Engine) Module() *codegen.Module { return e.module }

// Func returns the compiled SSA of a defined function.
func (e *Engine) Func(name string) (*ssa.Func, bool) {
	fn, ok := e.funcs[name]
	return fn, ok
}

// DeclareOrDefine accepts an extern declaration or a function definition.
func (e *Engine) DeclareOrDefine(u syntax.Unit) error {
	switch u := u.(type) {
	case *syntax.ExternDecl:
		return e.declare(u.Proto)
	case *syntax.FuncDecl:
		return e.define(u)
	}
	return errorf(u.Pos(), Internal, "", "cannot declare %T", u)
}

// lookupOrInsert returns the signature registered for proto's name,
// registering proto if the name is new. A different arity is a conflict.
func (e *Engine) lookupOrInsert(proto *syntax.Prototype) (*types.Func, error) {
	obj := e.globals.LookupFunc(proto.Name)
	if obj == nil {
		obj = types.NewFunc(proto)
		e.globals.Insert(obj)
		return obj, nil
	}
	if obj.Arity() != proto.Arity() {
		return nil, errorf(proto.Pos(), Redefinition, proto.Name,
			"%s %q redeclared with %d parameters, previously %d", proto.Kind, proto.Name, proto.Arity(), obj.Arity())
	}
	return obj, nil
}

func (e *Engine) declare(proto *syntax.Prototype) error {
	obj, err := e.lookupOrInsert(proto)
	if err != nil {
		return err
	}
	if n, ok := natives[proto.Name]; ok {
		if n.arity != proto.Arity() {
			return errorf(proto.Pos(), ArityMismatch, proto.Name,
				"host function %q takes %d arguments, declared with %d", proto.Name, n.arity, proto.Arity())
		}
		obj.SetNative()
	}
	e.module.Declare(proto)
	e.log.WithFields(logrus.Fields{
		"name":   proto.Name,
		"arity":  proto.Arity(),
		"native": obj.Native(),
	}).Debug("declared extern")
	return nil
}

func (e *Engine) define(fd *syntax.FuncDecl) error {
	proto := fd.Proto
	obj, err := e.lookupOrInsert(proto)
	if err != nil {
		return err
	}
	if obj.Defined() && e.policy == RejectRedefinition {
		return errorf(proto.Pos(), Redefinition, proto.Name, "function %q already defined", proto.Name)
	}

	fn, err := e.compile(fd)
	if err != nil {
		return err
	}
	if err := e.module.Define(fn); err != nil {
		return errorf(proto.Pos(), Internal, proto.Name, "%v", err)
	}
	_, replaced := e.funcs[proto.Name]
	e.funcs[proto.Name] = fn
	obj.SetDefined()

	e.log.WithFields(logrus.Fields{
		"name":     proto.Name,
		"arity":    proto.Arity(),
		"blocks":   fn.NumBlocks(),
		"slots":    fn.NumAllocas(),
		"callees":  fn.Callees(),
		"replaced": replaced,
	}).Debug("defined function")
	return nil
}

// ExecuteAnonymous compiles and runs a top-level expression wrapper. The
// wrapper never becomes part of the session.
func (e *Engine) ExecuteAnonymous(fd *syntax.FuncDecl) (float64, error) {
	fn, err := e.compile(fd)
	if err != nil {
		return 0, err
	}
	if err := e.module.Define(fn); err != nil {
		return 0, errorf(fd.Pos(), Internal, fn.Name, "%v", err)
	}
	defer e.module.Remove(fn.Name)

	v, err := e.run(fn, nil, 0)
	if err != nil {
		return 0, err
	}
	e.log.WithFields(logrus.Fields{"pos": fd.Pos().String(), "value": v}).Debug("evaluated top-level expression")
	return v, nil
}

// Call runs a defined or host function by name.
func (e *Engine) Call(name string, args ...float64) (float64, error) {
	return e.invoke(syntax.Pos{}, name, args, 0)
}

// compile lowers fd to verified SSA and runs the pass pipeline.
func (e *Engine) compile(fd *syntax.FuncDecl) (*ssa.Func, error) {
	fn, err := ssa.Build(fd, e.globals)
	if err != nil {
		var re *ssa.ResolveError
		if errors.As(err, &re) {
			return nil, fromResolve(re)
		}
		return nil, errorf(fd.Pos(), Internal, fd.Proto.Name, "%v", err)
	}
	if err := ssa.Verify(fn); err != nil {
		return nil, errorf(fd.Pos(), Internal, fd.Proto.Name, "%v", err)
	}
	if e.optimize {
		if err := passes.Run(fn, passes.Default(), e.passCfg); err != nil {
			return nil, errorf(fd.Pos(), Internal, fd.Proto.Name, "%v", err)
		}
	}
	if e.dumpSSA != nil {
		ssa.Fprint(e.dumpSSA, fn)
	}
	return fn, nil
}
