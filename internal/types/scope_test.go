package types

import (
	"strings"
	"testing"

	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Helper function to create a scope for testing
func testScope(parent *Scope, comment string) *Scope {
	return NewScope(parent, syntax.Pos{}, comment)
}

func proto(name string, params ...string) *syntax.Prototype {
	p := &syntax.Prototype{Name: name}
	for _, s := range params {
		p.Params = append(p.Params, &syntax.Name{Value: s})
	}
	return p
}

func TestScopeInsertAndLookup(t *testing.T) {
	scope := testScope(nil, "test")

	obj := NewVar(syntax.Pos{}, "x", LocalVar)
	if existing := scope.Insert(obj); existing != nil {
		t.Errorf("Insert() returned non-nil for first insert")
	}
	if scope.Lookup("x") != obj {
		t.Errorf("Lookup() did not return inserted object")
	}
	if obj.Parent() != scope {
		t.Errorf("Parent() not set by Insert")
	}

	// Insert duplicate
	if existing := scope.Insert(NewVar(syntax.Pos{}, "x", ParamVar)); existing != obj {
		t.Errorf("Insert() should return first object for duplicate")
	}
}

func TestScopeLookupParent(t *testing.T) {
	parent := testScope(nil, "parent")
	child := testScope(parent, "child")

	obj := NewVar(syntax.Pos{}, "x", ParamVar)
	parent.Insert(obj)

	found, foundScope := child.LookupParent("x")
	if found != obj || foundScope != parent {
		t.Errorf("LookupParent() = (%v, %v), want parent's object", found, foundScope)
	}
	if child.Lookup("x") != nil {
		t.Errorf("Lookup() should not find parent's object")
	}
	if obj, scope := child.LookupParent("y"); obj != nil || scope != nil {
		t.Errorf("LookupParent(missing) = (%v, %v), want (nil, nil)", obj, scope)
	}
}

func TestScopeShadowing(t *testing.T) {
	fn := testScope(nil, "function f")
	loop := testScope(fn, "for")
	inner := testScope(loop, "var")

	param := NewVar(syntax.Pos{}, "i", ParamVar)
	fn.Insert(param)
	ind := NewVar(syntax.Pos{}, "i", InductionVar)
	loop.Insert(ind)

	if got := inner.LookupVar("i"); got != ind {
		t.Errorf("LookupVar() = %v, want the loop variable", got)
	}
	if got := fn.LookupVar("i"); got != param {
		t.Errorf("LookupVar() from function scope = %v, want the parameter", got)
	}
}

func TestScopeFuncsAndVars(t *testing.T) {
	globals := NewGlobals()
	foo := NewFunc(proto("foo", "a", "b"))
	globals.Insert(foo)
	sin := NewFunc(proto("sin", "x"))
	sin.SetNative()
	globals.Insert(sin)

	body := testScope(globals, "function bar")
	body.Insert(NewVar(syntax.Pos{}, "foo", ParamVar))

	// A parameter named foo does not hide the function in call position.
	if got := body.LookupFunc("foo"); got != foo {
		t.Errorf("LookupFunc(foo) = %v, want the function", got)
	}
	if got := body.LookupVar("foo"); got == nil || got.Kind() != ParamVar {
		t.Errorf("LookupVar(foo) = %v, want the parameter", got)
	}
	if got := body.LookupVar("sin"); got != nil {
		t.Errorf("LookupVar(sin) = %v, want nil", got)
	}

	var sigs []string
	for _, f := range globals.Funcs() {
		sigs = append(sigs, f.Signature())
	}
	if got := strings.Join(sigs, " "); got != "foo/2 sin/1" {
		t.Errorf("Funcs() = %s, want foo/2 sin/1", got)
	}
}

func TestScopeRemove(t *testing.T) {
	s := NewGlobals()
	s.Insert(NewFunc(proto(syntax.AnonName)))
	if !s.Remove(syntax.AnonName) {
		t.Error("Remove() = false for present name")
	}
	if s.Remove(syntax.AnonName) {
		t.Error("Remove() = true for absent name")
	}
	if s.NumObjects() != 0 {
		t.Errorf("NumObjects() = %d, want 0", s.NumObjects())
	}
}

func TestScopeNames(t *testing.T) {
	s := testScope(nil, "test")
	for _, n := range []string{"c", "a", "b"} {
		s.Insert(NewVar(syntax.Pos{}, n, LocalVar))
	}
	if got := strings.Join(s.Names(), ","); got != "a,b,c" {
		t.Errorf("Names() = %s, want a,b,c", got)
	}
}

func TestScopeString(t *testing.T) {
	globals := NewGlobals()
	globals.Insert(NewFunc(proto("f", "x")))
	fn := testScope(globals, "function f")
	fn.Insert(NewVar(syntax.Pos{}, "x", ParamVar))

	want := "scope function f {\n  param var x\n}\nscope session {\n  extern func f/1\n}\n"
	if got := fn.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestFuncObject(t *testing.T) {
	f := NewFunc(proto("g", "a"))
	if f.Defined() || f.Native() {
		t.Error("fresh Func should be an undefined extern")
	}
	if f.String() != "extern func g/1" {
		t.Errorf("String() = %q", f.String())
	}
	f.SetDefined()
	if f.String() != "func g/1" {
		t.Errorf("String() after SetDefined = %q", f.String())
	}
	if f.Proto() == nil || f.Arity() != 1 {
		t.Errorf("Proto/Arity = %v/%d", f.Proto(), f.Arity())
	}

	n := NewFunc(proto("putchard", "c"))
	n.SetNative()
	if n.Defined() || n.String() != "native func putchard/1" {
		t.Errorf("native = %q defined=%v", n.String(), n.Defined())
	}
	n.SetDefined()
	if n.String() != "func putchard/1" {
		t.Errorf("a body overrides the host binding, got %q", n.String())
	}
}
