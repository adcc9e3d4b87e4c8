package codegen

import (
	"math"
	"strings"
	"testing"

	"github.com/you-not-fish/kaleido/internal/ssa"
	"github.com/you-not-fish/kaleido/internal/ssa/passes"
	"github.com/you-not-fish/kaleido/internal/syntax"
	"github.com/you-not-fish/kaleido/internal/types"
)

// compile parses src and returns the module holding every unit, with the
// SSA of each definition optionally optimized.
func compile(t *testing.T, src string, optimize bool) *Module {
	t.Helper()
	units, errs := syntax.ParseAll("test.kal", strings.NewReader(src), syntax.NewOpTable())
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	m := NewModule("test")
	globals := types.NewGlobals()
	for _, u := range units {
		proto := syntax.PrototypeOf(u)
		globals.Insert(types.NewFunc(proto))
		var fd *syntax.FuncDecl
		switch u := u.(type) {
		case *syntax.ExternDecl:
			m.Declare(u.Proto)
			continue
		case *syntax.FuncDecl:
			fd = u
		case *syntax.TopLevelExpr:
			fd = u.Fn
		}
		fn, err := ssa.Build(fd, globals)
		if err != nil {
			t.Fatalf("Build(%s): %v", proto.Name, err)
		}
		if optimize {
			if err := passes.Run(fn, passes.Default(), passes.Config{Verify: true}); err != nil {
				t.Fatal(err)
			}
		}
		if err := m.Define(fn); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestDefineStraightLine(t *testing.T) {
	m := compile(t, "def add(a b) a + b;", false)
	got, ok := m.Function("add")
	if !ok {
		t.Fatal("add not defined")
	}
	want := `define double @add(double %arg.a, double %arg.b) {
entry:
  %v1 = alloca double
  store double %arg.a, ptr %v1
  %v4 = alloca double
  store double %arg.b, ptr %v4
  %v6 = load double, ptr %v1
  %v7 = load double, ptr %v4
  %v8 = fadd double %v6, %v7
  ret double %v8
}
`
	if got != want {
		t.Errorf("IR =\n%s\nwant:\n%s", got, want)
	}
}

func TestDefineOptimized(t *testing.T) {
	m := compile(t, "def add(a b) a + b;", true)
	got, _ := m.Function("add")
	want := `define double @add(double %arg.a, double %arg.b) {
entry:
  %v8 = fadd double %arg.a, %arg.b
  ret double %v8
}
`
	if got != want {
		t.Errorf("IR =\n%s\nwant:\n%s", got, want)
	}
}

func TestDefineControlFlow(t *testing.T) {
	src := `
extern putchard(c);
def cmp(x) if x < 3 then 1 else x == 4;
def loop(n) for i = 1, i < n in putchard(42);`
	m := compile(t, src, false)

	cmp, _ := m.Function("cmp")
	for _, want := range []string{
		"fcmp ult double",
		"fcmp ueq double",
		"fcmp one double",
		"uitofp i1",
		"br i1 %v",
		"then1:",
		"else2:",
		"ifcont3:",
		"phi double [ 0x3FF0000000000000, %then1 ]",
	} {
		if !strings.Contains(cmp, want) {
			t.Errorf("cmp IR missing %q:\n%s", want, cmp)
		}
	}

	loop, _ := m.Function("loop")
	for _, want := range []string{
		"loop1:",
		"afterloop2:",
		"call double @putchard(double 0x4045000000000000)",
		"label %loop1, label %afterloop2",
		"ret double 0x0000000000000000",
	} {
		if !strings.Contains(loop, want) {
			t.Errorf("loop IR missing %q:\n%s", want, loop)
		}
	}
}

func TestModuleDeclarations(t *testing.T) {
	src := `
extern sin(x);
extern cos(x);
def binary| 5 (a b) if a then 1 else if b then 1 else 0;
def f(x) sin(x) | 0;`
	m := compile(t, src, true)
	out := m.String()

	for _, want := range []string{
		"; ModuleID = 'test'",
		"declare double @cos(double)",
		"declare double @sin(double)",
		`define double @"binary|"(double %arg.a, double %arg.b)`,
		`call double @"binary|"(double %v`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("module missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `declare double @"binary|"`) {
		t.Errorf("defined function also declared:\n%s", out)
	}
	if strings.Index(out, "@cos") > strings.Index(out, "@sin") {
		t.Errorf("declarations not sorted:\n%s", out)
	}
}

func TestModuleRedefineAndRemove(t *testing.T) {
	m := compile(t, "def f(x) x; def g(x) f(x); 4;", true)
	if _, ok := m.Function(syntax.AnonName); !ok {
		t.Fatal("top-level expression not defined")
	}
	if !strings.Contains(m.String(), "; top-level expression") {
		t.Errorf("missing top-level comment:\n%s", m.String())
	}

	m.Remove(syntax.AnonName)
	if _, ok := m.Function(syntax.AnonName); ok {
		t.Error("Remove kept the definition")
	}

	fn := ssa.NewFunc("f", []string{"x"})
	arg := fn.NewValue(fn.Entry, ssa.OpArg)
	arg.Aux = "x"
	fn.Entry.Kind = ssa.BlockReturn
	fn.Entry.SetControl(arg)
	if err := m.Define(fn); err != nil {
		t.Fatal(err)
	}
	if len(m.order) != 2 || m.order[0] != "f" || m.order[1] != "g" {
		t.Errorf("order after redefinition = %v, want [f g]", m.order)
	}
	if text, _ := m.Function("f"); !strings.Contains(text, "ret double %arg.x") {
		t.Errorf("redefinition not applied:\n%s", text)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0x0000000000000000"},
		{1, "0x3FF0000000000000"},
		{-2.5, "0xC004000000000000"},
		{math.Inf(1), "0x7FF0000000000000"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%g) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"fib":         "fib",
		"__anon_expr": "__anon_expr",
		"binary|":     `"binary|"`,
		"unary!":      `"unary!"`,
		`binary"`:     `"binary\22"`,
	}
	for in, want := range tests {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %s, want %s", in, got, want)
		}
	}
}
