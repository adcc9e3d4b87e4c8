package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/kaleido/internal/config"
	"github.com/you-not-fish/kaleido/internal/jit"
	"github.com/you-not-fish/kaleido/internal/ssa/passes"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

func TestRunEmitTokens(t *testing.T) {
	filename := writeTempKalFile(t, "def f(x) x + 1;\n")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})

	if code != 0 {
		t.Fatalf("runEmitTokens exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{
		filename + ":1:1\tdef\n",
		"\tNAME\tf\n",
		"\tOP\t+\n",
		"\tNUMBER\t1\n",
		"\t;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("token stream missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\tEOF\n") {
		t.Errorf("token stream does not end with EOF:\n%s", out)
	}
}

func TestRunEmitTokensMalformedNumber(t *testing.T) {
	filename := writeTempKalFile(t, "1.2.3;\n")
	code, _, errOut := captureOutput(t, func() int {
		return runEmitTokens(filename)
	})

	if code != 1 {
		t.Fatalf("runEmitTokens exit=%d, want 1", code)
	}
	if !strings.Contains(errOut, `malformed number "1.2.3"`) {
		t.Fatalf("stderr missing lex error:\n%s", errOut)
	}
}

func TestRunEmitASTText(t *testing.T) {
	src := `def binary| 5 (a b) if a then 1 else b;
0 | 1;
`
	filename := writeTempKalFile(t, src)
	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename, "text")
	})

	if code != 0 {
		t.Fatalf("runEmitAST exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, `Prototype binary "|" prec 5 (a b)`) {
		t.Fatalf("AST missing operator prototype:\n%s", out)
	}
	if !strings.Contains(out, `BinaryExpr "|"`) {
		t.Fatalf("AST missing use of the declared operator:\n%s", out)
	}
}

func TestRunEmitASTJSON(t *testing.T) {
	filename := writeTempKalFile(t, "extern sin(x);\n")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename, "json")
	})

	if code != 0 {
		t.Fatalf("runEmitAST exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, `"type": "ExternDecl"`) {
		t.Fatalf("JSON AST missing extern:\n%s", out)
	}
}

func TestRunEmitASTReportsErrors(t *testing.T) {
	filename := writeTempKalFile(t, "def (x) x;\n2;\n")
	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename, "text")
	})

	if code != 1 {
		t.Fatalf("runEmitAST exit=%d, want 1", code)
	}
	if errOut == "" {
		t.Fatal("expected a parse error on stderr")
	}
	if !strings.Contains(out, "TopLevelExpr") {
		t.Fatalf("units after the error should still be printed:\n%s", out)
	}
}

func TestRunScripts(t *testing.T) {
	filename := writeTempKalFile(t, "def add(a b) a + b;\nadd(1, 2);\n")
	tc, out, errOut := newTestToolchain(t, testConfig(), toolOptions{})

	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}
	if got, want := out.String(), "Evaluated to 3.000000\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRunScriptsSessionSpansFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "lib.kal")
	second := filepath.Join(dir, "main.kal")
	writeFile(t, first, "def binary% 60 (a b) a - b * 2;\n")
	writeFile(t, second, "10 % 3 + 1;\n")

	tc, out, errOut := newTestToolchain(t, testConfig(), toolOptions{})
	if code := runScripts(tc, []string{first, second}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}
	if got, want := out.String(), "Evaluated to 5.000000\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRunScriptsFailedUnit(t *testing.T) {
	filename := writeTempKalFile(t, "foo(1);\n2;\n")
	tc, out, errOut := newTestToolchain(t, testConfig(), toolOptions{})

	if code := runScripts(tc, []string{filename}); code != 1 {
		t.Fatalf("runScripts exit=%d, want 1", code)
	}
	if got, want := out.String(), "Evaluated to 2.000000\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	if !strings.HasPrefix(errOut.String(), "unknown function: "+filename+":1:1") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRunScriptsMaxErrors(t *testing.T) {
	filename := writeTempKalFile(t, "x;\ny;\n1;\n")
	cfg := testConfig()
	cfg.MaxErrors = 1
	tc, out, errOut := newTestToolchain(t, cfg, toolOptions{})

	if code := runScripts(tc, []string{filename}); code != 1 {
		t.Fatalf("runScripts exit=%d, want 1", code)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should run after the limit, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "too many errors") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRunScriptsMissingFile(t *testing.T) {
	tc, _, errOut := newTestToolchain(t, testConfig(), toolOptions{})
	missing := filepath.Join(t.TempDir(), "missing.kal")

	if code := runScripts(tc, []string{missing}); code != 1 {
		t.Fatalf("runScripts exit=%d, want 1", code)
	}
	if !strings.HasPrefix(errOut.String(), "error: ") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestShowIRAndVerbose(t *testing.T) {
	filename := writeTempKalFile(t, "extern sin(x);\ndef id(x) x;\n")
	cfg := testConfig()
	cfg.EmitIR = true
	tc, out, errOut := newTestToolchain(t, cfg, toolOptions{verbose: true})

	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}
	got := out.String()
	for _, want := range []string{
		"Read extern: sin(x)\n",
		"Read function definition: id(x)\n",
		"define double @id(double %arg.x) {\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout missing %q:\n%s", want, got)
		}
	}
}

func TestEmitSSAAndPassDumps(t *testing.T) {
	filename := writeTempKalFile(t, "def id(x) x;\n")
	var dumps bytes.Buffer
	opts := toolOptions{
		emitSSA: true,
		passes:  passes.Config{DumpAfter: "mem2reg", Out: &dumps},
	}
	tc, out, errOut := newTestToolchain(t, testConfig(), opts)

	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out.String(), "func id(x):\n") {
		t.Fatalf("SSA dump missing:\n%s", out.String())
	}
	if !strings.Contains(dumps.String(), "--- after mem2reg (id) ---\n") {
		t.Fatalf("pass dump missing:\n%s", dumps.String())
	}
}

func TestWithoutOptimKeepsSlots(t *testing.T) {
	filename := writeTempKalFile(t, "def id(x) x;\n")
	cfg := testConfig()
	cfg.Optimize = false
	cfg.EmitIR = true
	tc, out, errOut := newTestToolchain(t, cfg, toolOptions{})

	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out.String(), "alloca double") {
		t.Fatalf("unoptimized IR should keep its stack slot:\n%s", out.String())
	}
}

func TestWriteModule(t *testing.T) {
	filename := writeTempKalFile(t, "def twice(x) x * 2;\ntwice(4);\n")
	tc, _, errOut := newTestToolchain(t, testConfig(), toolOptions{})
	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d\nstderr:\n%s", code, errOut)
	}

	path := filepath.Join(t.TempDir(), "out.ll")
	if err := writeModule(tc, path); err != nil {
		t.Fatalf("writeModule: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ir := string(data)
	if !strings.Contains(ir, "define double @twice(double %arg.x)") {
		t.Fatalf("module missing definition:\n%s", ir)
	}
	if strings.Contains(ir, "top-level expression") {
		t.Fatalf("evaluated expressions must not stay in the module:\n%s", ir)
	}
}

func TestMetaCommands(t *testing.T) {
	filename := writeTempKalFile(t, "def unary!(v) if v then 0 else 1;\n")
	tc, out, _ := newTestToolchain(t, testConfig(), toolOptions{})
	if code := runScripts(tc, []string{filename}); code != 0 {
		t.Fatalf("runScripts exit=%d", code)
	}

	tests := []struct {
		cmd  string
		quit bool
		want string
	}{
		{":help", false, ":funcs"},
		{":ops", false, "binary +   prec 20  builtin\n"},
		{":ops", false, "unary  !            user\n"},
		{":funcs", false, "func unary!/1\n"},
		{":natives", false, "putchard/1\n"},
		{":ir", false, "define double @\"unary!\"(double %arg.v)"},
		{":bogus", false, "unknown command :bogus"},
		{":quit", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			out.Reset()
			if quit := tc.meta(tt.cmd); quit != tt.quit {
				t.Fatalf("meta(%q) quit = %v, want %v", tt.cmd, quit, tt.quit)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("meta(%q) output missing %q:\n%s", tt.cmd, tt.want, out.String())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err   error
		label string
		class errClass
	}{
		{&syntax.LexError{Msg: "bad"}, "lex error", classSyntax},
		{&syntax.ParseError{Msg: "bad"}, "parse error", classSyntax},
		{fmt.Errorf("wrapped: %w", &syntax.ParseError{Msg: "bad"}), "parse error", classSyntax},
		{&jit.BackendError{Kind: jit.Redefinition, Msg: "bad"}, "redefinition", classBackend},
		{errors.New("bad"), "error", classOther},
	}
	for _, tt := range tests {
		label, class := classify(tt.err)
		if label != tt.label || class != tt.class {
			t.Errorf("classify(%v) = %q, %d; want %q, %d", tt.err, label, class, tt.label, tt.class)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() {
		flag.Set("without-optim", "false")
		flag.Set("redefinition", "reject")
	})
	if err := flag.Set("without-optim", "true"); err != nil {
		t.Fatal(err)
	}
	if err := flag.Set("redefinition", "replace"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.MaxErrors = 7
	applyFlags(&cfg)

	if cfg.Optimize {
		t.Error("-without-optim should turn optimization off")
	}
	if cfg.Redefinition != "replace" {
		t.Errorf("Redefinition = %q, want replace", cfg.Redefinition)
	}
	if cfg.MaxErrors != 7 {
		t.Errorf("unset -max-errors overrode the config: %d", cfg.MaxErrors)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "prompt = \"kal> \"\nmax_call_depth = 50\n")
	old := *configPath
	*configPath = path
	t.Cleanup(func() { *configPath = old })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Prompt != "kal> " || cfg.MaxCallDepth != 50 {
		t.Fatalf("config not applied: %+v", cfg)
	}
}

func TestNewToolchainRejectsPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Redefinition = "sometimes"
	if _, err := newToolchain(cfg, toolOptions{}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected an error for an unknown redefinition policy")
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Color = false
	cfg.HistoryFile = ""
	return cfg
}

func newTestToolchain(t *testing.T, cfg config.Config, opts toolOptions) (*toolchain, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	tc, err := newToolchain(cfg, opts, &out, &errOut)
	if err != nil {
		t.Fatalf("newToolchain: %v", err)
	}
	return tc, &out, &errOut
}

func writeTempKalFile(t *testing.T, src string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "input.kal")
	writeFile(t, filename, src)
	return filename
}

func writeFile(t *testing.T, filename, src string) {
	t.Helper()
	if err := os.WriteFile(filename, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	outBytes, _ := io.ReadAll(rOut)
	errBytes, _ := io.ReadAll(rErr)
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
