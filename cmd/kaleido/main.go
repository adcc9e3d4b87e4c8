// Package main implements the kaleido command: an interactive Kaleidoscope
// session on a terminal, or a script runner for files and piped input.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/you-not-fish/kaleido/internal/config"
	"github.com/you-not-fish/kaleido/internal/driver"
	"github.com/you-not-fish/kaleido/internal/jit"
	"github.com/you-not-fish/kaleido/internal/ssa/passes"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Command-line flags
var (
	emitTokens   = flag.Bool("emit-tokens", false, "Output token stream and exit")
	emitAST      = flag.Bool("emit-ast", false, "Output AST and exit")
	astFormat    = flag.String("ast-format", "text", "AST output format (text or json)")
	emitSSA      = flag.Bool("emit-ssa", false, "Print the SSA of every compiled function")
	emitLL       = flag.Bool("emit-ll", false, "Write the LLVM IR module when input ends")
	output       = flag.String("o", "", "Output file for -emit-ll")
	configPath   = flag.String("config", "", "Config file (default: user config dir)")
	printConfig  = flag.Bool("print-config", false, "Print the effective config and exit")
	version      = flag.Bool("version", false, "Print version")
	verbose      = flag.Bool("v", false, "Report every accepted definition and extern")
	trace        = flag.Bool("trace", false, "Debug logging with timings")
	maxErrors    = flag.Int("max-errors", 0, "Stop a script after this many failed units (0 = never)")
	noColor      = flag.Bool("no-color", false, "Disable colored diagnostics")
	withoutOptim = flag.Bool("without-optim", false, "Skip the SSA optimization passes")
	redefinition = flag.String("redefinition", "", "Redefinition policy (reject or replace)")
	showIR       = flag.Bool("show-ir", false, "Print the LLVM IR of each definition as it is read")
	dumpFunc     = flag.String("dump-func", "", "Only dump specific function")
	dumpBefore   = flag.String("dump-before", "", "Dump SSA before pass (name or \"*\")")
	dumpAfter    = flag.String("dump-after", "", "Dump SSA after pass (name or \"*\")")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Kaleidoscope %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: kaleido [options] [file.kal ...]\n\n")
		fmt.Fprintf(os.Stderr, "Without files, reads a REPL session from a terminal or a script from stdin.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	os.Exit(run(flag.Args()))
}

// run dispatches on the parsed flags and returns the exit code.
func run(args []string) int {
	if *version {
		fmt.Printf("kaleido version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if *printConfig {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if *emitTokens || *emitAST {
		filename := "-"
		if len(args) > 0 {
			filename = args[0]
		}
		if *emitTokens {
			return runEmitTokens(filename)
		}
		return runEmitAST(filename, *astFormat)
	}

	tc, err := newToolchain(cfg, toolOptions{
		emitSSA: *emitSSA,
		verbose: *verbose,
		passes: passes.Config{
			DumpBefore: *dumpBefore,
			DumpAfter:  *dumpAfter,
			DumpFunc:   *dumpFunc,
			Out:        os.Stdout,
		},
	}, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	var code int
	if len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
		code = runREPL(tc, cfg)
	} else {
		code = runScripts(tc, args)
	}

	if *emitLL {
		if err := writeModule(tc, *output); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	return code
}

// loadConfig reads the config file and applies the flags that were set
// on the command line.
func loadConfig() (config.Config, error) {
	path, optional := *configPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg)
	return cfg, cfg.Validate()
}

// applyFlags overrides cfg with explicitly set flags only, so a config
// file value survives an unset flag's default.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "max-errors":
			cfg.MaxErrors = *maxErrors
		case "no-color":
			cfg.Color = !*noColor
		case "without-optim":
			cfg.Optimize = !*withoutOptim
		case "redefinition":
			cfg.Redefinition = *redefinition
		case "show-ir":
			cfg.EmitIR = *showIR
		}
	})
}

// toolOptions are the debugging outputs that have no config key.
type toolOptions struct {
	emitSSA bool
	verbose bool
	passes  passes.Config
}

// toolchain is one session wired to its engine, driver and reporter.
type toolchain struct {
	sess   *driver.Session
	engine *jit.Engine
	driver *driver.Driver
	log    *logrus.Logger
	out    io.Writer
	errOut io.Writer
}

func newToolchain(cfg config.Config, opts toolOptions, stdout, stderr io.Writer) (*toolchain, error) {
	policy, err := jit.ParsePolicy(cfg.Redefinition)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg, stderr)
	sess := driver.NewSession()

	jcfg := jit.Config{
		Out:          stdout,
		Log:          log.WithField("component", "jit"),
		Globals:      sess.Globals,
		Policy:       policy,
		MaxCallDepth: cfg.MaxCallDepth,
		Optimize:     cfg.Optimize,
		Passes:       opts.passes,
	}
	if opts.emitSSA {
		jcfg.DumpSSA = stdout
	}
	engine := jit.New(jcfg)

	rep := newReporter(stdout, stderr, cfg.Color)
	rep.verbose = opts.verbose
	if cfg.EmitIR {
		rep.module = engine.Module()
	}

	d := driver.New(sess, engine, rep, driver.Config{
		MaxErrors: cfg.MaxErrors,
		Log:       log.WithField("component", "driver"),
	})
	return &toolchain{
		sess:   sess,
		engine: engine,
		driver: d,
		log:    log,
		out:    stdout,
		errOut: stderr,
	}, nil
}

// newLogger logs warnings to w, or everything when tracing.
func newLogger(cfg config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.Level = logrus.WarnLevel
	if cfg.Trace {
		log.Level = logrus.DebugLevel
	}
	return log
}

// runScripts runs every named file, or stdin when there are none, in one
// session. Failed units are reported and skipped; the exit code is 1 if
// any failed.
func runScripts(tc *toolchain, files []string) int {
	if len(files) == 0 {
		files = []string{"-"}
	}
	failed := 0
	for _, filename := range files {
		err := tc.runFile(filename)
		failed += tc.driver.Errors()
		if errors.Is(err, driver.ErrTooManyErrors) {
			fmt.Fprintf(tc.errOut, "%s: %v\n", filename, err)
			return 1
		}
		if err != nil {
			fmt.Fprintf(tc.errOut, "error: %v\n", err)
			return 1
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func (tc *toolchain) runFile(filename string) error {
	name, r, err := openInput(filename)
	if err != nil {
		return err
	}
	defer r.Close()

	start := time.Now()
	err = tc.driver.Run(name, r)
	tc.log.WithFields(logrus.Fields{
		"file":    name,
		"units":   tc.driver.Units(),
		"errors":  tc.driver.Errors(),
		"elapsed": time.Since(start).String(),
	}).Debug("finished input")
	return err
}

// openInput opens filename, with "-" meaning stdin.
func openInput(filename string) (string, io.ReadCloser, error) {
	if filename == "-" {
		return "<stdin>", io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return "", nil, err
	}
	return filename, f, nil
}

// writeModule writes the IR of everything defined in the session to path,
// or to the toolchain's output when path is empty.
func writeModule(tc *toolchain, path string) error {
	if path == "" {
		_, err := tc.engine.Module().WriteTo(tc.out)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := tc.engine.Module().WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// runEmitTokens scans the input and prints every token with its position.
func runEmitTokens(filename string) int {
	name, r, err := openInput(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer r.Close()

	toks, err := syntax.Tokenize(name, r)
	for _, t := range toks {
		fmt.Println(t)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

// runEmitAST parses the input and outputs the AST of every unit. Operator
// declarations take effect for the units after them, as in a session.
func runEmitAST(filename, format string) int {
	name, r, err := openInput(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer r.Close()

	units, errs := syntax.ParseAll(name, r, syntax.NewOpTable())

	// Print errors first
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}

	for _, u := range units {
		switch format {
		case "json":
			if err := syntax.FprintJSON(os.Stdout, u); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		default:
			syntax.Fprint(os.Stdout, u)
		}
	}

	if len(errs) > 0 {
		return 1
	}
	return 0
}
