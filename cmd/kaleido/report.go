package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/you-not-fish/kaleido/internal/codegen"
	"github.com/you-not-fish/kaleido/internal/driver"
	"github.com/you-not-fish/kaleido/internal/jit"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

// reporter prints unit outcomes, coloring diagnostics by error class.
type reporter struct {
	out     io.Writer
	err     io.Writer
	verbose bool
	module  *codegen.Module // print each definition's IR when set

	value   *color.Color
	syntax  *color.Color
	backend *color.Color
	note    *color.Color
}

func newReporter(out, errOut io.Writer, useColor bool) *reporter {
	r := &reporter{
		out:     out,
		err:     errOut,
		value:   color.New(color.FgCyan),
		syntax:  color.New(color.FgRed, color.Bold),
		backend: color.New(color.FgMagenta, color.Bold),
		note:    color.New(color.Faint),
	}
	if !useColor {
		for _, c := range []*color.Color{r.value, r.syntax, r.backend, r.note} {
			c.DisableColor()
		}
	}
	return r
}

func (r *reporter) Result(pos syntax.Pos, value float64) {
	fmt.Fprintf(r.out, "Evaluated to %s\n", r.value.Sprintf("%f", value))
}

func (r *reporter) Declared(u syntax.Unit) {
	if r.verbose {
		fmt.Fprintln(r.out, r.note.Sprint(driver.Describe(u)))
	}
	if r.module == nil {
		return
	}
	if fd, ok := u.(*syntax.FuncDecl); ok {
		if ir, ok := r.module.Function(fd.Proto.Name); ok {
			fmt.Fprint(r.out, ir)
		}
	}
}

func (r *reporter) Error(err error) {
	label, c := classify(err)
	switch c {
	case classSyntax:
		fmt.Fprintf(r.err, "%s: %v\n", r.syntax.Sprint(label), err)
	case classBackend:
		fmt.Fprintf(r.err, "%s: %v\n", r.backend.Sprint(label), err)
	default:
		fmt.Fprintf(r.err, "%s: %v\n", label, err)
	}
}

type errClass int

const (
	classOther errClass = iota
	classSyntax
	classBackend
)

// classify names the kind of a unit failure.
func classify(err error) (string, errClass) {
	var (
		le *syntax.LexError
		pe *syntax.ParseError
		be *jit.BackendError
	)
	switch {
	case errors.As(err, &le):
		return "lex error", classSyntax
	case errors.As(err, &pe):
		return "parse error", classSyntax
	case errors.As(err, &be):
		return be.Kind.String(), classBackend
	}
	return "error", classOther
}
