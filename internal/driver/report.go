package driver

import (
	"fmt"
	"io"

	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Reporter receives the outcome of every unit.
type Reporter interface {
	Result(pos syntax.Pos, value float64) // a top-level expression was evaluated
	Declared(u syntax.Unit)               // a definition or extern was accepted
	Error(err error)                      // a unit failed
}

// TextReporter prints results to Out and errors to Err as plain text.
// Declarations are printed only when Verbose is set.
type TextReporter struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool
}

func (r *TextReporter) Result(pos syntax.Pos, value float64) {
	fmt.Fprintf(r.Out, "Evaluated to %f\n", value)
}

func (r *TextReporter) Declared(u syntax.Unit) {
	if !r.Verbose {
		return
	}
	fmt.Fprintln(r.Out, Describe(u))
}

func (r *TextReporter) Error(err error) {
	fmt.Fprintf(r.Err, "error: %v\n", err)
}

// Describe summarizes a declaration, e.g. "Read function definition: fib(n)".
func Describe(u syntax.Unit) string {
	proto := syntax.PrototypeOf(u)
	what := "function definition"
	if _, ok := u.(*syntax.ExternDecl); ok {
		what = "extern"
	}
	params := ""
	for i, p := range proto.Params {
		if i > 0 {
			params += " "
		}
		params += p.Value
	}
	return fmt.Sprintf("Read %s: %s(%s)", what, proto.Name, params)
}
