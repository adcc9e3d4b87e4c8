package codegen

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/you-not-fish/kaleido/internal/ssa"
)

// emitter wraps an io.Writer with helpers for emitting LLVM IR text.
type emitter struct {
	w   io.Writer
	err error // first write error
}

// emit writes a formatted line to the output (no indentation).
func (e *emitter) emit(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format+"\n", args...)
}

// emitLine writes a blank line.
func (e *emitter) emitLine() {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w)
}

// emitComment writes a comment line.
func (e *emitter) emitComment(text string) {
	e.emit("; %s", text)
}

// emitLabel writes a basic block label.
func (e *emitter) emitLabel(b *ssa.Block) {
	e.emit("%s:", blockName(b))
}

// emitInst writes an indented instruction line.
func (e *emitter) emitInst(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "  "+format+"\n", args...)
}

// valueName returns the LLVM local name for an SSA value: %vN.
func valueName(v *ssa.Value) string {
	return fmt.Sprintf("%%v%d", v.ID)
}

// paramName returns the LLVM local name for a parameter. The prefix keeps
// parameters apart from %vN temporaries.
func paramName(name string) string {
	return "%" + quote("arg."+name)
}

// blockName returns the LLVM label for an SSA block.
// Block 0 is "entry", others are their hint plus ID ("then1", "loop2").
func blockName(b *ssa.Block) string {
	if b.ID == 0 {
		return "entry"
	}
	hint := b.Hint
	if hint == "" {
		hint = "b"
	}
	return fmt.Sprintf("%s%d", hint, b.ID)
}

// globalName returns the LLVM global name for a function. Operator
// functions such as "binary|" need quoting.
func globalName(name string) string {
	return "@" + quote(name)
}

var plainIdent = regexp.MustCompile(`^[-a-zA-Z$._][-a-zA-Z$._0-9]*$`)

// quote returns name unchanged when it is a valid bare LLVM identifier,
// and as a quoted string with \HH escapes otherwise.
func quote(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\\' || c == '"' || c < 0x20 || c >= 0x7f {
			fmt.Fprintf(&b, "\\%02X", c)
		} else {
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
