// Package codegen renders SSA functions as textual LLVM IR.
package codegen

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/you-not-fish/kaleido/internal/ssa"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Module accumulates the LLVM IR of a session: declarations for externs
// and callees without a body, and one definition per function. Redefining
// a function replaces its text in place.
type Module struct {
	name  string
	decls map[string]int    // declared name → arity
	defs  map[string]string // defined name → IR text
	order []string          // definition order
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return &Module{
		name:  name,
		decls: make(map[string]int),
		defs:  make(map[string]string),
	}
}

// Declare records an external prototype.
func (m *Module) Declare(proto *syntax.Prototype) {
	m.decls[proto.Name] = proto.Arity()
}

// Define lowers fn and records its definition. Functions it calls that the
// module does not know yet are declared with the arity of the call.
func (m *Module) Define(fn *ssa.Func) error {
	var buf bytes.Buffer
	g := &generator{e: &emitter{w: &buf}}
	g.lowerFunc(fn)
	if g.e.err != nil {
		return fmt.Errorf("codegen %s: %w", fn.Name, g.e.err)
	}

	if _, ok := m.defs[fn.Name]; !ok {
		m.order = append(m.order, fn.Name)
	}
	m.defs[fn.Name] = buf.String()

	for _, b := range fn.Blocks {
		for _, v := range b.Values {
			if v.Op != ssa.OpStaticCall {
				continue
			}
			if _, ok := m.decls[v.Aux]; !ok {
				m.decls[v.Aux] = len(v.Args)
			}
		}
	}
	return nil
}

// Remove drops the definition of name, if any.
func (m *Module) Remove(name string) {
	if _, ok := m.defs[name]; !ok {
		return
	}
	delete(m.defs, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Function returns the IR text of the definition of name.
func (m *Module) Function(name string) (string, bool) {
	text, ok := m.defs[name]
	return text, ok
}

// WriteTo writes the module as LLVM IR text.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	e := &emitter{w: cw}

	e.emit("; ModuleID = '%s'", m.name)
	e.emit("source_filename = \"%s\"", m.name)

	var decls []string
	for name := range m.decls {
		if _, ok := m.defs[name]; !ok {
			decls = append(decls, name)
		}
	}
	sort.Strings(decls)
	if len(decls) > 0 {
		e.emitLine()
	}
	for _, name := range decls {
		e.emit("declare double %s(%s)", globalName(name), paramTypes(m.decls[name]))
	}

	for _, name := range m.order {
		e.emitLine()
		if name == syntax.AnonName {
			e.emitComment("top-level expression")
		}
		if e.err == nil {
			_, e.err = io.WriteString(cw, m.defs[name])
		}
	}
	return cw.n, e.err
}

// String returns the module as LLVM IR text.
func (m *Module) String() string {
	var sb strings.Builder
	m.WriteTo(&sb)
	return sb.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
