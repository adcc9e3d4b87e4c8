// Package driver runs the top-level loop: parse a unit, register what it
// declares, and hand it to the backend to define or execute.
package driver

import (
	"errors"
	"strings"

	"github.com/you-not-fish/kaleido/internal/syntax"
	"github.com/you-not-fish/kaleido/internal/types"
)

// Session is the state that outlives a single unit: the operator table
// and the known function signatures. Both only grow.
type Session struct {
	Ops     *syntax.OpTable
	Globals *types.Scope
}

// NewSession returns a session holding only the built-in operators.
func NewSession() *Session {
	return &Session{
		Ops:     syntax.NewOpTable(),
		Globals: types.NewGlobals(),
	}
}

// Register records proto: its operator entry first, then its signature.
// An existing signature with the same name is kept; arity conflicts are
// for the backend to reject. It reports whether the name was new.
func (s *Session) Register(proto *syntax.Prototype) bool {
	s.Ops.Register(proto)
	return s.Globals.Insert(types.NewFunc(proto)) == nil
}

// Complete reports whether src holds only whole units, so an interactive
// reader knows whether to ask for another line. It parses against a copy
// of the operator table and leaves the session untouched.
func (s *Session) Complete(src string) bool {
	if strings.TrimSpace(src) == "" {
		return true
	}
	_, errs := syntax.ParseAll("<probe>", strings.NewReader(src), s.Ops.Clone())
	for _, err := range errs {
		var pe *syntax.ParseError
		if errors.As(err, &pe) && pe.EOF {
			return false
		}
	}
	return true
}
