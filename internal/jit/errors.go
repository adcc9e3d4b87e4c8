package jit

import (
	"fmt"

	"github.com/you-not-fish/kaleido/internal/ssa"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Kind classifies a BackendError.
type Kind int

const (
	UnknownVariable Kind = iota
	UnknownFunction
	ArityMismatch
	Redefinition
	InvalidAssignment
	Unresolved
	CallDepth
	Internal
)

var kindNames = [...]string{
	UnknownVariable:   "unknown variable",
	UnknownFunction:   "unknown function",
	ArityMismatch:     "arity mismatch",
	Redefinition:      "redefinition",
	InvalidAssignment: "invalid assignment",
	Unresolved:        "unresolved symbol",
	CallDepth:         "call depth exceeded",
	Internal:          "internal error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// BackendError reports a unit the engine could not define or execute.
// Name is the offending identifier, if any.
type BackendError struct {
	Pos  syntax.Pos
	Kind Kind
	Name string
	Msg  string
}

func (e *BackendError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

func errorf(pos syntax.Pos, kind Kind, name, format string, args ...interface{}) *BackendError {
	return &BackendError{Pos: pos, Kind: kind, Name: name, Msg: fmt.Sprintf(format, args...)}
}

// fromResolve converts a lowering failure into a BackendError.
func fromResolve(err *ssa.ResolveError) *BackendError {
	kind := Internal
	switch err.Kind {
	case ssa.UnknownVariable:
		kind = UnknownVariable
	case ssa.UnknownFunction:
		kind = UnknownFunction
	case ssa.ArityMismatch:
		kind = ArityMismatch
	case ssa.InvalidAssignment:
		kind = InvalidAssignment
	}
	return &BackendError{Pos: err.Pos, Kind: kind, Name: err.Name, Msg: err.Msg}
}
