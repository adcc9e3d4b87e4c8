// Package types models the Kaleidoscope environment: the session-wide scope
// of function signatures and the nested scopes of parameters, var bindings
// and loop variables inside a function.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/you-not-fish/kaleido/internal/syntax"
)

// Scope represents a lexical scope.
// The session's global scope holds functions; each function body opens a
// scope for its parameters, and every var/in and for opens another.
type Scope struct {
	parent  *Scope
	elems   map[string]Object
	pos     syntax.Pos
	comment string // debugging comment (e.g., "function foo", "var")
}

// NewScope creates a new scope with the given parent.
func NewScope(parent *Scope, pos syntax.Pos, comment string) *Scope {
	return &Scope{
		parent:  parent,
		elems:   make(map[string]Object),
		pos:     pos,
		comment: comment,
	}
}

// NewGlobals creates an empty session scope.
func NewGlobals() *Scope {
	return NewScope(nil, syntax.Pos{}, "session")
}

// Parent returns the parent scope, or nil for the global scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Pos returns the start position of the scope in source.
func (s *Scope) Pos() syntax.Pos {
	return s.pos
}

// Lookup returns the object with the given name in the current scope.
// Returns nil if not found in this scope (does not search parent scopes).
func (s *Scope) Lookup(name string) Object {
	return s.elems[name]
}

// LookupParent returns the object with the given name by searching
// from the current scope up through all parent scopes.
// Returns the object and the scope in which it was found.
// Returns (nil, nil) if not found.
func (s *Scope) LookupParent(name string) (Object, *Scope) {
	for scope := s; scope != nil; scope = scope.parent {
		if obj := scope.elems[name]; obj != nil {
			return obj, scope
		}
	}
	return nil, nil
}

// LookupFunc returns the function named name visible from s, or nil.
// Variables are skipped: a local named like a function does not hide it
// from call position.
func (s *Scope) LookupFunc(name string) *Func {
	for scope := s; scope != nil; scope = scope.parent {
		if f, ok := scope.elems[name].(*Func); ok {
			return f
		}
	}
	return nil
}

// LookupVar returns the innermost variable named name visible from s, or nil.
func (s *Scope) LookupVar(name string) *Var {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.elems[name].(*Var); ok {
			return v
		}
	}
	return nil
}

// Insert inserts an object into the scope.
// If an object with the same name already exists, returns the existing object.
// Otherwise, returns nil.
func (s *Scope) Insert(obj Object) Object {
	name := obj.Name()
	if existing := s.elems[name]; existing != nil {
		return existing
	}
	s.elems[name] = obj
	obj.setParent(s)
	return nil
}

// Remove deletes name from the scope and reports whether it was present.
func (s *Scope) Remove(name string) bool {
	if _, ok := s.elems[name]; !ok {
		return false
	}
	delete(s.elems, name)
	return true
}

// Names returns the names of all objects in the scope, sorted alphabetically.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.elems))
	for name := range s.elems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Funcs returns the functions in the scope, sorted by name.
func (s *Scope) Funcs() []*Func {
	var out []*Func
	for _, name := range s.Names() {
		if f, ok := s.elems[name].(*Func); ok {
			out = append(out, f)
		}
	}
	return out
}

// NumObjects returns the number of objects in the scope.
func (s *Scope) NumObjects() int {
	return len(s.elems)
}

// String returns a string representation of the scope chain for debugging,
// innermost scope first.
func (s *Scope) String() string {
	var buf strings.Builder
	for scope := s; scope != nil; scope = scope.parent {
		fmt.Fprintf(&buf, "scope %s {\n", scope.comment)
		for _, name := range scope.Names() {
			fmt.Fprintf(&buf, "  %s\n", scope.elems[name])
		}
		buf.WriteString("}\n")
	}
	return buf.String()
}
