package syntax

import (
	"fmt"
	"sort"
)

// Arity distinguishes prefix operators from infix ones.
type Arity uint8

const (
	Unary Arity = iota + 1
	Binary
)

func (a Arity) String() string {
	switch a {
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	}
	return fmt.Sprintf("arity(%d)", a)
}

// Precedence bounds for user-defined binary operators.
const (
	DefaultBinaryPrec = 30
	MinBinaryPrec     = 1
	MaxBinaryPrec     = 100
)

// OpEntry describes one operator known to the parser.
type OpEntry struct {
	Symbol      string
	Arity       Arity
	Prec        int // binding strength; unused for unary operators
	UserDefined bool
}

type opKey struct {
	sym   string
	arity Arity
}

// OpTable maps (symbol, arity) to operator entries. It is consulted only
// while parsing and grows as operator definitions are accepted.
type OpTable struct {
	entries map[opKey]OpEntry
}

// NewOpTable returns a table seeded with the built-in binary operators.
func NewOpTable() *OpTable {
	t := &OpTable{entries: make(map[opKey]OpEntry)}
	for _, e := range builtinOps {
		t.entries[opKey{e.Symbol, e.Arity}] = e
	}
	return t
}

var builtinOps = []OpEntry{
	{Symbol: "=", Arity: Binary, Prec: 2},
	{Symbol: "<", Arity: Binary, Prec: 10},
	{Symbol: "==", Arity: Binary, Prec: 10},
	{Symbol: "+", Arity: Binary, Prec: 20},
	{Symbol: "-", Arity: Binary, Prec: 20},
	{Symbol: "*", Arity: Binary, Prec: 40},
}

// IsBuiltin reports whether sym is a built-in binary operator.
func IsBuiltin(sym string) bool {
	for _, e := range builtinOps {
		if e.Symbol == sym {
			return true
		}
	}
	return false
}

// Lookup returns the precedence of the operator (sym, arity).
// ok is false if no such operator is defined.
func (t *OpTable) Lookup(sym string, arity Arity) (prec int, ok bool) {
	e, ok := t.entries[opKey{sym, arity}]
	return e.Prec, ok
}

// BinaryPrec returns the precedence of sym as a binary operator, or 0 if
// sym is not one.
func (t *OpTable) BinaryPrec(sym string) int {
	prec, ok := t.Lookup(sym, Binary)
	if !ok {
		return 0
	}
	return prec
}

// Define adds or overwrites the entry for (sym, arity). Built-ins may be
// overwritten too; their meaning stays, only the precedence changes.
func (t *OpTable) Define(sym string, arity Arity, prec int) {
	t.entries[opKey{sym, arity}] = OpEntry{Symbol: sym, Arity: arity, Prec: prec, UserDefined: true}
}

// Entries returns all entries sorted by arity, then descending precedence,
// then symbol.
func (t *OpTable) Entries() []OpEntry {
	out := make([]OpEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Arity != b.Arity {
			return a.Arity < b.Arity
		}
		if a.Prec != b.Prec {
			return a.Prec > b.Prec
		}
		return a.Symbol < b.Symbol
	})
	return out
}

// Clone returns an independent copy of the table.
func (t *OpTable) Clone() *OpTable {
	c := &OpTable{entries: make(map[opKey]OpEntry, len(t.entries))}
	for k, e := range t.entries {
		c.entries[k] = e
	}
	return c
}

// Register records the operator declared by p, if any.
func (t *OpTable) Register(p *Prototype) {
	switch p.Kind {
	case UnaryProto:
		t.Define(p.Op, Unary, 0)
	case BinaryProto:
		t.Define(p.Op, Binary, p.Prec)
	}
}
