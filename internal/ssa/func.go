package ssa

import "github.com/you-not-fish/kaleido/internal/syntax"

// Func represents an SSA function.
// It contains a control flow graph of Blocks, each containing Values.
// Every Kaleidoscope function takes float64 parameters and returns a float64.
type Func struct {
	// Name is the function name (mangled for operators).
	Name string

	// Params are the parameter names in order.
	Params []string

	// Blocks is the list of basic blocks. Blocks[0] is always the entry block.
	Blocks []*Block

	// Entry is the entry block (same as Blocks[0]).
	Entry *Block

	// Pos is the position of the defining prototype.
	Pos syntax.Pos

	// nextValueID is the next available value ID.
	nextValueID ID

	// nextBlockID is the next available block ID.
	nextBlockID ID
}

// NewFunc creates a new SSA function with the given name and parameters.
// An entry block is automatically created.
func NewFunc(name string, params []string) *Func {
	f := &Func{
		Name:   name,
		Params: params,
	}
	f.Entry = f.NewBlock(BlockPlain)
	f.Entry.Hint = "entry"
	return f
}

// NewBlock creates a new basic block with the given kind and appends it to the function.
func (f *Func) NewBlock(kind BlockKind) *Block {
	b := &Block{
		ID:   f.nextBlockID,
		Kind: kind,
		Func: f,
	}
	f.nextBlockID++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewValue creates a new Value in the given block. The result type is
// taken from the op.
func (f *Func) NewValue(b *Block, op Op, args ...*Value) *Value {
	v := &Value{
		ID:    f.nextValueID,
		Op:    op,
		Type:  op.Info().Result,
		Block: b,
	}
	f.nextValueID++
	for _, arg := range args {
		v.AddArg(arg)
	}
	b.Values = append(b.Values, v)
	return v
}

// NewValuePos creates a new Value with source position in the given block.
func (f *Func) NewValuePos(b *Block, op Op, pos syntax.Pos, args ...*Value) *Value {
	v := f.NewValue(b, op, args...)
	v.Pos = pos
	return v
}

// NumValueIDs returns an upper bound on the value IDs in f, for tables
// indexed by Value.ID.
func (f *Func) NumValueIDs() int { return int(f.nextValueID) }

// NumBlocks returns the number of blocks in the function.
func (f *Func) NumBlocks() int { return len(f.Blocks) }

// NumAllocas returns the number of stack slots the function needs.
func (f *Func) NumAllocas() int {
	n := 0
	for _, v := range f.Entry.Values {
		if v.Op == OpAlloca {
			n++
		}
	}
	return n
}

// Callees returns the distinct names of functions called by f, in order of
// first appearance.
func (f *Func) Callees() []string {
	var out []string
	seen := make(map[string]bool)
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			if v.Op == OpStaticCall && !seen[v.Aux] {
				seen[v.Aux] = true
				out = append(out, v.Aux)
			}
		}
	}
	return out
}

// NewValueAtFront creates a new Value at the start of block b. Used for
// phis, which must precede every other value in their block.
func (f *Func) NewValueAtFront(b *Block, op Op) *Value {
	v := &Value{
		ID:    f.nextValueID,
		Op:    op,
		Type:  op.Info().Result,
		Block: b,
	}
	f.nextValueID++
	b.Values = append([]*Value{v}, b.Values...)
	return v
}

// ReplaceUses rewrites every use of old, including block controls, to new.
func (f *Func) ReplaceUses(old, new *Value) {
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			for i, a := range v.Args {
				if a == old {
					v.Args[i] = new
					old.Uses--
					new.Uses++
				}
			}
		}
		for i, c := range b.Controls {
			if c == old {
				b.Controls[i] = new
				old.Uses--
				new.Uses++
			}
		}
	}
}
