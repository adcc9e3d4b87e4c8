package ssa

import (
	"fmt"
	"strings"
)

// Verify checks the structural integrity of an SSA function: CFG edges,
// terminators, operand counts and types, and that every use is dominated
// by its definition. It returns an error describing all violations found,
// or nil if valid.
func Verify(f *Func) error {
	var errs []string

	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if f.Entry == nil || len(f.Blocks) == 0 {
		add("func %s: no entry block", f.Name)
		return combineErrors(errs)
	}
	if f.Blocks[0] != f.Entry {
		add("func %s: Blocks[0] is not the entry block", f.Name)
	}

	// 1. Entry block has no predecessors
	if len(f.Entry.Preds) != 0 {
		add("func %s: entry block %s has %d predecessors, want 0",
			f.Name, f.Entry, len(f.Entry.Preds))
	}

	blockSet := make(map[*Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		blockSet[b] = true
	}
	valueSet := make(map[*Value]bool)
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			valueSet[v] = true
		}
	}

	for _, b := range f.Blocks {
		// 2. Block bookkeeping
		if b.Kind == BlockInvalid {
			add("func %s, %s: block has invalid kind", f.Name, b)
		}
		if b.Func != f {
			add("func %s, %s: block Func pointer mismatch", f.Name, b)
		}

		for _, v := range b.Values {
			// 3. Every Value's Block pointer matches its containing block
			if v.Block != b {
				add("func %s, %s, %s: value Block pointer is %s, want %s",
					f.Name, b, v, v.Block, b)
			}
			// 4. Result type matches the op
			if v.Type != v.Op.Info().Result {
				add("func %s, %s, %s (%s): type %s, want %s",
					f.Name, b, v, v.Op, v.Type, v.Op.Info().Result)
			}
			// 5. Args exist and have the right types
			for i, arg := range v.Args {
				if arg == nil {
					add("func %s, %s, %s: arg[%d] is nil", f.Name, b, v, i)
					continue
				}
				if !valueSet[arg] {
					add("func %s, %s, %s: arg[%d] (%s) not found in function", f.Name, b, v, i, arg)
				}
			}
			checkOperands(v, func(format string, args ...interface{}) {
				add("func %s, %s, %s (%s): %s", f.Name, b, v, v.Op, fmt.Sprintf(format, args...))
			})
			// 6. Allocas live in the entry block; phis have one arg per pred
			if v.Op == OpAlloca && b != f.Entry {
				add("func %s, %s, %s: alloca outside entry block", f.Name, b, v)
			}
			if v.Op == OpPhi && len(v.Args) != len(b.Preds) {
				add("func %s, %s, %s: phi has %d args but block has %d preds",
					f.Name, b, v, len(v.Args), len(b.Preds))
			}
		}

		// 7. Terminator checks based on Kind
		switch b.Kind {
		case BlockPlain:
			if len(b.Succs) != 1 {
				add("func %s, %s: plain block has %d succs, want 1", f.Name, b, len(b.Succs))
			}
		case BlockIf:
			if len(b.Succs) != 2 {
				add("func %s, %s: if block has %d succs, want 2", f.Name, b, len(b.Succs))
			}
			if len(b.Controls) != 1 || b.Controls[0] == nil || b.Controls[0].Type != TypeBool {
				add("func %s, %s: if block needs one bool control", f.Name, b)
			}
		case BlockReturn:
			if len(b.Succs) != 0 {
				add("func %s, %s: return block has %d succs, want 0", f.Name, b, len(b.Succs))
			}
			if len(b.Controls) != 1 || b.Controls[0] == nil || b.Controls[0].Type != TypeFloat {
				add("func %s, %s: return block needs one double control", f.Name, b)
			}
		}
		for i, c := range b.Controls {
			if c != nil && !valueSet[c] {
				add("func %s, %s: control[%d] (%s) not found in function", f.Name, b, i, c)
			}
		}

		// 8. Succs/Preds edge consistency
		for _, succ := range b.Succs {
			if !blockSet[succ] {
				add("func %s, %s: successor %s not in function", f.Name, b, succ)
			} else if succ.PredIndex(b) < 0 {
				add("func %s, %s: successor %s does not have %s as predecessor", f.Name, b, succ, b)
			}
		}
		for _, pred := range b.Preds {
			if !blockSet[pred] {
				add("func %s, %s: predecessor %s not in function", f.Name, b, pred)
			} else if !containsBlock(pred.Succs, b) {
				add("func %s, %s: predecessor %s does not have %s as successor", f.Name, b, pred, b)
			}
		}
	}

	if len(errs) > 0 {
		return combineErrors(errs)
	}

	// 9. Definitions dominate uses
	ComputeDom(f)
	index := make(map[*Value]int)
	for _, b := range f.Blocks {
		for i, v := range b.Values {
			index[v] = i
		}
	}
	reachable := make(map[*Block]bool)
	for _, b := range ReversePostOrder(f) {
		reachable[b] = true
	}
	for _, b := range f.Blocks {
		if !reachable[b] {
			continue
		}
		for _, v := range b.Values {
			for i, arg := range v.Args {
				use := b
				if v.Op == OpPhi {
					use = b.Preds[i]
				} else if arg.Block == b {
					if index[arg] >= index[v] {
						add("func %s, %s, %s: arg[%d] %s used before definition", f.Name, b, v, i, arg)
					}
					continue
				}
				if !Dominates(arg.Block, use) {
					add("func %s, %s, %s: arg[%d] %s defined in %s which does not dominate %s",
						f.Name, b, v, i, arg, arg.Block, use)
				}
			}
		}
		for i, c := range b.Controls {
			if !Dominates(c.Block, b) {
				add("func %s, %s: control[%d] %s defined in %s which does not dominate it",
					f.Name, b, i, c, c.Block)
			}
		}
	}

	return combineErrors(errs)
}

// checkOperands reports operand count and type violations for v.
func checkOperands(v *Value, bad func(format string, args ...interface{})) {
	want := func(n int, types ...Type) {
		if len(v.Args) != n {
			bad("has %d args, want %d", len(v.Args), n)
			return
		}
		for i, t := range types {
			if v.Args[i] != nil && v.Args[i].Type != t {
				bad("arg[%d] is %s, want %s", i, v.Args[i].Type, t)
			}
		}
	}

	switch v.Op {
	case OpConstFloat, OpArg, OpAlloca:
		want(0)
	case OpLoad:
		want(1, TypePtr)
	case OpStore:
		want(2, TypePtr, TypeFloat)
	case OpAddF64, OpSubF64, OpMulF64, OpLtF64, OpEqF64, OpNeqF64:
		want(2, TypeFloat, TypeFloat)
	case OpBoolToFloat:
		want(1, TypeBool)
	case OpStaticCall:
		if v.Aux == "" {
			bad("call without callee")
		}
		for i, a := range v.Args {
			if a != nil && a.Type != TypeFloat {
				bad("arg[%d] is %s, want double", i, a.Type)
			}
		}
	case OpPhi:
		for i, a := range v.Args {
			if a != nil && a.Type != TypeFloat {
				bad("arg[%d] is %s, want double", i, a.Type)
			}
		}
	default:
		bad("unknown op")
	}
}

// containsBlock checks whether bs contains b.
func containsBlock(bs []*Block, b *Block) bool {
	for _, x := range bs {
		if x == b {
			return true
		}
	}
	return false
}

// combineErrors creates an error from a list of error strings, or returns nil.
func combineErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("SSA verification failed:\n  %s", strings.Join(errs, "\n  "))
}
