package passes

import "github.com/you-not-fish/kaleido/internal/ssa"

// Mem2Reg promotes variable slots to SSA registers by inserting phi nodes
// at the iterated dominance frontier of each slot's stores and renaming
// loads to the reaching definition. A slot is promoted only when every use
// is a load from it or a store into it.
func Mem2Reg(f *ssa.Func) {
	ssa.ComputeDom(f)

	slots := findPromotable(f)
	if len(slots) == 0 {
		return
	}

	df := ssa.ComputeDomFrontier(f)

	defBlocks := make(map[*ssa.Value][]*ssa.Block, len(slots))
	for _, a := range slots {
		defBlocks[a] = findDefBlocks(f, a)
	}

	phiMap := insertPhis(f, slots, defBlocks, df)
	rename(f, slots, phiMap)
	simplifyPhis(f)
}

// findPromotable returns the allocas whose address never escapes a load or
// store destination.
func findPromotable(f *ssa.Func) []*ssa.Value {
	var all []*ssa.Value
	for _, v := range f.Entry.Values {
		if v.Op == ssa.OpAlloca {
			all = append(all, v)
		}
	}
	isSlot := make(map[*ssa.Value]bool, len(all))
	for _, a := range all {
		isSlot[a] = true
	}

	escaped := make(map[*ssa.Value]bool)
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			for i, arg := range v.Args {
				if !isSlot[arg] {
					continue
				}
				if (v.Op == ssa.OpLoad || v.Op == ssa.OpStore) && i == 0 {
					continue
				}
				escaped[arg] = true
			}
		}
		for _, c := range b.Controls {
			if isSlot[c] {
				escaped[c] = true
			}
		}
	}

	var promotable []*ssa.Value
	for _, a := range all {
		if !escaped[a] {
			promotable = append(promotable, a)
		}
	}
	return promotable
}

// findDefBlocks returns the blocks that store into slot.
func findDefBlocks(f *ssa.Func, slot *ssa.Value) []*ssa.Block {
	var blocks []*ssa.Block
	for _, b := range f.Blocks {
		for _, v := range b.Values {
			if v.Op == ssa.OpStore && v.Args[0] == slot {
				blocks = append(blocks, b)
				break
			}
		}
	}
	return blocks
}

// insertPhis places an empty phi for each slot in every block of its
// iterated dominance frontier. The result maps block → slot → phi.
func insertPhis(
	f *ssa.Func,
	slots []*ssa.Value,
	defBlocks map[*ssa.Value][]*ssa.Block,
	df map[*ssa.Block][]*ssa.Block,
) map[*ssa.Block]map[*ssa.Value]*ssa.Value {
	phiMap := make(map[*ssa.Block]map[*ssa.Value]*ssa.Value)
	for _, slot := range slots {
		for _, b := range iteratedDF(defBlocks[slot], df) {
			phi := f.NewValueAtFront(b, ssa.OpPhi)
			phi.Args = make([]*ssa.Value, len(b.Preds))
			phi.Aux = slot.Aux
			if phiMap[b] == nil {
				phiMap[b] = make(map[*ssa.Value]*ssa.Value)
			}
			phiMap[b][slot] = phi
		}
	}
	return phiMap
}

// iteratedDF computes the iterated dominance frontier of defs.
func iteratedDF(defs []*ssa.Block, df map[*ssa.Block][]*ssa.Block) []*ssa.Block {
	var result []*ssa.Block
	inResult := make(map[*ssa.Block]bool)
	worklist := append([]*ssa.Block(nil), defs...)
	queued := make(map[*ssa.Block]bool, len(defs))
	for _, b := range defs {
		queued[b] = true
	}

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, d := range df[b] {
			if inResult[d] {
				continue
			}
			inResult[d] = true
			result = append(result, d)
			if !queued[d] {
				queued[d] = true
				worklist = append(worklist, d)
			}
		}
	}
	return result
}

// rename walks the dominator tree in preorder keeping a stack of reaching
// definitions per slot, rewrites loads, fills phi arguments and removes
// the promoted loads, stores and allocas.
func rename(f *ssa.Func, slots []*ssa.Value, phiMap map[*ssa.Block]map[*ssa.Value]*ssa.Value) {
	// A load with no reaching store reads 0.0, matching a fresh slot.
	zero := f.NewValueAtFront(f.Entry, ssa.OpConstFloat)

	stacks := make(map[*ssa.Value][]*ssa.Value, len(slots))
	isSlot := make(map[*ssa.Value]bool, len(slots))
	for _, a := range slots {
		stacks[a] = []*ssa.Value{zero}
		isSlot[a] = true
	}

	top := func(slot *ssa.Value) *ssa.Value {
		s := stacks[slot]
		return s[len(s)-1]
	}

	children := ssa.DomChildren(f)
	dead := make(map[*ssa.Value]bool)

	var visit func(b *ssa.Block)
	visit = func(b *ssa.Block) {
		pushed := make(map[*ssa.Value]int)

		for slot, phi := range phiMap[b] {
			stacks[slot] = append(stacks[slot], phi)
			pushed[slot]++
		}

		for _, v := range b.Values {
			if len(v.Args) == 0 || !isSlot[v.Args[0]] {
				continue
			}
			slot := v.Args[0]
			switch v.Op {
			case ssa.OpLoad:
				f.ReplaceUses(v, top(slot))
				dead[v] = true
			case ssa.OpStore:
				stacks[slot] = append(stacks[slot], v.Args[1])
				pushed[slot]++
				dead[v] = true
			}
		}

		for _, s := range b.Succs {
			i := s.PredIndex(b)
			for slot, phi := range phiMap[s] {
				val := top(slot)
				phi.Args[i] = val
				val.Uses++
			}
		}

		for _, c := range children[b] {
			visit(c)
		}

		for slot, n := range pushed {
			stacks[slot] = stacks[slot][:len(stacks[slot])-n]
		}
	}
	visit(f.Entry)

	removeValues(f, func(v *ssa.Value) bool { return dead[v] })
	removeValues(f, func(v *ssa.Value) bool {
		return (isSlot[v] || v == zero) && v.Uses == 0
	})
}

// simplifyPhis replaces phis whose arguments are all the same value (or
// the phi itself) with that value, until none remain.
func simplifyPhis(f *ssa.Func) {
	for changed := true; changed; {
		changed = false
		for _, b := range f.Blocks {
			for _, v := range b.Values {
				if v.Op != ssa.OpPhi || v.Uses == 0 {
					continue
				}
				if same := trivialPhi(v); same != nil {
					f.ReplaceUses(v, same)
					changed = true
				}
			}
		}
		removeValues(f, func(v *ssa.Value) bool {
			return v.Op == ssa.OpPhi && v.Uses == 0
		})
	}
}

// trivialPhi returns the single non-self argument of phi, or nil if the
// phi merges distinct values.
func trivialPhi(phi *ssa.Value) *ssa.Value {
	var unique *ssa.Value
	for _, arg := range phi.Args {
		if arg == nil || arg == phi {
			continue
		}
		if unique == nil {
			unique = arg
		} else if arg != unique {
			return nil
		}
	}
	return unique
}

// removeValues deletes every value matching drop and releases its args.
func removeValues(f *ssa.Func, drop func(v *ssa.Value) bool) {
	for _, b := range f.Blocks {
		live := b.Values[:0]
		for _, v := range b.Values {
			if !drop(v) {
				live = append(live, v)
				continue
			}
			for _, arg := range v.Args {
				if arg != nil {
					arg.Uses--
				}
			}
		}
		b.Values = live
	}
}
