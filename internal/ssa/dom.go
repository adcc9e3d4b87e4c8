package ssa

// ReversePostOrder returns the blocks of f in reverse post-order,
// starting from f.Entry. Unreachable blocks are excluded.
func ReversePostOrder(f *Func) []*Block {
	seen := make([]bool, f.nextBlockID)
	var post []*Block

	var visit func(b *Block)
	visit = func(b *Block) {
		seen[b.ID] = true
		for _, s := range b.Succs {
			if !seen[s.ID] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(f.Entry)

	rpo := make([]*Block, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// ComputeDom sets Block.Idom for every reachable block using the
// iterative algorithm of Cooper, Harvey and Kennedy. The entry block's
// Idom is nil.
func ComputeDom(f *Func) {
	rpo := ReversePostOrder(f)
	order := make([]int, f.nextBlockID) // block ID → RPO index + 1; 0 = unreachable
	for i, b := range rpo {
		order[b.ID] = i + 1
	}
	for _, b := range f.Blocks {
		b.Idom = nil
	}

	entry := f.Entry
	entry.Idom = entry // sentinel while iterating

	meet := func(x, y *Block) *Block {
		for x != y {
			for order[x.ID] > order[y.ID] {
				x = x.Idom
			}
			for order[y.ID] > order[x.ID] {
				y = y.Idom
			}
		}
		return x
	}

	for changed := true; changed; {
		changed = false
		for _, b := range rpo[1:] {
			var idom *Block
			for _, p := range b.Preds {
				if p.Idom == nil {
					continue // not processed yet, or unreachable
				}
				if idom == nil {
					idom = p
				} else {
					idom = meet(p, idom)
				}
			}
			if idom != nil && b.Idom != idom {
				b.Idom = idom
				changed = true
			}
		}
	}
	entry.Idom = nil
}

// Dominates reports whether a dominates b. ComputeDom must have run.
func Dominates(a, b *Block) bool {
	for ; b != nil; b = b.Idom {
		if b == a {
			return true
		}
	}
	return false
}

// DomChildren returns the dominator tree as a map from each block to the
// blocks it immediately dominates, in f.Blocks order. ComputeDom must have run.
func DomChildren(f *Func) map[*Block][]*Block {
	children := make(map[*Block][]*Block)
	for _, b := range f.Blocks {
		if b.Idom != nil {
			children[b.Idom] = append(children[b.Idom], b)
		}
	}
	return children
}

// ComputeDomFrontier returns the dominance frontier of every reachable
// block. ComputeDom must have run.
func ComputeDomFrontier(f *Func) map[*Block][]*Block {
	df := make(map[*Block][]*Block)
	for _, b := range ReversePostOrder(f) {
		if len(b.Preds) < 2 {
			continue
		}
		for _, p := range b.Preds {
			if p != f.Entry && p.Idom == nil {
				continue // unreachable
			}
			for runner := p; runner != nil && runner != b.Idom; runner = runner.Idom {
				if !containsBlock(df[runner], b) {
					df[runner] = append(df[runner], b)
				}
			}
		}
	}
	return df
}
