package jit

import (
	"math"

	"github.com/you-not-fish/kaleido/internal/ssa"
	"github.com/you-not-fish/kaleido/internal/syntax"
)

// invoke calls name with args. Definitions from source take precedence
// over host functions of the same name.
func (e *Engine) invoke(pos syntax.Pos, name string, args []float64, depth int) (float64, error) {
	if depth > e.maxDepth {
		return 0, errorf(pos, CallDepth, name, "call depth exceeds %d in %q", e.maxDepth, name)
	}
	if fn, ok := e.funcs[name]; ok {
		if len(args) != len(fn.Params) {
			return 0, errorf(pos, ArityMismatch, name, "%q takes %d arguments, got %d", name, len(fn.Params), len(args))
		}
		return e.run(fn, args, depth)
	}
	if n, ok := natives[name]; ok {
		if len(args) != n.arity {
			return 0, errorf(pos, ArityMismatch, name, "%q takes %d arguments, got %d", name, n.arity, len(args))
		}
		return n.fn(e, args), nil
	}
	return 0, errorf(pos, Unresolved, name, "unresolved function %q: declared but never defined", name)
}

// run interprets fn. Each value and each alloca slot gets a float64 cell;
// comparisons store 1 or 0.
func (e *Engine) run(fn *ssa.Func, args []float64, depth int) (float64, error) {
	n := fn.NumValueIDs()
	regs := make([]float64, n)
	mem := make([]float64, n)

	var (
		prev    *ssa.Block
		phiVals []float64
	)
	b := fn.Entry
	for {
		// Phis read their inputs before any of them is written.
		phiVals = phiVals[:0]
		for _, v := range b.Values {
			if v.Op != ssa.OpPhi {
				continue
			}
			i := b.PredIndex(prev)
			if i < 0 {
				return 0, errorf(v.Pos, Internal, fn.Name, "phi %s in %s reached from %v", v, b, prev)
			}
			phiVals = append(phiVals, regs[v.Args[i].ID])
		}
		k := 0
		for _, v := range b.Values {
			if v.Op == ssa.OpPhi {
				regs[v.ID] = phiVals[k]
				k++
			}
		}

		for _, v := range b.Values {
			switch v.Op {
			case ssa.OpPhi, ssa.OpAlloca:
			case ssa.OpConstFloat:
				regs[v.ID] = v.AuxFloat
			case ssa.OpArg:
				regs[v.ID] = args[v.AuxInt]
			case ssa.OpLoad:
				regs[v.ID] = mem[v.Args[0].ID]
			case ssa.OpStore:
				mem[v.Args[0].ID] = regs[v.Args[1].ID]
			case ssa.OpAddF64:
				regs[v.ID] = regs[v.Args[0].ID] + regs[v.Args[1].ID]
			case ssa.OpSubF64:
				regs[v.ID] = regs[v.Args[0].ID] - regs[v.Args[1].ID]
			case ssa.OpMulF64:
				regs[v.ID] = regs[v.Args[0].ID] * regs[v.Args[1].ID]
			case ssa.OpLtF64:
				x, y := regs[v.Args[0].ID], regs[v.Args[1].ID]
				regs[v.ID] = truth(x < y || unordered(x, y))
			case ssa.OpEqF64:
				x, y := regs[v.Args[0].ID], regs[v.Args[1].ID]
				regs[v.ID] = truth(x == y || unordered(x, y))
			case ssa.OpNeqF64:
				x, y := regs[v.Args[0].ID], regs[v.Args[1].ID]
				regs[v.ID] = truth(x < y || x > y)
			case ssa.OpBoolToFloat:
				regs[v.ID] = regs[v.Args[0].ID]
			case ssa.OpStaticCall:
				argv := make([]float64, len(v.Args))
				for i, a := range v.Args {
					argv[i] = regs[a.ID]
				}
				r, err := e.invoke(v.Pos, v.Aux, argv, depth+1)
				if err != nil {
					return 0, err
				}
				regs[v.ID] = r
			default:
				return 0, errorf(v.Pos, Internal, fn.Name, "cannot execute %s", v.LongString())
			}
		}

		switch b.Kind {
		case ssa.BlockPlain:
			prev, b = b, b.Succs[0]
		case ssa.BlockIf:
			if regs[b.Controls[0].ID] != 0 {
				prev, b = b, b.Succs[0]
			} else {
				prev, b = b, b.Succs[1]
			}
		case ssa.BlockReturn:
			return regs[b.Controls[0].ID], nil
		default:
			return 0, errorf(fn.Pos, Internal, fn.Name, "block %s has kind %s", b, b.Kind)
		}
	}
}

func unordered(x, y float64) bool {
	return math.IsNaN(x) || math.IsNaN(y)
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
