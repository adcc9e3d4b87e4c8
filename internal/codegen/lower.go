package codegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/you-not-fish/kaleido/internal/ssa"
)

// generator lowers SSA functions to LLVM IR text.
type generator struct {
	e *emitter
}

// lowerFunc emits the LLVM IR for a single SSA function.
func (g *generator) lowerFunc(fn *ssa.Func) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "double " + paramName(p)
	}

	g.e.emit("define double %s(%s) {", globalName(fn.Name), strings.Join(params, ", "))
	for i, b := range fn.Blocks {
		if i > 0 {
			g.e.emitLine()
		}
		g.lowerBlock(b)
	}
	g.e.emit("}")
}

// lowerBlock emits the LLVM IR for a single basic block.
func (g *generator) lowerBlock(b *ssa.Block) {
	g.e.emitLabel(b)
	for _, v := range b.Values {
		g.lowerValue(v)
	}
	g.lowerTerminator(b)
}

// lowerValue emits the LLVM IR for a single SSA value.
func (g *generator) lowerValue(v *ssa.Value) {
	switch v.Op {
	// Constants and arguments are inlined at use sites.
	case ssa.OpConstFloat, ssa.OpArg:
		return

	case ssa.OpAddF64:
		g.emitBinOp("fadd", v)
	case ssa.OpSubF64:
		g.emitBinOp("fsub", v)
	case ssa.OpMulF64:
		g.emitBinOp("fmul", v)

	case ssa.OpLtF64:
		g.emitFCmp("ult", v)
	case ssa.OpEqF64:
		g.emitFCmp("ueq", v)
	case ssa.OpNeqF64:
		g.emitFCmp("one", v)

	case ssa.OpBoolToFloat:
		g.e.emitInst("%s = uitofp %s %s to %s", valueName(v), llvmType(v.Args[0].Type), g.operand(v.Args[0]), llvmType(v.Type))

	case ssa.OpAlloca:
		g.e.emitInst("%s = alloca double", valueName(v))
	case ssa.OpLoad:
		g.e.emitInst("%s = load double, ptr %s", valueName(v), g.operand(v.Args[0]))
	case ssa.OpStore:
		g.e.emitInst("store double %s, ptr %s", g.operand(v.Args[1]), g.operand(v.Args[0]))

	case ssa.OpPhi:
		g.lowerPhi(v)
	case ssa.OpStaticCall:
		g.lowerStaticCall(v)

	default:
		g.e.emitInst("; unhandled op %s", v.Op)
	}
}

// lowerTerminator emits the block terminator instruction.
func (g *generator) lowerTerminator(b *ssa.Block) {
	switch b.Kind {
	case ssa.BlockPlain:
		if len(b.Succs) > 0 {
			g.e.emitInst("br label %%%s", blockName(b.Succs[0]))
		} else {
			g.e.emitInst("unreachable")
		}
	case ssa.BlockIf:
		g.e.emitInst("br i1 %s, label %%%s, label %%%s",
			g.operand(b.Controls[0]), blockName(b.Succs[0]), blockName(b.Succs[1]))
	case ssa.BlockReturn:
		g.e.emitInst("ret double %s", g.operand(b.Controls[0]))
	default:
		g.e.emitInst("unreachable")
	}
}

// operand returns the LLVM IR operand string for an SSA value.
// Constants are inlined, arguments use their parameter name, others %vN.
func (g *generator) operand(v *ssa.Value) string {
	switch v.Op {
	case ssa.OpConstFloat:
		return formatFloat(v.AuxFloat)
	case ssa.OpArg:
		return paramName(v.Aux)
	}
	return valueName(v)
}

// emitBinOp emits a binary float instruction.
func (g *generator) emitBinOp(inst string, v *ssa.Value) {
	g.e.emitInst("%s = %s %s %s, %s", valueName(v), inst, llvmType(v.Type), g.operand(v.Args[0]), g.operand(v.Args[1]))
}

// emitFCmp emits a floating-point comparison.
func (g *generator) emitFCmp(cond string, v *ssa.Value) {
	g.e.emitInst("%s = fcmp %s %s %s, %s", valueName(v), cond, llvmType(v.Args[0].Type), g.operand(v.Args[0]), g.operand(v.Args[1]))
}

// lowerPhi emits a phi node.
func (g *generator) lowerPhi(v *ssa.Value) {
	parts := make([]string, len(v.Args))
	for i, arg := range v.Args {
		parts[i] = fmt.Sprintf("[ %s, %%%s ]", g.operand(arg), blockName(v.Block.Preds[i]))
	}
	g.e.emitInst("%s = phi %s %s", valueName(v), llvmType(v.Type), strings.Join(parts, ", "))
}

// lowerStaticCall emits a direct function call.
func (g *generator) lowerStaticCall(v *ssa.Value) {
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = "double " + g.operand(a)
	}
	g.e.emitInst("%s = call double %s(%s)", valueName(v), globalName(v.Aux), strings.Join(args, ", "))
}

// formatFloat formats a float64 as an LLVM IR floating-point literal.
// Hex encoding is exact for every value, including NaN and infinities.
func formatFloat(f float64) string {
	return fmt.Sprintf("0x%016X", math.Float64bits(f))
}
