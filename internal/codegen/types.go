package codegen

import (
	"strings"

	"github.com/you-not-fish/kaleido/internal/ssa"
)

// llvmType maps an SSA type to its LLVM IR type string.
func llvmType(t ssa.Type) string {
	switch t {
	case ssa.TypeFloat:
		return "double"
	case ssa.TypeBool:
		return "i1"
	case ssa.TypePtr:
		return "ptr"
	}
	return "void"
}

// paramTypes returns the parameter list of a declaration taking n doubles.
func paramTypes(n int) string {
	types := make([]string, n)
	for i := range types {
		types[i] = "double"
	}
	return strings.Join(types, ", ")
}
