package passes

import "github.com/you-not-fish/kaleido/internal/ssa"

// DeadCode removes pure values that nothing uses. Arguments stay so the
// parameter list remains visible in dumps.
func DeadCode(f *ssa.Func) {
	for changed := true; changed; {
		changed = false
		removeValues(f, func(v *ssa.Value) bool {
			if v.Uses == 0 && v.IsPure() && v.Op != ssa.OpArg {
				changed = true
				return true
			}
			return false
		})
	}
}
