// Package passes holds the SSA optimization pipeline run on each function
// before it is executed or emitted.
package passes

import (
	"fmt"
	"io"

	"github.com/you-not-fish/kaleido/internal/ssa"
)

// Pass describes a single SSA optimization pass.
type Pass struct {
	Name string
	Fn   func(f *ssa.Func)
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string    // dump SSA before this pass ("*" for all)
	DumpAfter  string    // dump SSA after this pass ("*" for all)
	Verify     bool      // verify SSA before/after each pass
	DumpFunc   string    // restrict dumps to this function name
	Out        io.Writer // dump destination; dumps are skipped when nil
}

// Default returns the standard pipeline: slot promotion followed by
// dead value elimination.
func Default() []Pass {
	return []Pass{
		{Name: "mem2reg", Fn: Mem2Reg},
		{Name: "deadcode", Fn: DeadCode},
	}
}

// Run executes the given passes on f in order.
func Run(f *ssa.Func, passes []Pass, cfg Config) error {
	for _, p := range passes {
		if shouldDump(cfg.DumpBefore, p.Name) {
			dump(cfg, "before", p.Name, f)
		}

		if cfg.Verify {
			if err := ssa.Verify(f); err != nil {
				return fmt.Errorf("verify before %s: %w", p.Name, err)
			}
		}

		p.Fn(f)

		if cfg.Verify {
			if err := ssa.Verify(f); err != nil {
				return fmt.Errorf("verify after %s: %w", p.Name, err)
			}
		}

		if shouldDump(cfg.DumpAfter, p.Name) {
			dump(cfg, "after", p.Name, f)
		}
	}
	return nil
}

func dump(cfg Config, when, pass string, f *ssa.Func) {
	if cfg.Out == nil || !matchFunc(cfg.DumpFunc, f.Name) {
		return
	}
	fmt.Fprintf(cfg.Out, "--- %s %s (%s) ---\n", when, pass, f.Name)
	ssa.Fprint(cfg.Out, f)
	fmt.Fprintln(cfg.Out)
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchFunc(filter, name string) bool {
	return filter == "" || filter == name
}
