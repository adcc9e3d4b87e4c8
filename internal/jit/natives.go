package jit

import (
	"fmt"
	"math"
)

// native is a host function callable through an extern declaration.
type native struct {
	arity int
	fn    func(e *Engine, args []float64) float64
}

func math1(f func(float64) float64) native {
	return native{arity: 1, fn: func(_ *Engine, a []float64) float64 { return f(a[0]) }}
}

// natives is the host symbol table. Output goes to the engine's writer.
var natives = map[string]native{
	"sin":   math1(math.Sin),
	"cos":   math1(math.Cos),
	"tan":   math1(math.Tan),
	"atan":  math1(math.Atan),
	"sqrt":  math1(math.Sqrt),
	"exp":   math1(math.Exp),
	"log":   math1(math.Log),
	"fabs":  math1(math.Abs),
	"floor": math1(math.Floor),
	"pow": {arity: 2, fn: func(_ *Engine, a []float64) float64 {
		return math.Pow(a[0], a[1])
	}},
	"putchard": {arity: 1, fn: func(e *Engine, a []float64) float64 {
		e.out.Write([]byte{byte(int(a[0]))})
		return 0
	}},
	"printd": {arity: 1, fn: func(e *Engine, a []float64) float64 {
		fmt.Fprintf(e.out, "%f\n", a[0])
		return 0
	}},
	"hello": {arity: 0, fn: func(e *Engine, _ []float64) float64 {
		fmt.Fprintln(e.out, "Bonjour le monde !")
		return 42
	}},
	"square": {arity: 1, fn: func(_ *Engine, a []float64) float64 {
		return a[0] * a[0]
	}},
}

// Natives returns the names and arities of the host functions.
func Natives() map[string]int {
	out := make(map[string]int, len(natives))
	for name, n := range natives {
		out[name] = n.arity
	}
	return out
}
