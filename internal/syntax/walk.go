package syntax

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *FuncDecl:
		Walk(n.Proto, v)
		walkExpr(n.Body, v)

	case *ExternDecl:
		Walk(n.Proto, v)

	case *TopLevelExpr:
		Walk(n.Fn, v)

	case *Prototype:
		for _, p := range n.Params {
			Walk(p, v)
		}

	case *UnaryExpr:
		walkExpr(n.X, v)

	case *BinaryExpr:
		walkExpr(n.X, v)
		walkExpr(n.Y, v)

	case *CallExpr:
		for _, a := range n.Args {
			walkExpr(a, v)
		}

	case *IfExpr:
		walkExpr(n.Cond, v)
		walkExpr(n.Then, v)
		walkExpr(n.Else, v)

	case *ForExpr:
		Walk(n.Var, v)
		walkExpr(n.Start, v)
		walkExpr(n.End, v)
		walkExpr(n.Step, v)
		walkExpr(n.Body, v)

	case *VarExpr:
		for _, b := range n.Bindings {
			Walk(b, v)
		}
		walkExpr(n.Body, v)

	case *Binding:
		Walk(n.Name, v)
		walkExpr(n.Init, v)

	case *NumberLit, *Name:
		// leaves
	}
}

// walkExpr skips nil interfaces so optional children need no guard.
func walkExpr(x Expr, v Visitor) {
	if x != nil {
		Walk(x, v)
	}
}

// Inspect traverses an AST in depth-first order, calling f for each node.
func Inspect(node Node, f func(Node) bool) {
	Walk(node, f)
}

// Calls returns the names of all functions called in node, in order of
// first appearance. Operator applications of non-builtin symbols count as
// calls of their mangled functions.
func Calls(node Node) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	Walk(node, func(n Node) bool {
		switch n := n.(type) {
		case *CallExpr:
			add(n.Callee)
		case *UnaryExpr:
			add(OperatorFuncName(UnaryProto, n.Op))
		case *BinaryExpr:
			if !IsBuiltin(n.Op) {
				add(OperatorFuncName(BinaryProto, n.Op))
			}
		}
		return true
	})
	return out
}
