package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *FuncDecl:
		return map[string]interface{}{
			"type":  "FuncDecl",
			"pos":   n.pos.String(),
			"proto": toJSON(n.Proto),
			"body":  toJSON(n.Body),
		}

	case *ExternDecl:
		return map[string]interface{}{
			"type":  "ExternDecl",
			"pos":   n.pos.String(),
			"proto": toJSON(n.Proto),
		}

	case *TopLevelExpr:
		return map[string]interface{}{
			"type": "TopLevelExpr",
			"pos":  n.pos.String(),
			"body": toJSON(n.Fn.Body),
		}

	case *Prototype:
		m := map[string]interface{}{
			"type":   "Prototype",
			"pos":    n.pos.String(),
			"name":   n.Name,
			"kind":   n.Kind.String(),
			"params": mapSlice(n.Params, func(x *Name) interface{} { return x.Value }),
		}
		if n.IsOperator() {
			m["op"] = n.Op
		}
		if n.Kind == BinaryProto {
			m["prec"] = n.Prec
		}
		return m

	case *NumberLit:
		m := map[string]interface{}{
			"type":  "NumberLit",
			"pos":   n.pos.String(),
			"value": n.Value,
		}
		if n.Implicit {
			m["implicit"] = true
		}
		return m

	case *Name:
		return map[string]interface{}{
			"type":  "Name",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *UnaryExpr:
		return map[string]interface{}{
			"type": "UnaryExpr",
			"pos":  n.pos.String(),
			"op":   n.Op,
			"x":    toJSON(n.X),
		}

	case *BinaryExpr:
		return map[string]interface{}{
			"type": "BinaryExpr",
			"pos":  n.pos.String(),
			"op":   n.Op,
			"x":    toJSON(n.X),
			"y":    toJSON(n.Y),
		}

	case *CallExpr:
		return map[string]interface{}{
			"type":   "CallExpr",
			"pos":    n.pos.String(),
			"callee": n.Callee,
			"args":   mapSlice(n.Args, func(x Expr) interface{} { return toJSON(x) }),
		}

	case *IfExpr:
		return map[string]interface{}{
			"type": "IfExpr",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"then": toJSON(n.Then),
			"else": toJSON(n.Else),
		}

	case *ForExpr:
		return map[string]interface{}{
			"type":  "ForExpr",
			"pos":   n.pos.String(),
			"var":   n.Var.Value,
			"start": toJSON(n.Start),
			"end":   toJSON(n.End),
			"step":  toJSON(n.Step),
			"body":  toJSON(n.Body),
		}

	case *VarExpr:
		return map[string]interface{}{
			"type":     "VarExpr",
			"pos":      n.pos.String(),
			"bindings": mapSlice(n.Bindings, func(b *Binding) interface{} { return toJSON(b) }),
			"body":     toJSON(n.Body),
		}

	case *Binding:
		m := map[string]interface{}{
			"type": "Binding",
			"pos":  n.pos.String(),
			"name": n.Name.Value,
		}
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		return m
	}

	return map[string]interface{}{"type": "Unknown"}
}

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, x := range s {
		out[i] = f(x)
	}
	return out
}
