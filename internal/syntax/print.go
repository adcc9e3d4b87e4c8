package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// field prints a labelled child one level deeper.
func (p *printer) field(label string, child Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(child)
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *FuncDecl:
		p.printf("FuncDecl %s\n", n.pos)
		p.indent++
		p.print(n.Proto)
		p.field("Body", n.Body)
		p.indent--

	case *ExternDecl:
		p.printf("ExternDecl %s\n", n.pos)
		p.indent++
		p.print(n.Proto)
		p.indent--

	case *TopLevelExpr:
		p.printf("TopLevelExpr %s\n", n.pos)
		p.indent++
		p.print(n.Fn.Body)
		p.indent--

	case *Prototype:
		switch n.Kind {
		case FuncProto:
			p.printf("Prototype %s(%s)\n", n.Name, paramList(n))
		case UnaryProto:
			p.printf("Prototype unary %q (%s)\n", n.Op, paramList(n))
		case BinaryProto:
			p.printf("Prototype binary %q prec %d (%s)\n", n.Op, n.Prec, paramList(n))
		}

	case *NumberLit:
		if n.Implicit {
			p.printf("NumberLit %s (implicit)\n", formatNumber(n.Value))
		} else {
			p.printf("NumberLit %s\n", formatNumber(n.Value))
		}

	case *Name:
		p.printf("Name %s\n", n.Value)

	case *UnaryExpr:
		p.printf("UnaryExpr %q\n", n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *BinaryExpr:
		p.printf("BinaryExpr %q\n", n.Op)
		p.indent++
		p.print(n.X)
		p.print(n.Y)
		p.indent--

	case *CallExpr:
		p.printf("CallExpr %s/%d\n", n.Callee, len(n.Args))
		p.indent++
		for _, a := range n.Args {
			p.print(a)
		}
		p.indent--

	case *IfExpr:
		p.printf("IfExpr\n")
		p.indent++
		p.field("Cond", n.Cond)
		p.field("Then", n.Then)
		p.field("Else", n.Else)
		p.indent--

	case *ForExpr:
		p.printf("ForExpr %s\n", n.Var.Value)
		p.indent++
		p.field("Start", n.Start)
		p.field("End", n.End)
		p.field("Step", n.Step)
		p.field("Body", n.Body)
		p.indent--

	case *VarExpr:
		p.printf("VarExpr\n")
		p.indent++
		for _, b := range n.Bindings {
			p.print(b)
		}
		p.field("Body", n.Body)
		p.indent--

	case *Binding:
		if n.Init == nil {
			p.printf("Binding %s\n", n.Name.Value)
			return
		}
		p.printf("Binding %s =\n", n.Name.Value)
		p.indent++
		p.print(n.Init)
		p.indent--

	default:
		p.printf("<unknown node %T>\n", node)
	}
}

func paramList(proto *Prototype) string {
	names := make([]string, len(proto.Params))
	for i, n := range proto.Params {
		names[i] = n.Value
	}
	return strings.Join(names, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExprString returns a compact parenthesized form of an expression,
// e.g. "(- (- 1 2) 3)" for 1-2-3.
func ExprString(x Expr) string {
	var b strings.Builder
	writeExpr(&b, x)
	return b.String()
}

func writeExpr(b *strings.Builder, x Expr) {
	switch x := x.(type) {
	case nil:
		b.WriteString("<nil>")
	case *NumberLit:
		b.WriteString(formatNumber(x.Value))
	case *Name:
		b.WriteString(x.Value)
	case *UnaryExpr:
		fmt.Fprintf(b, "(%s ", x.Op)
		writeExpr(b, x.X)
		b.WriteByte(')')
	case *BinaryExpr:
		fmt.Fprintf(b, "(%s ", x.Op)
		writeExpr(b, x.X)
		b.WriteByte(' ')
		writeExpr(b, x.Y)
		b.WriteByte(')')
	case *CallExpr:
		fmt.Fprintf(b, "(call %s", x.Callee)
		for _, a := range x.Args {
			b.WriteByte(' ')
			writeExpr(b, a)
		}
		b.WriteByte(')')
	case *IfExpr:
		b.WriteString("(if ")
		writeExpr(b, x.Cond)
		b.WriteByte(' ')
		writeExpr(b, x.Then)
		b.WriteByte(' ')
		writeExpr(b, x.Else)
		b.WriteByte(')')
	case *ForExpr:
		fmt.Fprintf(b, "(for %s ", x.Var.Value)
		writeExpr(b, x.Start)
		b.WriteByte(' ')
		writeExpr(b, x.End)
		b.WriteByte(' ')
		writeExpr(b, x.Step)
		b.WriteByte(' ')
		writeExpr(b, x.Body)
		b.WriteByte(')')
	case *VarExpr:
		b.WriteString("(var (")
		for i, bind := range x.Bindings {
			if i > 0 {
				b.WriteByte(' ')
			}
			if bind.Init == nil {
				b.WriteString(bind.Name.Value)
				continue
			}
			fmt.Fprintf(b, "(%s ", bind.Name.Value)
			writeExpr(b, bind.Init)
			b.WriteByte(')')
		}
		b.WriteString(") ")
		writeExpr(b, x.Body)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", x)
	}
}
