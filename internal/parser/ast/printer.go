package ast

import (
	"strconv"
	"strings"
)

const indentUnit = "    "

type printer struct {
	buf    strings.Builder
	indent int
}

// Print renders p in the indented form used by --dump-ast and by tests:
//
//	FUN INT main
//	    RETURN INT ADD(1, MUL(2, 3))
//
// Binary operators print as NAME(left, right); unary operators print as
// their symbol followed directly by the operand.
func Print(p *Program) string {
	var pr printer
	for _, inc := range p.Includes {
		pr.line("INCLUDE " + inc.Spelling())
	}
	if p.Function != nil {
		pr.function(p.Function)
	}
	return pr.buf.String()
}

// ExprString renders a single expression the way Print does.
func ExprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

// Spelling returns the header name with its delimiters.
func (i *Include) Spelling() string {
	if i.System {
		return "<" + i.Header + ">"
	}
	return "\"" + i.Header + "\""
}

func (pr *printer) line(s string) {
	pr.buf.WriteString(strings.Repeat(indentUnit, pr.indent))
	pr.buf.WriteString(s)
	pr.buf.WriteByte('\n')
}

func (pr *printer) function(f *Function) {
	pr.line("FUN INT " + f.Name)
	pr.indent++
	if f.Body != nil {
		pr.line("RETURN INT " + ExprString(f.Body.Expr))
	}
	pr.indent--
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Constant:
		sb.WriteString(strconv.FormatInt(e.Value, 10))
	case *UnaryOp:
		sb.WriteString(e.Kind.Symbol())
		writeExpr(sb, e.Operand)
	case *BinaryOp:
		sb.WriteString(e.Kind.String())
		sb.WriteByte('(')
		writeExpr(sb, e.Left)
		sb.WriteString(", ")
		writeExpr(sb, e.Right)
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<nil>")
	}
}
