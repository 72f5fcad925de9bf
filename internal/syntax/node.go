// Package syntax parses the small surface language accepted by casec: case
// expressions, the expressions their scrutinee and bodies are made of, and the
// type expressions used to declare fixture environments.
package syntax

import (
	"strconv"
	"strings"
)

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Node is a parsed expression. Patterns are expressions too.
type Node interface {
	Position() Pos
	String() string
}

// Sym is an identifier, including `_` and `...`.
type Sym struct {
	Pos
	Name string
}

type NumLit struct {
	Pos
	Text  string
	Value float64
}

type StrLit struct {
	Pos
	Value string
}

// UnitLit is `()`.
type UnitLit struct {
	Pos
}

// ObjectRef is an interop static field reference `Class#FIELD`.
type ObjectRef struct {
	Pos
	Class string
	Field string
}

// ListLit is `[]` or `[a, b, ...]`.
type ListLit struct {
	Pos
	Items []Node
}

// BinOp is a binary operator. Op "" is constructor application `Tag arg`.
type BinOp struct {
	Pos
	Op    string
	Left  Node
	Right Node
}

// Field is one `name = expr` entry of a struct literal; `name` alone binds Expr to a Sym.
type Field struct {
	Pos
	Name string
	Expr Node
}

type StructLit struct {
	Pos
	Fields []Field
}

// Select reads a field: `expr.name`.
type Select struct {
	Pos
	Expr Node
	Name string
}

// Choice is one arm of a case. Body is nil for the `...` catch-all.
type Choice struct {
	Pos
	Pattern Node
	Body    Node
}

type Case struct {
	Pos
	Value   Node
	Choices []Choice
}

func (p Pos) Position() Pos { return p }

func (n *Sym) String() string       { return n.Name }
func (n *NumLit) String() string    { return n.Text }
func (n *StrLit) String() string    { return strconv.Quote(n.Value) }
func (n *UnitLit) String() string   { return "()" }
func (n *ObjectRef) String() string { return n.Class + "#" + n.Field }

func (n *ListLit) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *BinOp) String() string {
	if n.Op == "" {
		return n.Left.String() + " " + operand(n.Right)
	}
	return operand(n.Left) + " " + n.Op + " " + operand(n.Right)
}

func operand(n Node) string {
	if _, ok := n.(*BinOp); ok {
		return "(" + n.String() + ")"
	}
	return n.String()
}

func (n *StructLit) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		if s, ok := f.Expr.(*Sym); ok && s.Name == f.Name {
			parts[i] = f.Name
		} else {
			parts[i] = f.Name + " = " + f.Expr.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (n *Select) String() string { return operand(n.Expr) + "." + n.Name }

func (c Choice) String() string {
	if c.Body == nil {
		return "..."
	}
	return c.Pattern.String() + ": " + c.Body.String()
}

func (n *Case) String() string {
	var b strings.Builder
	b.WriteString("case ")
	b.WriteString(n.Value.String())
	b.WriteString(" of ")
	for _, c := range n.Choices {
		b.WriteString(c.String())
		b.WriteString("; ")
	}
	b.WriteString("esac")
	return b.String()
}
