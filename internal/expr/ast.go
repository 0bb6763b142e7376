package expr

import (
	"sort"
	"strconv"
	"strings"
)

// Node is a node in a parsed expression tree.
type Node interface {
	// String renders the node back to expression syntax.
	String() string

	node()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value   float64
	Literal string
}

// Ident is a bare identifier, referring to a capability accessor.
type Ident struct {
	Name string
}

// CallExpr is a zero-argument call like "inner()". Calls refer to a composed
// provider and must be inlined away before evaluation or code emission.
type CallExpr struct {
	Name string
}

// BinaryExpr is an infix arithmetic expression.
type BinaryExpr struct {
	Op    string // "+", "-", "*", "/"
	Left  Node
	Right Node
}

func (*NumberLit) node()  {}
func (*Ident) node()      {}
func (*CallExpr) node()   {}
func (*BinaryExpr) node() {}

func (n *NumberLit) String() string {
	if n.Literal != "" {
		return n.Literal
	}

	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Ident) String() string { return n.Name }

func (n *CallExpr) String() string { return n.Name + "()" }

func (n *BinaryExpr) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

// Idents returns the distinct identifier names referenced by the tree, sorted.
func Idents(n Node) []string {
	seen := map[string]struct{}{}
	collectIdents(n, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func collectIdents(n Node, seen map[string]struct{}) {
	switch v := n.(type) {
	case *Ident:
		seen[v.Name] = struct{}{}
	case *BinaryExpr:
		collectIdents(v.Left, seen)
		collectIdents(v.Right, seen)
	}
}

// Calls returns the distinct call names referenced by the tree, sorted.
func Calls(n Node) []string {
	seen := map[string]struct{}{}
	collectCalls(n, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func collectCalls(n Node, seen map[string]struct{}) {
	switch v := n.(type) {
	case *CallExpr:
		seen[v.Name] = struct{}{}
	case *BinaryExpr:
		collectCalls(v.Left, seen)
		collectCalls(v.Right, seen)
	}
}

// Substitute returns a copy of the tree with identifiers and calls replaced by
// the given subtrees. Names without a replacement are kept as-is. This is the
// inlining primitive behind specialization: projections replace identifiers,
// composed providers replace calls.
func Substitute(n Node, idents map[string]Node, calls map[string]Node) Node {
	switch v := n.(type) {
	case *Ident:
		if rep, ok := idents[v.Name]; ok {
			return rep
		}

		return &Ident{Name: v.Name}
	case *CallExpr:
		if rep, ok := calls[v.Name]; ok {
			return rep
		}

		return &CallExpr{Name: v.Name}
	case *NumberLit:
		return &NumberLit{Value: v.Value, Literal: v.Literal}
	case *BinaryExpr:
		return &BinaryExpr{
			Op:    v.Op,
			Left:  Substitute(v.Left, idents, calls),
			Right: Substitute(v.Right, idents, calls),
		}
	default:
		return n
	}
}

// RenderGo renders the tree as a Go expression, mapping each identifier
// through ident (typically to a struct field selector like "c.Width").
func RenderGo(n Node, ident func(name string) string) string {
	var sb strings.Builder

	renderGo(n, ident, &sb)

	return sb.String()
}

func renderGo(n Node, ident func(string) string, sb *strings.Builder) {
	switch v := n.(type) {
	case *NumberLit:
		sb.WriteString(v.String())
	case *Ident:
		sb.WriteString(ident(v.Name))
	case *CallExpr:
		// Calls should have been inlined; keep the name so broken output
		// is at least readable.
		sb.WriteString(v.Name + "()")
	case *BinaryExpr:
		sb.WriteString("(")
		renderGo(v.Left, ident, sb)
		sb.WriteString(" " + v.Op + " ")
		renderGo(v.Right, ident, sb)
		sb.WriteString(")")
	}
}
