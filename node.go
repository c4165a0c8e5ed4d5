package pegkit

import (
	"fmt"

	"github.com/clarete/pegkit/ascii"
)

// Node is an element of the parse tree built by runs with the
// `runner.build_tree` setting on.  There's one node per successful
// match, except for actions, predicates and matchers whose node was
// suppressed or skipped.
type Node struct {
	Label   string
	Matcher Matcher

	// Start and End delimit the text matched within the input
	Start, End int

	// Value is the top of the value stack when the node was
	// created, nil if the stack was empty
	Value any

	Children []*Node
}

// Text returns the text matched by the node
func (n *Node) Text(input InputBuffer) string { return input.Extract(n.Start, n.End) }

func (n *Node) Range() IndexRange { return IndexRange{Start: n.Start, End: n.End} }

// Find returns the first node labelled `label` in a depth-first walk
// starting at `n` (included), or nil.
func (n *Node) Find(label string) *Node {
	if n.Label == label {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(label); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls `fn` for `n` and its descendants, depth first.  Returning
// false from `fn` skips the children of the node it was given.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%s [%d..%d]", n.Label, n.Start, n.End)
}

// Pretty renders the tree rooted at `n`.  Leaves show the text they
// matched.
func (n *Node) Pretty(input InputBuffer) string {
	return n.render(input, plainFormat)
}

// Highlight is Pretty with the colors of `theme`.
func (n *Node) Highlight(input InputBuffer, theme ascii.Theme) string {
	styles := map[FormatToken]string{
		FormatToken_Label:   theme.Accent,
		FormatToken_Range:   theme.Muted,
		FormatToken_Literal: theme.Literal,
		FormatToken_Value:   theme.Operand,
	}
	return n.render(input, func(s string, token FormatToken) string {
		color, ok := styles[token]
		if !ok || color == "" {
			return s
		}
		return color + s + ascii.Reset
	})
}

func (n *Node) render(input InputBuffer, format FormatFunc) string {
	tp := newTreePrinter(format)
	var visit func(*Node)
	visit = func(node *Node) {
		tp.write(tp.format(node.Label, FormatToken_Label))
		tp.write(tp.format(" ("+formatSpan(input, node.Start, node.End)+")", FormatToken_Range))
		if len(node.Children) == 0 {
			text := `"` + escapeLiteral(node.Text(input)) + `"`
			tp.write(" " + tp.format(text, FormatToken_Literal))
		}
		if node.Value != nil {
			tp.write(" " + tp.format(fmt.Sprintf("= %v", node.Value), FormatToken_Value))
		}
		tp.write("\n")
		tp.children(len(node.Children), func(i int) {
			visit(node.Children[i])
		})
	}
	visit(n)
	return tp.output.String()
}

// formatSpan formats the span between two indices as "L:C..L:C",
// shortened to "C..C" on the first line, and to a single position
// when it's empty.
func formatSpan(input InputBuffer, start, end int) string {
	sp, ep := input.Position(start), input.Position(end)
	switch {
	case sp.Line == 1 && ep.Line == 1 && start == end:
		return fmt.Sprintf("%d", sp.Column)
	case sp.Line == 1 && ep.Line == 1:
		return fmt.Sprintf("%d..%d", sp.Column, ep.Column)
	case start == end:
		return sp.String()
	default:
		return sp.String() + ".." + ep.String()
	}
}
