package pegkit

import (
	"fmt"
	"strings"
)

type MatcherType int

const (
	MatcherType_Terminal MatcherType = iota
	MatcherType_Composite
	MatcherType_Action
)

func (t MatcherType) String() string {
	switch t {
	case MatcherType_Terminal:
		return "terminal"
	case MatcherType_Composite:
		return "composite"
	case MatcherType_Action:
		return "action"
	default:
		return "unknown"
	}
}

// MatcherKind tells apart the built-in matchers.  Matchers created
// outside of this package report MatcherKind_Custom.
type MatcherKind int

const (
	MatcherKind_Custom MatcherKind = iota
	MatcherKind_Any
	MatcherKind_Empty
	MatcherKind_Nothing
	MatcherKind_EndOfInput
	MatcherKind_Char
	MatcherKind_CharIgnoreCase
	MatcherKind_CharRange
	MatcherKind_AnyOf
	MatcherKind_CodePoint
	MatcherKind_CodePointRange
	MatcherKind_String
	MatcherKind_StringIgnoreCase
	MatcherKind_Regex
	MatcherKind_Trie
	MatcherKind_Sequence
	MatcherKind_FirstOf
	MatcherKind_Optional
	MatcherKind_Test
	MatcherKind_TestNot
	MatcherKind_Repeat
	MatcherKind_Join
	MatcherKind_Forward
	MatcherKind_Action
)

var matcherKindNames = map[MatcherKind]string{
	MatcherKind_Custom:           "Custom",
	MatcherKind_Any:              "Any",
	MatcherKind_Empty:            "Empty",
	MatcherKind_Nothing:          "Nothing",
	MatcherKind_EndOfInput:       "EndOfInput",
	MatcherKind_Char:             "Char",
	MatcherKind_CharIgnoreCase:   "CharIgnoreCase",
	MatcherKind_CharRange:        "CharRange",
	MatcherKind_AnyOf:            "AnyOf",
	MatcherKind_CodePoint:        "CodePoint",
	MatcherKind_CodePointRange:   "CodePointRange",
	MatcherKind_String:           "String",
	MatcherKind_StringIgnoreCase: "StringIgnoreCase",
	MatcherKind_Regex:            "Regex",
	MatcherKind_Trie:             "Trie",
	MatcherKind_Sequence:         "Sequence",
	MatcherKind_FirstOf:          "FirstOf",
	MatcherKind_Optional:         "Optional",
	MatcherKind_Test:             "Test",
	MatcherKind_TestNot:          "TestNot",
	MatcherKind_Repeat:           "Repeat",
	MatcherKind_Join:             "Join",
	MatcherKind_Forward:          "Forward",
	MatcherKind_Action:           "Action",
}

func (k MatcherKind) String() string {
	if name, ok := matcherKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MatcherKind(%d)", int(k))
}

// Matcher is one node of a grammar.  Matchers are immutable once
// built, and the same tree can be used by any number of concurrent
// runs.
//
// `Match` is called with the matcher's own activation.  Terminals
// must leave the cursor where they found it when they fail.
// Composites run their children through `ctx.SubContext(child).Run()`
// and rewind to `ctx.StartIndex()` when they fail.
type Matcher interface {
	Label() string
	Type() MatcherType
	Kind() MatcherKind
	Children() []Matcher
	Match(ctx *Context) bool
}

// CustomLabeler is implemented by matchers that can tell whether
// their label was picked by the grammar author, which makes it worth
// showing in error messages.  Matchers that don't implement it are
// considered to carry custom labels.
type CustomLabeler interface {
	HasCustomLabel() bool
}

// NodeOptions control how the parse tree node of a matcher is built.
type NodeOptions struct {
	// Suppress drops the node and all its descendants
	Suppress bool

	// SuppressSubnodes keeps the node but drops its descendants
	SuppressSubnodes bool

	// Skip drops the node but hands its children to the parent
	Skip bool
}

type nodeOptioner interface {
	NodeOptions() NodeOptions
}

func hasCustomLabel(m Matcher) bool {
	if l, ok := m.(CustomLabeler); ok {
		return l.HasCustomLabel()
	}
	return true
}

func nodeOptionsOf(m Matcher) NodeOptions {
	if o, ok := m.(nodeOptioner); ok {
		return o.NodeOptions()
	}
	return NodeOptions{}
}

// baseMatcher carries the fields shared by the built-in matchers
type baseMatcher struct {
	label    string
	custom   bool
	typ      MatcherType
	kind     MatcherKind
	children []Matcher
}

func (m *baseMatcher) Label() string        { return m.label }
func (m *baseMatcher) HasCustomLabel() bool { return m.custom }
func (m *baseMatcher) Type() MatcherType    { return m.typ }
func (m *baseMatcher) Kind() MatcherKind    { return m.kind }
func (m *baseMatcher) Children() []Matcher  { return m.children }

func terminal(kind MatcherKind, label string) baseMatcher {
	return baseMatcher{label: label, custom: true, typ: MatcherType_Terminal, kind: kind}
}

func composite(kind MatcherKind, children ...Matcher) baseMatcher {
	for i, c := range children {
		if c == nil {
			grammarErrorf("%s: child #%d is nil", kind, i)
		}
	}
	return baseMatcher{label: kind.String(), typ: MatcherType_Composite, kind: kind, children: children}
}

// ---- Decorators ----

// decorated gives a matcher a new label or node options without
// adding an activation: it runs the inner matcher with its own
// context.
type decorated struct {
	inner  Matcher
	label  string
	custom bool
	opts   NodeOptions
}

func decorate(m Matcher) *decorated {
	if m == nil {
		grammarErrorf("can't decorate a nil matcher")
	}
	if d, ok := m.(*decorated); ok {
		cp := *d
		return &cp
	}
	return &decorated{
		inner:  m,
		label:  m.Label(),
		custom: hasCustomLabel(m),
		opts:   nodeOptionsOf(m),
	}
}

func (d *decorated) Label() string            { return d.label }
func (d *decorated) HasCustomLabel() bool     { return d.custom }
func (d *decorated) NodeOptions() NodeOptions { return d.opts }
func (d *decorated) Type() MatcherType        { return d.inner.Type() }
func (d *decorated) Kind() MatcherKind        { return d.inner.Kind() }
func (d *decorated) Children() []Matcher      { return d.inner.Children() }
func (d *decorated) Match(ctx *Context) bool  { return d.inner.Match(ctx) }
func (d *decorated) Unwrap() Matcher          { return d.inner }

// Label names `m`.  The label shows up in parse tree nodes, trace
// output and, as the expected element, in error messages.
func Label(name string, m Matcher) Matcher {
	d := decorate(m)
	d.label = name
	d.custom = true
	return d
}

// SuppressNode keeps `m` and everything below it out of the parse
// tree.
func SuppressNode(m Matcher) Matcher {
	d := decorate(m)
	d.opts.Suppress = true
	return d
}

// SuppressSubnodes keeps the node of `m` in the parse tree but none
// of its descendants.
func SuppressSubnodes(m Matcher) Matcher {
	d := decorate(m)
	d.opts.SuppressSubnodes = true
	return d
}

// SkipNode drops the node of `m` and attaches its children to the
// parent node instead.
func SkipNode(m Matcher) Matcher {
	d := decorate(m)
	d.opts.Skip = true
	return d
}

type unwrapper interface {
	Unwrap() Matcher
}

// Innermost follows decorators, forward declarations and memoizing
// wrappers down to the matcher that does the actual work.
func Innermost(m Matcher) Matcher {
	for {
		u, ok := m.(unwrapper)
		if !ok {
			return m
		}
		next := u.Unwrap()
		if next == nil {
			return m
		}
		m = next
	}
}

// ---- Matcher paths ----

// MatcherPathElement is one activation of a matcher path
type MatcherPathElement struct {
	Matcher    Matcher
	StartIndex int
	Level      int
}

// MatcherPath lists the activations from the root matcher down to
// the matcher that was running when it was captured.
type MatcherPath []MatcherPathElement

// Leaf returns the innermost matcher of the path, or nil if the path
// is empty.
func (p MatcherPath) Leaf() Matcher {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1].Matcher
}

// Contains returns true if `m` is part of the path
func (p MatcherPath) Contains(m Matcher) bool {
	for _, e := range p {
		if e.Matcher == m {
			return true
		}
	}
	return false
}

// CommonPrefixLen returns how many leading activations `p` and
// `other` share.
func (p MatcherPath) CommonPrefixLen(other MatcherPath) int {
	n := 0
	for n < len(p) && n < len(other) && p[n].Matcher == other[n].Matcher && p[n].StartIndex == other[n].StartIndex {
		n++
	}
	return n
}

func (p MatcherPath) String() string {
	labels := make([]string, len(p))
	for i, e := range p {
		labels[i] = e.Matcher.Label()
	}
	return strings.Join(labels, "/")
}

// FindProperLabelMatcher returns the matcher of `path` that's most
// useful in the "expected" part of an error message found at
// `errorIndex`: the outermost one starting at the error index with a
// custom label.  The walk goes from the root down and gives up at the
// first TestNot, what's below it was expected not to match.
func FindProperLabelMatcher(path MatcherPath, errorIndex int) Matcher {
	for _, e := range path {
		if Innermost(e.Matcher).Kind() == MatcherKind_TestNot {
			return nil
		}
		if e.StartIndex == errorIndex && hasCustomLabel(e.Matcher) {
			return e.Matcher
		}
	}
	return nil
}
