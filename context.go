package pegkit

import (
	"strconv"
	"strings"
	"time"

	"github.com/tliron/commonlog"
)

// runState is shared by all the activations of a single run
type runState struct {
	input InputBuffer
	stack *ValueStack

	buildTree    bool
	reportErrors bool
	trace        bool
	regexTimeout time.Duration
	logger       commonlog.Logger
	listeners    []MatchListener

	// frames holds one reusable activation per depth
	frames []*Context

	errors    []*ParseError
	farthest  int
	failPaths []MatcherPath
	memo      map[memoKey]struct{}
	lastTrace MatcherPath
	root      *Node
	runes     []rune
}

type memoKey struct {
	matcher Matcher
	index   int
}

// inputRunes returns the units of the input as a slice, which is
// what the regular expression engine works with.
func (rs *runState) inputRunes() []rune {
	if rs.runes != nil {
		return rs.runes
	}
	if src, ok := rs.input.(runeSource); ok {
		rs.runes = src.runes()
		return rs.runes
	}
	rs.runes = make([]rune, rs.input.Length())
	for i := range rs.runes {
		rs.runes[i] = rs.input.CharAt(i)
	}
	return rs.runes
}

func (rs *runState) frame(level int) *Context {
	for len(rs.frames) <= level {
		rs.frames = append(rs.frames, &Context{run: rs, level: len(rs.frames)})
	}
	return rs.frames[level]
}

// Context is the activation of a matcher: the state of one attempt
// of matching it at one position of the input.  Activations are
// recycled as soon as their matcher returns, so a *Context must not
// be retained after the `Match` or action call it was given to.
type Context struct {
	run     *runState
	parent  *Context
	level   int
	matcher Matcher

	start   int
	current int

	inPredicate    bool
	negated        bool
	nodeSuppressed bool
	nodes          []*Node

	// range matched by the last successful non-action sub
	// matcher, read by actions through `Match()`
	match    IndexRange
	hasMatch bool
}

func (c *Context) reset(parent *Context, m Matcher, index int) {
	c.parent = parent
	c.matcher = m
	c.start = index
	c.current = index
	c.nodes = nil
	c.match = IndexRange{}
	c.hasMatch = false
	if parent == nil {
		c.inPredicate = false
		c.negated = false
		c.nodeSuppressed = nodeOptionsOf(m).Suppress
		return
	}
	c.inPredicate = parent.inPredicate
	c.negated = parent.negated
	c.nodeSuppressed = parent.nodeSuppressed ||
		nodeOptionsOf(parent.matcher).SuppressSubnodes ||
		nodeOptionsOf(m).Suppress
}

func (c *Context) Matcher() Matcher       { return c.matcher }
func (c *Context) Parent() *Context       { return c.parent }
func (c *Context) Level() int             { return c.level }
func (c *Context) StartIndex() int        { return c.start }
func (c *Context) CurrentIndex() int      { return c.current }
func (c *Context) Input() InputBuffer     { return c.run.input }
func (c *Context) Stack() *ValueStack     { return c.run.stack }
func (c *Context) InPredicate() bool      { return c.inPredicate }
func (c *Context) CurrentChar() rune      { return c.run.input.CharAt(c.current) }
func (c *Context) Position() Position     { return c.run.input.Position(c.current) }
func (c *Context) Nodes() []*Node         { return c.nodes }
func (c *Context) AdvanceIndex(n int)     { c.SetCurrentIndex(c.current + n) }
func (c *Context) MatchRange() IndexRange { return c.match }

// SetCurrentIndex moves the cursor.  It can't go back past the start
// of the activation.
func (c *Context) SetCurrentIndex(index int) {
	if index < c.start {
		panic("cursor moved before the start of its activation")
	}
	c.current = index
}

// Match returns the text matched by the last successful sub matcher
// of this activation, skipping actions.  Actions use it to reach the
// text matched right before them.
func (c *Context) Match() string {
	if !c.hasMatch {
		return ""
	}
	return c.run.input.ExtractRange(c.match)
}

func (c *Context) MatchStart() int { return c.match.Start }
func (c *Context) MatchEnd() int   { return c.match.End }

// Path returns the activations from the root down to this one
func (c *Context) Path() MatcherPath {
	path := make(MatcherPath, c.level+1)
	for cur := c; cur != nil; cur = cur.parent {
		path[cur.level] = MatcherPathElement{
			Matcher:    cur.matcher,
			StartIndex: cur.start,
			Level:      cur.level,
		}
	}
	return path
}

// AddError records an error that will be part of the result of the
// run.  Errors created without an input buffer get the run's.
func (c *Context) AddError(err *ParseError) {
	if err.Input == nil {
		err.Input = c.run.input
	}
	if err.Paths == nil {
		err.Paths = []MatcherPath{c.Path()}
	}
	c.run.errors = append(c.run.errors, err)
}

// SubContext prepares the activation of `m` at the current index.
// The activation is only attempted once `Run` is called.
func (c *Context) SubContext(m Matcher) *Context {
	sub := c.run.frame(c.level + 1)
	sub.reset(c, m, c.current)
	return sub
}

// Run attempts the matcher of this activation.  On success, the
// parent adopts the new cursor and, if enabled, gets the node built
// for the match.  On failure the parent is left untouched.
func (c *Context) Run() bool {
	matched := c.matcher.Match(c)
	if matched {
		if c.parent != nil {
			c.parent.current = c.current
			if c.matcher.Type() != MatcherType_Action {
				c.parent.match = IndexRange{Start: c.start, End: c.current}
				c.parent.hasMatch = true
			}
		}
		c.createNode()
	} else {
		c.current = c.start
		c.recordFailure()
	}
	if c.run.trace {
		c.traceMatch(matched)
	}
	if len(c.run.listeners) > 0 {
		c.notify(matched)
	}
	return matched
}

func (c *Context) createNode() {
	rs := c.run
	if !rs.buildTree || c.inPredicate || c.nodeSuppressed || c.matcher.Type() == MatcherType_Action {
		return
	}
	opts := nodeOptionsOf(c.matcher)
	if opts.Skip {
		if c.parent != nil {
			c.parent.nodes = append(c.parent.nodes, c.nodes...)
		}
		return
	}
	node := &Node{
		Label:    c.matcher.Label(),
		Matcher:  c.matcher,
		Start:    c.start,
		End:      c.current,
		Children: c.nodes,
	}
	if !rs.stack.IsEmpty() {
		node.Value, _ = rs.stack.Peek()
	}
	if c.parent != nil {
		c.parent.nodes = append(c.parent.nodes, node)
	} else {
		rs.root = node
	}
}

// truncateNodes drops the nodes added after the node list had `n`
// elements.  Loops use it to forget about cycles they discard.
func (c *Context) truncateNodes(n int) {
	if n < len(c.nodes) {
		c.nodes = c.nodes[:n]
	}
}

// recordFailure keeps track of the farthest index where a terminal
// or a predicate failed.  Failures inside negative predicates are
// expected and don't count.
func (c *Context) recordFailure() {
	rs := c.run
	if !rs.reportErrors || c.negated {
		return
	}
	if c.matcher.Type() != MatcherType_Terminal {
		kind := Innermost(c.matcher).Kind()
		if kind != MatcherKind_Test && kind != MatcherKind_TestNot {
			return
		}
	}
	switch {
	case c.start > rs.farthest:
		rs.farthest = c.start
		rs.failPaths = append(rs.failPaths[:0], c.Path())
	case c.start == rs.farthest:
		rs.failPaths = append(rs.failPaths, c.Path())
	}
}

func (c *Context) traceMatch(matched bool) {
	rs := c.run
	path := c.Path()
	prefix := 0
	if rs.lastTrace != nil {
		prefix = path.CommonPrefixLen(rs.lastTrace)
	}
	var s strings.Builder
	if prefix > 1 {
		s.WriteString("..(")
		s.WriteString(strconv.Itoa(prefix - 1))
		s.WriteString(")../")
		s.WriteString(path[prefix-1:].String())
	} else {
		s.WriteString(path.String())
	}
	rs.lastTrace = path

	pos := rs.input.Position(c.current)
	line := []rune(rs.input.ExtractLine(pos.Line))
	before := string(line[:min(len(line), pos.Column-1)])
	status := "failed"
	if matched {
		status = "matched"
	}
	rs.logger.Debugf("%s, %s, cursor at %s after %q", s.String(), status, pos, before)
}

func (c *Context) notify(matched bool) {
	ev := MatchEvent{
		Path:    c.Path(),
		Matched: matched,
		Start:   c.start,
		End:     c.current,
	}
	for _, l := range c.run.listeners {
		l(ev)
	}
}
