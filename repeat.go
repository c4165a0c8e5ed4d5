package pegkit

import "fmt"

// Unbounded is the maximum number of cycles of loops that never stop
// on their own.
const Unbounded = -1

// RepeatBuilder is returned by Repeat.  It creates the matcher once
// the bounds are known.
type RepeatBuilder struct {
	rule Matcher
}

// Repeat starts the definition of a loop over `m`:
//
//	Repeat(m).Min(2)       // two or more
//	Repeat(m).Max(3)       // at most three
//	Repeat(m).Times(4)     // exactly four
//	Repeat(m).Range(2, 5)  // between two and five
func Repeat(m Matcher) RepeatBuilder {
	checkNotNil("repeat", m)
	return RepeatBuilder{rule: m}
}

func (b RepeatBuilder) Min(n int) Matcher   { return b.Range(n, Unbounded) }
func (b RepeatBuilder) Max(n int) Matcher   { return b.Range(0, n) }
func (b RepeatBuilder) Times(n int) Matcher { return b.Range(n, n) }

func (b RepeatBuilder) Range(min, max int) Matcher {
	if simpler := simplifyLoop("repeat", b.rule, min, max); simpler != nil {
		return simpler
	}
	r := &repeatMatcher{
		baseMatcher: composite(MatcherKind_Repeat, b.rule),
		min:         min,
		max:         max,
	}
	r.label = boundsLabel("Repeat", min, max)
	return r
}

// ZeroOrMore matches `m` as many times as possible, including none.
func ZeroOrMore(m Matcher) Matcher {
	r := Repeat(m).Min(0).(*repeatMatcher)
	r.label = "ZeroOrMore"
	return r
}

// OneOrMore matches `m` as many times as possible, at least once.
func OneOrMore(m Matcher) Matcher {
	r := Repeat(m).Min(1).(*repeatMatcher)
	r.label = "OneOrMore"
	return r
}

// checkBounds panics on bounds that can't be satisfied
func checkBounds(what string, min, max int) {
	if min < 0 {
		grammarErrorf("%s: negative minimum %d", what, min)
	}
	if max != Unbounded && max < 0 {
		grammarErrorf("%s: negative maximum %d", what, max)
	}
	if max != Unbounded && max < min {
		grammarErrorf("%s: maximum %d below minimum %d", what, max, min)
	}
}

// simplifyLoop returns the matcher equivalent to looping over `rule`
// within the given bounds when one exists, nil otherwise.
func simplifyLoop(what string, rule Matcher, min, max int) Matcher {
	checkBounds(what, min, max)
	switch {
	case max == 0:
		return Empty()
	case min == 1 && max == 1:
		return rule
	case min == 0 && max == 1:
		return Optional(rule)
	}
	return nil
}

func boundsLabel(kind string, min, max int) string {
	if max == Unbounded {
		return fmt.Sprintf("%s{%d,}", kind, min)
	}
	return fmt.Sprintf("%s{%d,%d}", kind, min, max)
}

type repeatMatcher struct {
	baseMatcher
	min, max int
}

func (m *repeatMatcher) Bounds() (int, int) { return m.min, m.max }

// Match runs cycles until the rule fails, the maximum is reached or a
// cycle doesn't consume anything.  A cycle that doesn't consume is
// not counted and its nodes are dropped, so it can't make up for
// missing cycles.
func (m *repeatMatcher) Match(ctx *Context) bool {
	rule := m.children[0]
	cycles := 0
	for m.max == Unbounded || cycles < m.max {
		before, nodes := ctx.current, len(ctx.nodes)
		if !ctx.SubContext(rule).Run() {
			break
		}
		if ctx.current == before {
			ctx.truncateNodes(nodes)
			break
		}
		cycles++
	}
	if cycles < m.min {
		ctx.current = ctx.start
		return false
	}
	return true
}
