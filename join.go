package pegkit

// JoinBuilder is returned by Join, `Using` sets the separator.
type JoinBuilder struct {
	joined  Matcher
	joining Matcher
}

// Join starts the definition of a loop over `joined` where cycles are
// separated by the matcher given to `Using`:
//
//	Join(Digit).Using(Char(',')).Min(1)  // "1", "1,2", "1,2,3", ...
//
// Cycles are counted on `joined`.  It must not match empty input,
// a cycle that doesn't consume anything ends the loop.
func Join(joined Matcher) JoinBuilder {
	checkNotNil("join", joined)
	return JoinBuilder{joined: joined}
}

func (b JoinBuilder) Using(joining Matcher) JoinBuilder {
	checkNotNil("join separator", joining)
	b.joining = joining
	return b
}

func (b JoinBuilder) Min(n int) Matcher   { return b.Range(n, Unbounded) }
func (b JoinBuilder) Max(n int) Matcher   { return b.Range(0, n) }
func (b JoinBuilder) Times(n int) Matcher { return b.Range(n, n) }

func (b JoinBuilder) Range(min, max int) Matcher {
	if b.joining == nil {
		grammarErrorf("join without separator, call Using first")
	}
	if simpler := simplifyLoop("join", b.joined, min, max); simpler != nil {
		return simpler
	}
	j := &joinMatcher{
		baseMatcher: composite(MatcherKind_Join, b.joined, b.joining),
		min:         min,
		max:         max,
	}
	j.label = boundsLabel("Join", min, max)
	return j
}

type joinMatcher struct {
	baseMatcher
	min, max int
}

func (m *joinMatcher) Bounds() (int, int) { return m.min, m.max }

// Match runs `joined`, then cycles of `joining joined`.  A cycle that
// fails halfway is undone entirely, so a trailing separator is left
// for whatever comes next.  Cycles that don't consume input aren't
// counted, the first one included.
func (m *joinMatcher) Match(ctx *Context) bool {
	joined, joining := m.children[0], m.children[1]
	if !ctx.SubContext(joined).Run() || ctx.current == ctx.start {
		ctx.truncateNodes(0)
		return m.min == 0
	}
	cycles := 1
	for m.max == Unbounded || cycles < m.max {
		before, nodes := ctx.current, len(ctx.nodes)
		if !ctx.SubContext(joining).Run() || !ctx.SubContext(joined).Run() || ctx.current == before {
			ctx.current = before
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
