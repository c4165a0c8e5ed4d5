package pegkit

// ---- Sequence and FirstOf ----

type sequenceMatcher struct{ baseMatcher }

// Sequence matches all of `ms` one after the other.
func Sequence(ms ...Matcher) Matcher {
	switch len(ms) {
	case 0:
		grammarErrorf("sequence needs at least one element")
	case 1:
		checkNotNil("sequence", ms[0])
		return ms[0]
	}
	return &sequenceMatcher{composite(MatcherKind_Sequence, ms...)}
}

func (m *sequenceMatcher) Match(ctx *Context) bool {
	for _, child := range m.children {
		if !ctx.SubContext(child).Run() {
			ctx.current = ctx.start
			return false
		}
	}
	return true
}

type firstOfMatcher struct{ baseMatcher }

// FirstOf tries each of `ms` in order and stops at the first one that
// matches.
func FirstOf(ms ...Matcher) Matcher {
	switch len(ms) {
	case 0:
		grammarErrorf("choice needs at least one alternative")
	case 1:
		checkNotNil("choice", ms[0])
		return ms[0]
	}
	return &firstOfMatcher{composite(MatcherKind_FirstOf, ms...)}
}

func (m *firstOfMatcher) Match(ctx *Context) bool {
	for _, child := range m.children {
		if ctx.SubContext(child).Run() {
			return true
		}
	}
	ctx.current = ctx.start
	return false
}

func checkNotNil(what string, m Matcher) {
	if m == nil {
		grammarErrorf("%s: nil matcher", what)
	}
}

// ---- Optional ----

type optionalMatcher struct{ baseMatcher }

// Optional tries `m` and succeeds whether it matched or not.
func Optional(m Matcher) Matcher {
	return &optionalMatcher{composite(MatcherKind_Optional, m)}
}

func (m *optionalMatcher) Match(ctx *Context) bool {
	ctx.SubContext(m.children[0]).Run()
	return true
}

// ---- Predicates ----

type testMatcher struct {
	baseMatcher
	negated bool
}

// Test matches if `m` matches, but never consumes any input.
func Test(m Matcher) Matcher {
	return &testMatcher{composite(MatcherKind_Test, m), false}
}

// TestNot matches if `m` doesn't match, and never consumes any input.
func TestNot(m Matcher) Matcher {
	return &testMatcher{composite(MatcherKind_TestNot, m), true}
}

// predicates never show up in the parse tree
func (m *testMatcher) NodeOptions() NodeOptions { return NodeOptions{Suppress: true} }

func (m *testMatcher) Match(ctx *Context) bool {
	sub := ctx.SubContext(m.children[0])
	sub.inPredicate = true
	sub.negated = sub.negated || m.negated
	matched := sub.Run()
	ctx.current = ctx.start
	return matched != m.negated
}

// ---- Forward declarations ----

// ForwardMatcher stands for a matcher that's defined after it's first
// used, which is how recursive rules are written.  It's transparent:
// it runs its target within its own activation.
type ForwardMatcher struct {
	label  string
	target Matcher
}

// Forward declares a rule named `label`.  The rule must be defined
// with `Define` before any run uses it.
func Forward(label string) *ForwardMatcher {
	return &ForwardMatcher{label: label}
}

// Define binds the forward declaration to `m`.  It can only be called
// once, and must be called before the grammar is shared between
// goroutines.
func (f *ForwardMatcher) Define(m Matcher) *ForwardMatcher {
	checkNotNil("forward "+f.label, m)
	if f.target != nil {
		grammarErrorf("forward %s defined twice", f.label)
	}
	f.target = m
	return f
}

func (f *ForwardMatcher) Label() string        { return f.label }
func (f *ForwardMatcher) HasCustomLabel() bool { return true }
func (f *ForwardMatcher) Kind() MatcherKind    { return MatcherKind_Forward }
func (f *ForwardMatcher) Unwrap() Matcher      { return f.target }

// Children is always empty, following the target would make the
// grammar graph cyclic.  Use `Unwrap` to reach it.
func (f *ForwardMatcher) Children() []Matcher { return nil }

func (f *ForwardMatcher) Type() MatcherType {
	if f.target == nil {
		return MatcherType_Composite
	}
	return f.target.Type()
}

func (f *ForwardMatcher) NodeOptions() NodeOptions {
	if f.target == nil {
		return NodeOptions{}
	}
	return nodeOptionsOf(f.target)
}

func (f *ForwardMatcher) Match(ctx *Context) bool {
	if f.target == nil {
		grammarErrorf("forward %s used before being defined", f.label)
	}
	return f.target.Match(ctx)
}

// ---- Memoization ----

type memoMatcher struct {
	inner Matcher
}

// MemoMismatches remembers the positions where `m` failed during a
// run, so trying it again there fails right away.  It pays off for
// rules that get retried at the same position by many alternatives.
func MemoMismatches(m Matcher) Matcher {
	checkNotNil("memo", m)
	return &memoMatcher{inner: m}
}

func (m *memoMatcher) Label() string            { return m.inner.Label() }
func (m *memoMatcher) HasCustomLabel() bool     { return hasCustomLabel(m.inner) }
func (m *memoMatcher) NodeOptions() NodeOptions { return nodeOptionsOf(m.inner) }
func (m *memoMatcher) Type() MatcherType        { return m.inner.Type() }
func (m *memoMatcher) Kind() MatcherKind        { return m.inner.Kind() }
func (m *memoMatcher) Children() []Matcher      { return m.inner.Children() }
func (m *memoMatcher) Unwrap() Matcher          { return m.inner }

func (m *memoMatcher) Match(ctx *Context) bool {
	rs := ctx.run
	key := memoKey{matcher: m, index: ctx.current}
	if _, failed := rs.memo[key]; failed {
		return false
	}
	if m.inner.Match(ctx) {
		return true
	}
	if rs.memo == nil {
		rs.memo = make(map[memoKey]struct{})
	}
	rs.memo[key] = struct{}{}
	return false
}
