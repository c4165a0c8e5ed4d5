package pegkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(m Matcher, input string) *ParsingResult {
	return NewParseRunner(m, nil).Run(input)
}

type matchTest struct {
	name    string
	matcher Matcher
	input   string
	matched bool
	end     int
}

func runMatchTests(t *testing.T, tests []matchTest) {
	t.Helper()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := run(test.matcher, test.input)
			assert.Equal(t, test.matched, result.Matched)
			assert.Equal(t, test.end, result.End)
		})
	}
}

func TestTerminals(t *testing.T) {
	runMatchTests(t, []matchTest{
		{"any", Any(), "x", true, 1},
		{"any at eoi", Any(), "", false, 0},
		{"empty", Empty(), "x", true, 0},
		{"nothing", Nothing(), "x", false, 0},
		{"eoi", EndOfInput(), "", true, 0},
		{"eoi before the end", EndOfInput(), "x", false, 0},
		{"char", Char('a'), "ab", true, 1},
		{"char mismatch", Char('a'), "b", false, 0},
		{"char ignore case", CharIgnoreCase('a'), "A", true, 1},
		{"char ignore case upper", CharIgnoreCase('A'), "a", true, 1},
		{"char ignore case mismatch", CharIgnoreCase('a'), "b", false, 0},
		{"char range", CharRange('a', 'z'), "m", true, 1},
		{"char range low bound", CharRange('a', 'z'), "a", true, 1},
		{"char range mismatch", CharRange('a', 'z'), "M", false, 0},
		{"any of", AnyOf("+-*/"), "*", true, 1},
		{"any of mismatch", AnyOf("+-*/"), "x", false, 0},
		{"none of", NoneOf("\"\\"), "x", true, 1},
		{"none of mismatch", NoneOf("\"\\"), "\"", false, 0},
		{"none of at eoi", NoneOf("\"\\"), "", false, 0},
		{"string", String("hello"), "hello world", true, 5},
		{"string prefix", String("hello"), "help", false, 0},
		{"string at eoi", String("hello"), "hell", false, 0},
		{"string ignore case", StringIgnoreCase("select"), "SeLeCt *", true, 6},
		{"string ignore case mismatch", StringIgnoreCase("select"), "selekt", false, 0},
		{"code point", CodePoint('é'), "é", true, 1},
		{"code point range", CodePointRange(0x1F600, 0x1F64F), "😀", true, 1},
		{"code point range mismatch", CodePointRange(0x1F600, 0x1F64F), "a", false, 0},
		{"regex", Regex(`[0-9]+(\.[0-9]+)?`), "3.14 rad", true, 4},
		{"regex mismatch", Regex(`[0-9]+`), "x12", false, 0},
		{"indent", Indent(), string(IndentChar), true, 1},
		{"dedent", Dedent(), string(DedentChar), true, 1},
	})
}

func TestRegex_AnchoredAtCurrentIndex(t *testing.T) {
	g := Sequence(Char('a'), Regex(`[0-9]+`), Char('b'))
	runMatchTests(t, []matchTest{
		{"matches in the middle", g, "a123b", true, 5},
		{"doesn't scan ahead", g, "ax123b", false, 0},
	})
}

func TestCodePoint_SurrogatePairs(t *testing.T) {
	input := NewCharSequenceBuffer(NewUTF16Sequence("a😀b"))

	g := Sequence(Char('a'), CodePoint('😀'), Char('b'))
	result := NewParseRunner(g, nil).RunBuffer(input)
	assert.True(t, result.Matched)
	assert.Equal(t, 4, result.End)

	g = Sequence(Char('a'), Char('😀'))
	result = NewParseRunner(g, nil).RunBuffer(input)
	assert.False(t, result.Matched)
}

func TestBuilderSimplifications(t *testing.T) {
	a := Char('a')
	assert.Same(t, a, Sequence(a))
	assert.Same(t, a, FirstOf(a))
	assert.Equal(t, MatcherKind_Char, String("a").Kind())
	assert.Equal(t, MatcherKind_Empty, String("").Kind())
	assert.Equal(t, MatcherKind_Char, CharIgnoreCase('1').Kind())
	assert.Equal(t, MatcherKind_Char, CharRange('x', 'x').Kind())
	assert.Equal(t, MatcherKind_Char, AnyOf("aaa").Kind())
	assert.Equal(t, MatcherKind_CodePoint, CodePointRange('x', 'x').Kind())
	assert.Equal(t, MatcherKind_CharIgnoreCase, StringIgnoreCase("a").Kind())
}

func TestBuilderValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() Matcher
	}{
		{"inverted char range", func() Matcher { return CharRange('z', 'a') }},
		{"inverted code point range", func() Matcher { return CodePointRange(0x20, 0x10) }},
		{"invalid code point", func() Matcher { return CodePoint(0xD800) }},
		{"code point out of range", func() Matcher { return CodePoint(0x110000) }},
		{"empty character set", func() Matcher { return AnyOf("") }},
		{"empty negated character set", func() Matcher { return NoneOf("") }},
		{"invalid regex", func() Matcher { return Regex(`(`) }},
		{"empty sequence", func() Matcher { return Sequence() }},
		{"empty choice", func() Matcher { return FirstOf() }},
		{"nil child", func() Matcher { return Sequence(Char('a'), nil) }},
		{"nil optional", func() Matcher { return Optional(nil) }},
		{"nil action", func() Matcher { return Action(nil) }},
		{"negative minimum", func() Matcher { return Repeat(Any()).Min(-1) }},
		{"maximum below minimum", func() Matcher { return Repeat(Any()).Range(3, 2) }},
		{"join without separator", func() Matcher { return Join(Any()).Min(1) }},
		{"empty trie", func() Matcher { return TrieOf() }},
		{"empty trie word", func() Matcher { return TrieOf("a", "") }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := BuildGrammar(test.build)
			assert.Nil(t, m)
			var gerr *GrammarError
			require.ErrorAs(t, err, &gerr)
			assert.NotEmpty(t, gerr.Message)
		})
	}

	t.Run("builders panic outside BuildGrammar", func(t *testing.T) {
		assert.Panics(t, func() { CharRange('z', 'a') })
	})

	t.Run("other panics go through", func(t *testing.T) {
		assert.PanicsWithValue(t, "boom", func() {
			BuildGrammar(func() Matcher { panic("boom") })
		})
	})
}

func TestSequence(t *testing.T) {
	g := Sequence(Char('a'), Char('b'), Char('c'))
	runMatchTests(t, []matchTest{
		{"all elements", g, "abc", true, 3},
		{"trailing input is left", g, "abcd", true, 3},
		{"last element fails", g, "abx", false, 0},
		{"first element fails", g, "xbc", false, 0},
	})
}

func TestFirstOf(t *testing.T) {
	// the first alternative that matches wins, even a shorter one
	g := Sequence(FirstOf(String("do"), String("double")), Optional(Char('u')))
	runMatchTests(t, []matchTest{
		{"first alternative wins", g, "double", true, 3},
		{"second alternative", FirstOf(Char('a'), Char('b')), "b", true, 1},
		{"no alternative", FirstOf(Char('a'), Char('b')), "c", false, 0},
	})
}

func TestOptional(t *testing.T) {
	g := Sequence(Optional(Char('-')), CharRange('0', '9'))
	runMatchTests(t, []matchTest{
		{"present", g, "-1", true, 2},
		{"absent", g, "1", true, 1},
		{"partial match is rewound", Sequence(Optional(String("ab")), Char('a')), "ax", true, 1},
	})
}

func TestPredicates(t *testing.T) {
	runMatchTests(t, []matchTest{
		{"test consumes nothing", Sequence(Test(String("ab")), Char('a')), "ab", true, 1},
		{"test fails", Test(Char('a')), "b", false, 0},
		{"test not", Sequence(TestNot(Char('b')), Any()), "a", true, 1},
		{"test not fails", Sequence(TestNot(Char('b')), Any()), "b", false, 0},
		{"keyword boundary", Sequence(String("if"), TestNot(CharRange('a', 'z'))), "iffy", false, 0},
	})
}

// rewindProbe checks the cursor of the activation of the matcher it
// wraps right after it fails.
type rewindProbe struct {
	inner    Matcher
	failures int
	moved    int
}

func (p *rewindProbe) Label() string       { return p.inner.Label() }
func (p *rewindProbe) Type() MatcherType   { return p.inner.Type() }
func (p *rewindProbe) Kind() MatcherKind   { return MatcherKind_Custom }
func (p *rewindProbe) Children() []Matcher { return []Matcher{p.inner} }

func (p *rewindProbe) Match(ctx *Context) bool {
	if p.inner.Match(ctx) {
		return true
	}
	p.failures++
	if ctx.CurrentIndex() != ctx.StartIndex() {
		p.moved++
	}
	return false
}

func TestFailureLeavesCursorUnmoved(t *testing.T) {
	matchers := map[string]Matcher{
		"string":      String("abd"),
		"sequence":    Sequence(Char('a'), Char('b'), Char('d')),
		"first of":    FirstOf(String("abd"), Sequence(Char('a'), Char('x'))),
		"repeat":      Repeat(Char('a')).Min(3),
		"join":        Join(Char('a')).Using(Char('b')).Min(3),
		"test":        Test(Sequence(Char('a'), Char('x'))),
		"test not":    TestNot(Sequence(Char('a'), Char('b'))),
		"trie":        TrieOf("abd", "abcd"),
		"regex":       Regex(`ab+d`),
		"ignore case": StringIgnoreCase("ABD"),
		"action":      Sequence(Char('a'), Action(func(*Context) (bool, error) { return false, nil })),
	}
	for name, m := range matchers {
		t.Run(name, func(t *testing.T) {
			probe := &rewindProbe{inner: m}
			result := run(Sequence(Optional(Char('x')), probe), "abc")
			assert.False(t, result.Matched)
			assert.Equal(t, 1, probe.failures)
			assert.Equal(t, 0, probe.moved)
		})
	}
}

// counting is a foreign matcher that counts how many times it's
// attempted
type counting struct {
	calls int
}

func (c *counting) Label() string       { return "counting" }
func (c *counting) Type() MatcherType   { return MatcherType_Terminal }
func (c *counting) Kind() MatcherKind   { return MatcherKind_Custom }
func (c *counting) Children() []Matcher { return nil }

func (c *counting) Match(ctx *Context) bool {
	c.calls++
	if ctx.CurrentChar() != 'z' {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

func TestMemoMismatches(t *testing.T) {
	t.Run("remembered within a run", func(t *testing.T) {
		c := &counting{}
		m := MemoMismatches(c)
		g := FirstOf(Sequence(m, Char('x')), Sequence(m, Char('y')), Char('a'))
		result := run(g, "a")
		assert.True(t, result.Matched)
		assert.Equal(t, 1, c.calls)
	})

	t.Run("not remembered across runs", func(t *testing.T) {
		c := &counting{}
		m := MemoMismatches(c)
		runner := NewParseRunner(FirstOf(m, m, Char('a')), nil)
		runner.Run("a")
		runner.Run("a")
		assert.Equal(t, 2, c.calls)
	})

	t.Run("without memo", func(t *testing.T) {
		c := &counting{}
		run(FirstOf(Sequence(c, Char('x')), Sequence(c, Char('y')), Char('a')), "a")
		assert.Equal(t, 2, c.calls)
	})

	t.Run("matches go through", func(t *testing.T) {
		result := run(OneOrMore(MemoMismatches(&counting{})), "zzz")
		assert.True(t, result.Matched)
		assert.Equal(t, 3, result.End)
	})
}

func TestForward(t *testing.T) {
	parens := Forward("parens")
	parens.Define(Sequence(Char('('), Optional(parens), Char(')')))

	runMatchTests(t, []matchTest{
		{"one level", parens, "()", true, 2},
		{"nested", parens, "((()))", true, 6},
		{"unbalanced", parens, "(()", false, 0},
	})

	t.Run("labels", func(t *testing.T) {
		assert.Equal(t, "parens", parens.Label())
		assert.True(t, parens.HasCustomLabel())
		assert.Equal(t, MatcherKind_Forward, parens.Kind())
		assert.Equal(t, MatcherKind_Sequence, Innermost(parens).Kind())
	})

	t.Run("defined twice", func(t *testing.T) {
		assert.Panics(t, func() { parens.Define(Any()) })
	})

	t.Run("used before being defined", func(t *testing.T) {
		assert.Panics(t, func() { run(Forward("nope"), "x") })
	})
}

func TestDecorators(t *testing.T) {
	m := Label("Digit", CharRange('0', '9'))
	assert.Equal(t, "Digit", m.Label())
	assert.True(t, hasCustomLabel(m))
	assert.Equal(t, MatcherKind_CharRange, m.Kind())
	assert.Equal(t, MatcherType_Terminal, m.Type())

	s := SuppressNode(m)
	assert.Equal(t, "Digit", s.Label())
	assert.Equal(t, NodeOptions{Suppress: true}, nodeOptionsOf(s))
	// decorating again doesn't nest
	assert.Same(t, m.(*decorated).inner, s.(*decorated).inner)

	assert.False(t, hasCustomLabel(Sequence(Any(), Any())))
	assert.True(t, hasCustomLabel(Char('a')))
}
