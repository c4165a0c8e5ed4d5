package pegkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeConfig() *Config {
	cfg := NewConfig()
	cfg.SetBool("runner.build_tree", true)
	return cfg
}

type bounded interface {
	Bounds() (int, int)
}

func TestRepeat(t *testing.T) {
	a := Char('a')
	runMatchTests(t, []matchTest{
		{"stops at the maximum", Repeat(a).Range(2, 4), "aaaaa", true, 4},
		{"within bounds", Repeat(a).Range(2, 4), "aaab", true, 3},
		{"below the minimum", Repeat(a).Range(2, 4), "ab", false, 0},
		{"exactly", Repeat(a).Times(3), "aaaa", true, 3},
		{"at most", Repeat(a).Max(2), "aaa", true, 2},
		{"at least", Repeat(a).Min(2), "aaaaaab", true, 6},
		{"zero or more on nothing", ZeroOrMore(a), "b", true, 0},
		{"zero or more", ZeroOrMore(a), "aab", true, 2},
		{"one or more on nothing", OneOrMore(a), "b", false, 0},
		{"one or more", OneOrMore(a), "aaa", true, 3},
	})
}

func TestRepeat_ZeroProgressCycles(t *testing.T) {
	maybe := Optional(Char('a'))
	runMatchTests(t, []matchTest{
		{"zero or more ends", ZeroOrMore(maybe), "b", true, 0},
		{"consuming cycles count", OneOrMore(maybe), "aab", true, 2},
		{"empty cycles don't count", OneOrMore(maybe), "b", false, 0},
		{"empty cycles don't make up for missing ones", Repeat(maybe).Min(3), "aab", false, 0},
		{"join ends", Join(maybe).Using(Optional(Char(','))).Min(0), "b", true, 0},
	})

	t.Run("nodes of empty cycles are dropped", func(t *testing.T) {
		g := ZeroOrMore(Label("x", Optional(Char('a'))))
		result := NewParseRunner(g, treeConfig()).Run("a")
		require.True(t, result.Matched)
		require.NotNil(t, result.Root)
		assert.Equal(t, "ZeroOrMore", result.Root.Label)
		require.Len(t, result.Root.Children, 1)
		assert.Equal(t, NewIndexRange(0, 1), result.Root.Children[0].Range())
	})
}

func TestJoin(t *testing.T) {
	digit := CharRange('0', '9')
	list := Join(digit).Using(Char(',')).Min(1)
	runMatchTests(t, []matchTest{
		{"single element", list, "1", true, 1},
		{"many elements", list, "1,2,3", true, 5},
		{"trailing separator is left", list, "1,2,", true, 3},
		{"no element", list, "x", false, 0},
		{"optional list", Join(digit).Using(Char(',')).Min(0), "", true, 0},
		{"stops at the maximum", Join(digit).Using(Char(',')).Range(2, 3), "1,2,3,4", true, 5},
		{"below the minimum", Join(digit).Using(Char(',')).Range(2, 3), "1,x", false, 0},
		{"exactly", Join(digit).Using(Char(',')).Times(2), "1,2,3", true, 3},
		{"separator followed by the rest", Sequence(list, String(",x")), "1,2,x", true, 5},
		{"empty first element isn't counted", Join(Optional(digit)).Using(Char(',')).Min(1), "", false, 0},
		{"empty first element ends the loop", Join(Optional(digit)).Using(Char(',')).Min(1), ",1", false, 0},
		{"empty first element with no minimum", Join(Optional(digit)).Using(Char(',')).Min(0), ",1", true, 0},
	})

	t.Run("nodes of undone cycles are dropped", func(t *testing.T) {
		result := NewParseRunner(list, treeConfig()).Run("1,2,")
		require.True(t, result.Matched)
		require.NotNil(t, result.Root)
		texts := []string{}
		for _, c := range result.Root.Children {
			texts = append(texts, c.Text(result.Input))
		}
		assert.Equal(t, []string{"1", ",", "2"}, texts)
	})
}

func TestLoopBuilders(t *testing.T) {
	a, sep := Char('a'), Char(',')

	t.Run("simplifications", func(t *testing.T) {
		assert.Equal(t, MatcherKind_Empty, Repeat(a).Times(0).Kind())
		assert.Equal(t, MatcherKind_Empty, Repeat(a).Max(0).Kind())
		assert.Same(t, a, Repeat(a).Times(1))
		assert.Equal(t, MatcherKind_Optional, Repeat(a).Max(1).Kind())
		assert.Equal(t, MatcherKind_Empty, Join(a).Using(sep).Times(0).Kind())
		assert.Same(t, a, Join(a).Using(sep).Times(1))
		assert.Equal(t, MatcherKind_Optional, Join(a).Using(sep).Range(0, 1).Kind())
	})

	t.Run("labels and bounds", func(t *testing.T) {
		tests := []struct {
			matcher  Matcher
			label    string
			min, max int
		}{
			{Repeat(a).Min(2), "Repeat{2,}", 2, Unbounded},
			{Repeat(a).Range(2, 4), "Repeat{2,4}", 2, 4},
			{ZeroOrMore(a), "ZeroOrMore", 0, Unbounded},
			{OneOrMore(a), "OneOrMore", 1, Unbounded},
			{Join(a).Using(sep).Min(1), "Join{1,}", 1, Unbounded},
			{Join(a).Using(sep).Times(3), "Join{3,3}", 3, 3},
		}
		for _, test := range tests {
			t.Run(test.label, func(t *testing.T) {
				assert.Equal(t, test.label, test.matcher.Label())
				assert.False(t, hasCustomLabel(test.matcher))
				lo, hi := test.matcher.(bounded).Bounds()
				assert.Equal(t, test.min, lo)
				assert.Equal(t, test.max, hi)
			})
		}
	})

	t.Run("invalid bounds", func(t *testing.T) {
		assert.Panics(t, func() { Repeat(a).Range(-1, 2) })
		assert.Panics(t, func() { Repeat(a).Range(0, -2) })
		assert.Panics(t, func() { Repeat(a).Range(3, 1) })
		assert.Panics(t, func() { Join(a).Using(sep).Range(3, 1) })
		assert.Panics(t, func() { Repeat(nil) })
		assert.Panics(t, func() { Join(a).Using(nil) })
	})
}
