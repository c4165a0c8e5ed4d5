package pegkit

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// ---- Any, Empty, Nothing, EndOfInput ----

type anyMatcher struct{ baseMatcher }

// Any matches any character but the end of the input.
func Any() Matcher {
	return &anyMatcher{terminal(MatcherKind_Any, "ANY")}
}

func (m *anyMatcher) Match(ctx *Context) bool {
	if ctx.CurrentChar() == EOI {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

type emptyMatcher struct{ baseMatcher }

// Empty always matches without consuming anything.
func Empty() Matcher {
	return &emptyMatcher{terminal(MatcherKind_Empty, "EMPTY")}
}

func (m *emptyMatcher) Match(*Context) bool { return true }

type nothingMatcher struct{ baseMatcher }

// Nothing never matches.
func Nothing() Matcher {
	return &nothingMatcher{terminal(MatcherKind_Nothing, "NOTHING")}
}

func (m *nothingMatcher) Match(*Context) bool { return false }

type eoiMatcher struct{ baseMatcher }

// EndOfInput only matches at the end of the input.
func EndOfInput() Matcher {
	return &eoiMatcher{terminal(MatcherKind_EndOfInput, "EOI")}
}

func (m *eoiMatcher) Match(ctx *Context) bool { return ctx.CurrentChar() == EOI }

// ---- Characters ----

type charMatcher struct {
	baseMatcher
	char rune
}

// Char matches exactly `c`.
func Char(c rune) Matcher {
	return &charMatcher{terminal(MatcherKind_Char, quoteChar(c)), c}
}

func (m *charMatcher) Match(ctx *Context) bool {
	if ctx.CurrentChar() != m.char {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

// Indent matches the marker IndentDedentBuffer emits when a block
// opens.
func Indent() Matcher {
	return &charMatcher{terminal(MatcherKind_Char, "INDENT"), IndentChar}
}

// Dedent matches the marker IndentDedentBuffer emits for every block
// that closes.
func Dedent() Matcher {
	return &charMatcher{terminal(MatcherKind_Char, "DEDENT"), DedentChar}
}

type charIgnoreCaseMatcher struct {
	baseMatcher
	lower, upper rune
}

// CharIgnoreCase matches `c` in either case.  Characters without case
// distinction become a plain Char.
func CharIgnoreCase(c rune) Matcher {
	lower, upper := unicode.ToLower(c), unicode.ToUpper(c)
	if lower == upper {
		return Char(c)
	}
	label := "'" + escapeRune(lower) + "/" + escapeRune(upper) + "'"
	return &charIgnoreCaseMatcher{terminal(MatcherKind_CharIgnoreCase, label), lower, upper}
}

func (m *charIgnoreCaseMatcher) Match(ctx *Context) bool {
	c := ctx.CurrentChar()
	if c == EOI || (unicode.ToLower(c) != m.lower && unicode.ToUpper(c) != m.upper) {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

type charRangeMatcher struct {
	baseMatcher
	low, high rune
}

// CharRange matches any character between `low` and `high`, both
// included.
func CharRange(low, high rune) Matcher {
	if low > high {
		grammarErrorf("inverted character range %s..%s", quoteChar(low), quoteChar(high))
	}
	if low == high {
		return Char(low)
	}
	label := quoteChar(low) + ".." + quoteChar(high)
	return &charRangeMatcher{terminal(MatcherKind_CharRange, label), low, high}
}

func (m *charRangeMatcher) Match(ctx *Context) bool {
	c := ctx.CurrentChar()
	if c < m.low || c > m.high {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

type anyOfMatcher struct {
	baseMatcher
	// chars is sorted
	chars   []rune
	negated bool
}

// AnyOf matches any of the characters of `chars`.
func AnyOf(chars string) Matcher {
	set := charSet(chars)
	if len(set) == 1 {
		return Char(set[0])
	}
	return &anyOfMatcher{terminal(MatcherKind_AnyOf, "["+escapeString(string(set))+"]"), set, false}
}

// NoneOf matches any character not in `chars`, except the end of the
// input.
func NoneOf(chars string) Matcher {
	set := charSet(chars)
	return &anyOfMatcher{terminal(MatcherKind_AnyOf, "!["+escapeString(string(set))+"]"), set, true}
}

func charSet(chars string) []rune {
	if chars == "" {
		grammarErrorf("empty character set")
	}
	set := []rune(chars)
	slices.Sort(set)
	return slices.Compact(set)
}

func (m *anyOfMatcher) Match(ctx *Context) bool {
	c := ctx.CurrentChar()
	if c == EOI {
		return false
	}
	if _, found := slices.BinarySearch(m.chars, c); found == m.negated {
		return false
	}
	ctx.AdvanceIndex(1)
	return true
}

// ---- Code points ----

type codePointMatcher struct {
	baseMatcher
	low, high rune
}

// CodePoint matches the Unicode scalar value `cp`, which takes two
// units when the buffer holds UTF-16 code units and `cp` is outside
// the Basic Multilingual Plane.
func CodePoint(cp rune) Matcher {
	checkCodePoint(cp)
	return &codePointMatcher{terminal(MatcherKind_CodePoint, codePointLabel(cp)), cp, cp}
}

// CodePointRange matches any scalar value between `low` and `high`,
// both included.
func CodePointRange(low, high rune) Matcher {
	checkCodePoint(low)
	checkCodePoint(high)
	if low > high {
		grammarErrorf("inverted code point range %s..%s", codePointLabel(low), codePointLabel(high))
	}
	if low == high {
		return CodePoint(low)
	}
	label := codePointLabel(low) + ".." + codePointLabel(high)
	return &codePointMatcher{terminal(MatcherKind_CodePointRange, label), low, high}
}

func checkCodePoint(cp rune) {
	if !utf8.ValidRune(cp) {
		grammarErrorf("invalid code point %#x", cp)
	}
}

func codePointLabel(cp rune) string { return fmt.Sprintf("U+%04X", cp) }

func (m *codePointMatcher) Match(ctx *Context) bool {
	cp, width := ctx.Input().CodePointAt(ctx.CurrentIndex())
	if width == 0 || cp < m.low || cp > m.high {
		return false
	}
	ctx.AdvanceIndex(width)
	return true
}

// ---- Strings ----

type stringMatcher struct {
	baseMatcher
	chars []rune
}

// String matches the characters of `s` in sequence.
func String(s string) Matcher {
	chars := []rune(s)
	switch len(chars) {
	case 0:
		return Empty()
	case 1:
		return Char(chars[0])
	}
	return &stringMatcher{terminal(MatcherKind_String, strconv.Quote(s)), chars}
}

func (m *stringMatcher) Match(ctx *Context) bool {
	if !ctx.Input().Test(ctx.CurrentIndex(), m.chars) {
		return false
	}
	ctx.AdvanceIndex(len(m.chars))
	return true
}

type stringIgnoreCaseMatcher struct {
	baseMatcher
	lower []rune
}

// StringIgnoreCase matches the characters of `s` in sequence, in
// any case.
func StringIgnoreCase(s string) Matcher {
	chars := []rune(s)
	switch len(chars) {
	case 0:
		return Empty()
	case 1:
		return CharIgnoreCase(chars[0])
	}
	lower := make([]rune, len(chars))
	for i, c := range chars {
		lower[i] = unicode.ToLower(c)
	}
	return &stringIgnoreCaseMatcher{terminal(MatcherKind_StringIgnoreCase, strconv.Quote(s)+"i"), lower}
}

func (m *stringIgnoreCaseMatcher) Match(ctx *Context) bool {
	input, index := ctx.Input(), ctx.CurrentIndex()
	for i, c := range m.lower {
		in := input.CharAt(index + i)
		if in == EOI || unicode.ToLower(in) != c {
			return false
		}
	}
	ctx.AdvanceIndex(len(m.lower))
	return true
}

// ---- Regular expressions ----

type regexMatcher struct {
	baseMatcher
	expr string
	re   *regexp2.Regexp

	// variants of `re` with a match timeout, keyed by duration
	timed sync.Map
}

// Regex matches the regular expression `pattern` (.NET/Perl syntax)
// starting exactly at the current index.
func Regex(pattern string) Matcher {
	expr := `\G(?:` + pattern + `)`
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		grammarErrorf("invalid regular expression %q: %s", pattern, err)
	}
	return &regexMatcher{
		baseMatcher: terminal(MatcherKind_Regex, "/"+pattern+"/"),
		expr:        expr,
		re:          re,
	}
}

func (m *regexMatcher) compiled(timeout time.Duration) *regexp2.Regexp {
	if timeout <= 0 {
		return m.re
	}
	if re, ok := m.timed.Load(timeout); ok {
		return re.(*regexp2.Regexp)
	}
	re := regexp2.MustCompile(m.expr, regexp2.None)
	re.MatchTimeout = timeout
	actual, _ := m.timed.LoadOrStore(timeout, re)
	return actual.(*regexp2.Regexp)
}

func (m *regexMatcher) Match(ctx *Context) bool {
	index := ctx.CurrentIndex()
	runes := ctx.run.inputRunes()
	if index > len(runes) {
		return false
	}
	match, err := m.compiled(ctx.run.regexTimeout).FindRunesMatchStartingAt(runes, index)
	if err != nil {
		ctx.run.logger.Warningf("regular expression %s at %d: %s", m.Label(), index, err)
		return false
	}
	if match == nil || match.Index != index {
		return false
	}
	ctx.AdvanceIndex(match.Length)
	return true
}

// ---- Labels ----

func quoteChar(c rune) string {
	switch c {
	case EOI:
		return "EOI"
	case IndentChar:
		return "INDENT"
	case DedentChar:
		return "DEDENT"
	}
	return "'" + escapeRune(c) + "'"
}

func escapeRune(c rune) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\f':
		return `\f`
	case EOI:
		return "EOI"
	}
	if !unicode.IsPrint(c) {
		return fmt.Sprintf(`\u%04x`, c)
	}
	return string(c)
}

func escapeString(s string) string {
	var b strings.Builder
	for _, c := range s {
		b.WriteString(escapeRune(c))
	}
	return b.String()
}
