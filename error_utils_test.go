package pegkit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clarete/pegkit/ascii"
)

func TestPrintErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		start, end int
		expected   string
	}{
		{
			name:     "single char",
			input:    "abc",
			start:    1,
			end:      2,
			expected: "oops (line 1, pos 2):\nabc\n ^\n",
		},
		{
			name:     "range",
			input:    "abcdef",
			start:    1,
			end:      4,
			expected: "oops (line 1, pos 2):\nabcdef\n ^^^\n",
		},
		{
			name:     "empty range gets one caret",
			input:    "abc",
			start:    2,
			end:      2,
			expected: "oops (line 1, pos 3):\nabc\n  ^\n",
		},
		{
			name:     "carets stop one past the end of the line",
			input:    "ab\ncd",
			start:    1,
			end:      5,
			expected: "oops (line 1, pos 2):\nab\n ^^\n",
		},
		{
			name:     "tabs are kept in the padding",
			input:    "\t\tx",
			start:    2,
			end:      3,
			expected: "oops (line 1, pos 3):\n\t\tx\n\t\t^\n",
		},
		{
			name:     "wide characters",
			input:    "\t世x",
			start:    2,
			end:      3,
			expected: "oops (line 1, pos 3):\n\t世x\n\t  ^\n",
		},
		{
			name:     "carets under wide characters",
			input:    "a世界",
			start:    1,
			end:      3,
			expected: "oops (line 1, pos 2):\na世界\n ^^^^\n",
		},
		{
			name:     "later line",
			input:    "one\ntwo\nthree",
			start:    10,
			end:      11,
			expected: "oops (line 3, pos 3):\nthree\n  ^\n",
		},
		{
			name:     "end of input",
			input:    "ab",
			start:    2,
			end:      3,
			expected: "oops (line 1, pos 3):\nab\n  ^\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := PrintErrorMessage("%s (line %d, pos %d):", "oops", test.start, test.end, NewInputBuffer(test.input))
			assert.Equal(t, test.expected, msg)
		})
	}

	t.Run("inverted range", func(t *testing.T) {
		assert.Panics(t, func() {
			PrintErrorMessage("%s %d %d", "oops", 3, 2, NewInputBuffer("abcd"))
		})
	})
}

func TestPrintParseErrors(t *testing.T) {
	input := NewInputBuffer("ab\ncd")
	errs := []*ParseError{
		{Type: ErrorType_InvalidInput, Start: 1, End: 2, Message: "first", Input: input},
		{Type: ErrorType_InvalidInput, Start: 3, End: 4, Message: "second", Input: input},
	}

	assert.Equal(t,
		"first (line 1, pos 2):\nab\n ^\n"+
			"---\n"+
			"second (line 2, pos 1):\ncd\n^\n",
		PrintParseErrors(errs))
	assert.Equal(t, "", PrintParseErrors(nil))

	t.Run("plain theme highlighting", func(t *testing.T) {
		assert.Equal(t, PrintParseErrors(errs), HighlightParseErrors(errs, ascii.PlainTheme))
	})

	t.Run("colors", func(t *testing.T) {
		out := HighlightParseErrors(errs[:1], ascii.DefaultTheme)
		assert.Contains(t, out, ascii.DefaultTheme.Error+"first (line 1, pos 2):"+ascii.Reset)
		assert.Contains(t, out, ascii.DefaultTheme.Caret+"^"+ascii.Reset)
	})
}

func TestParseError_Messages(t *testing.T) {
	input := NewInputBuffer("xyz")

	t.Run("without input", func(t *testing.T) {
		err := &ParseError{Type: ErrorType_Action, Start: 1, End: 1, Cause: errBoom}
		assert.Equal(t, "boom @ 1..1", err.Error())
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("message overrides everything else", func(t *testing.T) {
		err := &ParseError{Type: ErrorType_Action, Start: 0, End: 1, Message: "custom", Cause: errBoom, Input: input}
		assert.Equal(t, "custom (line 1, pos 1):\nxyz\n^\n", err.Error())
	})

	t.Run("invalid input over many characters", func(t *testing.T) {
		err := &ParseError{Type: ErrorType_InvalidInput, Start: 0, End: 2, Input: input}
		assert.Equal(t, `Invalid input "xy"`, err.message())
	})

	t.Run("escaped invalid input", func(t *testing.T) {
		err := &ParseError{Type: ErrorType_InvalidInput, Start: 0, End: 1, Input: NewInputBuffer("\n")}
		assert.Equal(t, `Invalid input '\n'`, err.message())
	})

	t.Run("joined labels", func(t *testing.T) {
		assert.Equal(t, "A", joinLabels([]string{"A"}))
		assert.Equal(t, "A or B", joinLabels([]string{"A", "B"}))
		assert.Equal(t, "A, B or C", joinLabels([]string{"A", "B", "C"}))
	})

	t.Run("repeated labels show once", func(t *testing.T) {
		number := Label("Number", OneOrMore(CharRange('0', '9')))
		result := run(FirstOf(Sequence(number, Char('+')), Sequence(number, Char('-')), number), "x")
		assert.Equal(t, []string{"Number"}, ExpectedLabels(result.Errors[0]))
	})
}
