package pegkit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markers makes converted text readable in assertions
var markers = strings.NewReplacer(string(IndentChar), "{", string(DedentChar), "}")

func TestIndentDedentBuffer_Convert(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     func(*IndentOptions)
		expected string
		indexMap []int
	}{
		{
			name:     "flat input is untouched",
			input:    "a\nb",
			expected: "a\nb",
			indexMap: []int{0, 1, 2},
		},
		{
			name:     "indent and dedent",
			input:    "a\n  b\n  c\nd",
			expected: "a\n{b\nc\n}d",
			indexMap: []int{0, 1, 4, 4, 5, 8, 9, 10, 10},
		},
		{
			name:     "open blocks are closed at the end",
			input:    "a\n  b",
			expected: "a\n{b\n}",
			indexMap: []int{0, 1, 4, 4, 5, 5},
		},
		{
			name:     "one dedent per closed level",
			input:    "a\n b\n  c\nd",
			expected: "a\n{b\n{c\n}}d",
			indexMap: []int{0, 1, 3, 3, 4, 7, 7, 8, 9, 9, 9},
		},
		{
			name:     "tabs round up to the tab stop",
			input:    "if\n\tx\n    y\nz",
			expected: "if\n{x\ny\n}z",
			indexMap: []int{0, 1, 2, 4, 4, 5, 10, 11, 12, 12},
		},
		{
			name:     "empty lines are skipped",
			input:    "a\n\n  b",
			expected: "a\n{b\n}",
			indexMap: []int{0, 1, 5, 5, 6, 6},
		},
		{
			name:     "empty lines are kept",
			input:    "a\n\n  b",
			opts:     func(o *IndentOptions) { o.SkipEmptyLines = false },
			expected: "a\n\n{b\n}",
			indexMap: []int{0, 1, 2, 5, 5, 6, 6},
		},
		{
			name:     "line comments are dropped",
			input:    "a # c\nb",
			opts:     func(o *IndentOptions) { o.LineCommentStart = "#" },
			expected: "a \nb",
			indexMap: []int{0, 1, 2, 6},
		},
		{
			name:     "semi-dedent without strict mode",
			input:    "a\n    b\n  c",
			opts:     func(o *IndentOptions) { o.Strict = false },
			expected: "a\n{b\nc\n}",
			indexMap: []int{0, 1, 6, 6, 7, 10, 11, 11},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := DefaultIndentOptions()
			if test.opts != nil {
				test.opts(&opts)
			}
			input, err := NewIndentDedentBuffer(test.input, opts)
			require.NoError(t, err)
			assert.Equal(t, test.expected, markers.Replace(input.Converted()))
			assert.Equal(t, test.indexMap, input.IndexMap())
			assert.Equal(t, len([]rune(input.Converted())), len(input.IndexMap()))
		})
	}
}

func TestIndentDedentBuffer_Strict(t *testing.T) {
	_, err := NewIndentDedentBuffer("a\n    b\n  c", DefaultIndentOptions())
	require.Error(t, err)
	require.True(t, IsIndentationError(err))

	ierr := err.(*IndentationError)
	assert.Equal(t, 10, ierr.Index)
	assert.Equal(t, Position{Line: 3, Column: 3}, ierr.Position)
	assert.Equal(t, "illegal indentation at line 3, column 3", ierr.Error())
}

func TestIndentDedentBuffer_InvalidOptions(t *testing.T) {
	opts := DefaultIndentOptions()
	opts.TabStop = 0
	_, err := NewIndentDedentBuffer("a", opts)
	assert.Error(t, err)

	opts = DefaultIndentOptions()
	opts.LineCommentStart = "#\n"
	_, err = NewIndentDedentBuffer("a", opts)
	assert.Error(t, err)
}

func TestIndentDedentBuffer_MapsBackToOriginal(t *testing.T) {
	original := "if\n\tx\n    y\nz"
	input, err := NewIndentDedentBuffer(original, DefaultIndentOptions())
	require.NoError(t, err)
	orig := NewInputBuffer(original)

	t.Run("index map is monotonic", func(t *testing.T) {
		m := input.IndexMap()
		for i := 1; i < len(m); i++ {
			assert.LessOrEqual(t, m[i-1], m[i])
		}
	})

	t.Run("extract resolves through the index map", func(t *testing.T) {
		assert.Equal(t, "x\n    y", input.Extract(3, 7))
		assert.Equal(t, "if", input.Extract(0, 2))
		// one past the end maps to the end of the original text
		assert.Equal(t, "z", input.Extract(9, input.Length()))
	})

	t.Run("every range highlights the original text", func(t *testing.T) {
		m := input.IndexMap()
		for a := 0; a <= input.Length(); a++ {
			for b := a; b <= input.Length(); b++ {
				expected := orig.Extract(input.OriginalIndex(a), input.OriginalIndex(b))
				assert.Equal(t, expected, input.Extract(a, b), "range %d..%d", a, b)
			}
		}
		assert.Equal(t, m[0], input.OriginalIndex(-1))
		assert.Equal(t, len([]rune(original)), input.OriginalIndex(input.Length()))
	})

	t.Run("positions and lines come from the original text", func(t *testing.T) {
		// 'y' is at index 6 of the converted text
		require.Equal(t, 'y', input.CharAt(6))
		assert.Equal(t, Position{Line: 3, Column: 5}, input.Position(6))
		assert.Equal(t, "    y", input.ExtractLine(3))
		assert.Equal(t, 4, input.LineCount())
	})
}

func TestIndentOptionsFromConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, DefaultIndentOptions(), IndentOptionsFromConfig(cfg))

	cfg.SetInt("buffer.tab_stop", 8)
	cfg.SetString("buffer.line_comment", "//")
	cfg.SetBool("buffer.strict", false)
	opts := IndentOptionsFromConfig(cfg)
	assert.Equal(t, 8, opts.TabStop)
	assert.Equal(t, "//", opts.LineCommentStart)
	assert.False(t, opts.Strict)
	assert.True(t, opts.SkipEmptyLines)
}
