package pegkit

import (
	"fmt"
	"unicode/utf16"
)

// InputBuffer is a read-only, position addressable view over the
// text being matched.  Indices at or past `Length()` always yield
// `EOI`; negative indices are a programming error and panic.
type InputBuffer interface {
	// Length returns the number of addressable units.
	Length() int

	// CharAt returns the unit at `index` or EOI.
	CharAt(index int) rune

	// CodePointAt decodes the Unicode scalar value starting at
	// `index` and returns it alongside the number of units it
	// takes.  It returns `(EOI, 0)` past the end of the input.
	CodePointAt(index int) (rune, int)

	// Test returns true if `chars` appear verbatim at `index`.
	Test(index int, chars []rune) bool

	// Extract returns the text between `start` and `end`.  Both
	// indices are clamped to the buffer bounds.
	Extract(start, end int) string

	// ExtractRange is a shortcut for `Extract(r.Start, r.End)`.
	ExtractRange(r IndexRange) string

	// Position returns the line/column pair of `index`.
	Position(index int) Position

	// OriginalIndex maps `index` back to the text the buffer was
	// created from.  It's the identity for most buffers.
	OriginalIndex(index int) int

	// ExtractLine returns the text of line `line` (1-based)
	// without its terminator.
	ExtractLine(line int) string

	// LineRange returns the range of line `line` (1-based),
	// terminator included.
	LineRange(line int) IndexRange

	// LineCount returns the number of lines.
	LineCount() int
}

// runeSource is implemented by buffers that can hand their units
// over without copying.  The regular expression matcher uses it.
type runeSource interface {
	runes() []rune
}

// DefaultBuffer is the plain InputBuffer over an in-memory slice of
// runes.
type DefaultBuffer struct {
	data  []rune
	lines *lineIndex
}

// NewInputBuffer creates a buffer over the runes of `input`.
func NewInputBuffer(input string) *DefaultBuffer {
	return NewInputBufferRunes([]rune(input))
}

// NewInputBufferRunes creates a buffer over `data`.  The slice is not
// copied and must not be modified afterwards.
func NewInputBufferRunes(data []rune) *DefaultBuffer {
	b := &DefaultBuffer{data: data}
	b.lines = newLineIndex(len(data), b.CharAt)
	return b
}

func (b *DefaultBuffer) Length() int   { return len(b.data) }
func (b *DefaultBuffer) runes() []rune { return b.data }

func (b *DefaultBuffer) CharAt(index int) rune {
	checkIndex(index)
	if index >= len(b.data) {
		return EOI
	}
	return b.data[index]
}

func (b *DefaultBuffer) CodePointAt(index int) (rune, int) {
	return codePointAt(b, index)
}

func (b *DefaultBuffer) Test(index int, chars []rune) bool {
	return testChars(b, index, chars)
}

func (b *DefaultBuffer) Extract(start, end int) string {
	start, end = clampRange(start, end, len(b.data))
	return string(b.data[start:end])
}

func (b *DefaultBuffer) ExtractRange(r IndexRange) string { return b.Extract(r.Start, r.End) }
func (b *DefaultBuffer) Position(index int) Position      { return b.lines.position(index) }
func (b *DefaultBuffer) OriginalIndex(index int) int      { return index }
func (b *DefaultBuffer) LineRange(line int) IndexRange    { return b.lines.lineRange(line) }
func (b *DefaultBuffer) LineCount() int                   { return b.lines.lineCount() }

func (b *DefaultBuffer) ExtractLine(line int) string {
	return b.lines.extractLine(line, b.CharAt, b.Extract)
}

func checkIndex(index int) {
	if index < 0 {
		panic(fmt.Sprintf("negative buffer index %d", index))
	}
}

func clampRange(start, end, length int) (int, int) {
	start = max(start, 0)
	end = min(end, length)
	if start > end {
		return end, end
	}
	return start, end
}

// codePointAt joins surrogate pairs so buffers over UTF-16 code units
// report full scalar values.  Buffers built from Go strings never
// carry surrogates, so the width is 1 for them.
func codePointAt(b InputBuffer, index int) (rune, int) {
	c := b.CharAt(index)
	if c == EOI {
		return EOI, 0
	}
	if !utf16.IsSurrogate(c) || c >= 0xDC00 {
		return c, 1
	}
	low := b.CharAt(index + 1)
	if low == EOI {
		return c, 1
	}
	if r := utf16.DecodeRune(c, low); r != 0xFFFD {
		return r, 2
	}
	return c, 1
}

func testChars(b InputBuffer, index int, chars []rune) bool {
	for i, c := range chars {
		if b.CharAt(index+i) != c {
			return false
		}
	}
	return true
}
