package pegkit

import (
	"io"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CharSequence is the minimal read-only character source a
// CharSequenceBuffer can decorate.  Implementations can be backed by
// anything addressable: strings, UTF-16 code units, memory mapped
// files.
type CharSequence interface {
	Len() int
	CharAt(index int) rune
	Slice(start, end int) string
}

// StringSequence is a CharSequence over the runes of a string.
type StringSequence []rune

func NewStringSequence(s string) StringSequence { return StringSequence([]rune(s)) }

func (s StringSequence) Len() int                    { return len(s) }
func (s StringSequence) CharAt(index int) rune       { return s[index] }
func (s StringSequence) Slice(start, end int) string { return string(s[start:end]) }

// UTF16Sequence is a CharSequence over raw UTF-16 code units.  Each
// code unit is one addressable unit, so characters outside the Basic
// Multilingual Plane take two of them.
type UTF16Sequence []uint16

func NewUTF16Sequence(s string) UTF16Sequence { return UTF16Sequence(utf16.Encode([]rune(s))) }

func (s UTF16Sequence) Len() int              { return len(s) }
func (s UTF16Sequence) CharAt(index int) rune { return rune(s[index]) }
func (s UTF16Sequence) Slice(start, end int) string {
	return string(utf16.Decode(s[start:end]))
}

// CharSequenceBuffer decorates a CharSequence.  The line index is
// computed in the background as soon as the buffer is created;
// position and line queries wait for it.
type CharSequenceBuffer struct {
	seq    CharSequence
	length int
	lines  *lineFuture
}

func NewCharSequenceBuffer(seq CharSequence) *CharSequenceBuffer {
	b := &CharSequenceBuffer{seq: seq, length: seq.Len()}
	b.lines = newLineFuture(func() *lineIndex {
		return newLineIndex(b.length, seq.CharAt)
	})
	return b
}

func (b *CharSequenceBuffer) Length() int { return b.length }

func (b *CharSequenceBuffer) CharAt(index int) rune {
	checkIndex(index)
	if index >= b.length {
		return EOI
	}
	return b.seq.CharAt(index)
}

func (b *CharSequenceBuffer) CodePointAt(index int) (rune, int) {
	return codePointAt(b, index)
}

func (b *CharSequenceBuffer) Test(index int, chars []rune) bool {
	return testChars(b, index, chars)
}

func (b *CharSequenceBuffer) Extract(start, end int) string {
	start, end = clampRange(start, end, b.length)
	return b.seq.Slice(start, end)
}

func (b *CharSequenceBuffer) ExtractRange(r IndexRange) string { return b.Extract(r.Start, r.End) }
func (b *CharSequenceBuffer) Position(index int) Position      { return b.lines.get().position(index) }
func (b *CharSequenceBuffer) OriginalIndex(index int) int      { return index }
func (b *CharSequenceBuffer) LineRange(line int) IndexRange    { return b.lines.get().lineRange(line) }
func (b *CharSequenceBuffer) LineCount() int                   { return b.lines.get().lineCount() }

func (b *CharSequenceBuffer) ExtractLine(line int) string {
	return b.lines.get().extractLine(line, b.CharAt, b.Extract)
}

// lineFuture is a compute-once value produced by a goroutine started
// at construction time.
type lineFuture struct {
	done  chan struct{}
	value *lineIndex
}

func newLineFuture(compute func() *lineIndex) *lineFuture {
	f := &lineFuture{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value = compute()
	}()
	return f
}

func (f *lineFuture) get() *lineIndex {
	<-f.done
	return f.value
}

// ReadInput reads all of `r` into a string.  A byte order mark
// selects UTF-8, UTF-16LE or UTF-16BE decoding and is stripped; input
// without one is taken as UTF-8.
func ReadInput(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
