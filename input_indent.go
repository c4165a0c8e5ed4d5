package pegkit

import (
	"fmt"
	"strings"
)

const (
	// IndentChar is emitted by IndentDedentBuffer when a line is
	// more indented than the previous one.
	IndentChar rune = '\uFDD0'

	// DedentChar is emitted by IndentDedentBuffer once per
	// indentation level closed by a line.
	DedentChar rune = '\uFDD1'
)

// IndentOptions configures the conversion done by
// IndentDedentBuffer.
type IndentOptions struct {
	// TabStop is the width of a tab stop, tabs round the
	// indentation up to the next multiple of it.  Must be > 0.
	TabStop int

	// LineCommentStart, when not empty, starts a comment that
	// runs up to the end of the line.  Comments are dropped.
	LineCommentStart string

	// Strict rejects lines that dedent to a level that doesn't
	// match any open level ("semi-dedents").
	Strict bool

	// SkipEmptyLines removes lines containing only whitespace.
	SkipEmptyLines bool
}

// DefaultIndentOptions mirrors the defaults of `NewConfig`.
func DefaultIndentOptions() IndentOptions {
	return IndentOptions{TabStop: 4, Strict: true, SkipEmptyLines: true}
}

// IndentOptionsFromConfig reads the `buffer.*` settings.
func IndentOptionsFromConfig(cfg *Config) IndentOptions {
	return IndentOptions{
		TabStop:          cfg.GetInt("buffer.tab_stop"),
		LineCommentStart: cfg.GetString("buffer.line_comment"),
		Strict:           cfg.GetBool("buffer.strict"),
		SkipEmptyLines:   cfg.GetBool("buffer.skip_empty_lines"),
	}
}

// IndentDedentBuffer collapses the leading whitespace of every line
// into either nothing (same level as the previous line), one
// IndentChar (deeper level) or one DedentChar per closed level.
//
// Matching happens over the converted text, but everything that
// reports back to users (`Extract`, `Position`, `ExtractLine`, ...)
// resolves through an index map to the original text.
type IndentDedentBuffer struct {
	orig *DefaultBuffer
	conv *DefaultBuffer

	// indexMap maps conv indices to orig indices
	indexMap []int
}

// NewIndentDedentBuffer converts `input`.  It returns an
// *IndentationError if `opts.Strict` is set and the input contains a
// semi-dedent.
func NewIndentDedentBuffer(input string, opts IndentOptions) (*IndentDedentBuffer, error) {
	if opts.TabStop <= 0 {
		return nil, fmt.Errorf("tab stop must be > 0, got %d", opts.TabStop)
	}
	if strings.ContainsRune(opts.LineCommentStart, '\n') {
		return nil, fmt.Errorf("line comment start must not contain newlines")
	}
	orig := NewInputBuffer(input)
	cv := &indentConverter{
		orig:           orig,
		tabStop:        opts.TabStop,
		commentStart:   []rune(opts.LineCommentStart),
		strict:         opts.Strict,
		skipEmptyLines: opts.SkipEmptyLines,
	}
	if err := cv.convert(); err != nil {
		return nil, err
	}
	return &IndentDedentBuffer{
		orig:     orig,
		conv:     NewInputBufferRunes(cv.chars),
		indexMap: cv.indexMap,
	}, nil
}

func (b *IndentDedentBuffer) Length() int   { return b.conv.Length() }
func (b *IndentDedentBuffer) runes() []rune { return b.conv.runes() }

func (b *IndentDedentBuffer) CharAt(index int) rune { return b.conv.CharAt(index) }

func (b *IndentDedentBuffer) CodePointAt(index int) (rune, int) {
	return b.conv.CodePointAt(index)
}

func (b *IndentDedentBuffer) Test(index int, chars []rune) bool {
	return b.conv.Test(index, chars)
}

func (b *IndentDedentBuffer) Extract(start, end int) string {
	return b.orig.Extract(b.mapIndex(start), b.mapIndex(end))
}

func (b *IndentDedentBuffer) ExtractRange(r IndexRange) string { return b.Extract(r.Start, r.End) }
func (b *IndentDedentBuffer) Position(index int) Position      { return b.orig.Position(b.mapIndex(index)) }
func (b *IndentDedentBuffer) OriginalIndex(index int) int      { return b.mapIndex(index) }
func (b *IndentDedentBuffer) ExtractLine(line int) string      { return b.orig.ExtractLine(line) }
func (b *IndentDedentBuffer) LineRange(line int) IndexRange    { return b.orig.LineRange(line) }
func (b *IndentDedentBuffer) LineCount() int                   { return b.orig.LineCount() }

// Converted returns the converted text, markers included.
func (b *IndentDedentBuffer) Converted() string { return string(b.conv.runes()) }

// IndexMap returns a copy of the map from converted to original
// indices.
func (b *IndentDedentBuffer) IndexMap() []int {
	out := make([]int, len(b.indexMap))
	copy(out, b.indexMap)
	return out
}

func (b *IndentDedentBuffer) mapIndex(index int) int {
	switch {
	case len(b.indexMap) == 0:
		return 0
	case index < 0:
		return b.indexMap[0]
	case index < len(b.indexMap):
		return b.indexMap[index]
	default:
		return b.indexMap[len(b.indexMap)-1] + 1
	}
}

// indentConverter does the single forward pass over the original
// buffer.  Every emitted rune records the original cursor it stands
// for.
type indentConverter struct {
	orig           *DefaultBuffer
	tabStop        int
	commentStart   []rune
	strict         bool
	skipEmptyLines bool

	cursor  int
	current rune
	levels  []int

	chars    []rune
	indexMap []int
}

func (cv *indentConverter) convert() error {
	cv.current = cv.orig.CharAt(0)
	cv.levels = append(cv.levels, 0)

	// the first line sets the base level without emitting
	// anything
	level := cv.skipIndent()

	for cv.current != EOI {
		commentChars := cv.skipLineComment()
		if cv.current != '\n' && cv.current != EOI {
			cv.emit(cv.current)
			cv.advance()
			continue
		}

		cv.emitNewline(commentChars)
		cv.advance()

		indent := cv.skipIndent()
		if indent > level {
			cv.levels = append(cv.levels, level)
			level = indent
			cv.emit(IndentChar)
			continue
		}
		for len(cv.levels) > 0 && indent < level && indent <= cv.levels[len(cv.levels)-1] {
			level = cv.levels[len(cv.levels)-1]
			cv.levels = cv.levels[:len(cv.levels)-1]
			cv.emit(DedentChar)
		}
		if cv.strict && indent < level {
			return &IndentationError{Index: cv.cursor, Position: cv.orig.Position(cv.cursor)}
		}
	}

	// close all the scopes still open
	if len(cv.levels) > 1 {
		cv.emit('\n')
		for len(cv.levels) > 1 {
			cv.levels = cv.levels[:len(cv.levels)-1]
			cv.emit(DedentChar)
		}
	}
	return nil
}

func (cv *indentConverter) skipIndent() int {
	indent := 0
	for {
		switch cv.current {
		case ' ':
			indent++
			cv.advance()
		case '\t':
			indent = (indent/cv.tabStop + 1) * cv.tabStop
			cv.advance()
		case '\n':
			if !cv.skipEmptyLines {
				cv.emitNewline(0)
			}
			indent = 0
			cv.advance()
		case EOI:
			return 0
		default:
			if cv.skipLineComment() == 0 {
				return indent
			}
		}
	}
}

func (cv *indentConverter) skipLineComment() int {
	if len(cv.commentStart) == 0 || !cv.orig.Test(cv.cursor, cv.commentStart) {
		return 0
	}
	start := cv.cursor
	for cv.current != '\n' && cv.current != EOI {
		cv.advance()
	}
	return cv.cursor - start
}

func (cv *indentConverter) advance() {
	cv.cursor++
	cv.current = cv.orig.CharAt(cv.cursor)
}

func (cv *indentConverter) emit(c rune) {
	cv.indexMap = append(cv.indexMap, cv.cursor)
	cv.chars = append(cv.chars, c)
}

// emitNewline points the newline back at the start of the comment it
// closes (if any), so positions land where users expect them.
func (cv *indentConverter) emitNewline(commentChars int) {
	cv.indexMap = append(cv.indexMap, cv.cursor-commentChars)
	cv.chars = append(cv.chars, '\n')
}
