package pegkit

import (
	"fmt"
	"sort"
)

// EOI is returned by buffers for every index at or past the end of
// the input.
const EOI rune = -1

//  ---- IndexRange ----

// IndexRange takes as little as possible to represent a half-open
// interval `[Start, End)` within the input.
type IndexRange struct{ Start, End int }

func NewIndexRange(start, end int) IndexRange {
	if start > end {
		panic(fmt.Sprintf("invalid index range %d..%d", start, end))
	}
	return IndexRange{Start: start, End: end}
}

func (r IndexRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

func (r IndexRange) Len() int      { return r.End - r.Start }
func (r IndexRange) IsEmpty() bool { return r.Start == r.End }
func (r IndexRange) Contains(other IndexRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}

//  ---- Position ----

// Position is a 1-based line and column pair.  Columns count
// addressable units, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---- Line index ----

// lineIndex keeps the offset of the first unit of every line.  It's
// enough to answer position queries with a binary search.
type lineIndex struct {
	// lineStart holds 0-based offsets of each line start
	lineStart []int
	length    int
}

func newLineIndex(length int, charAt func(int) rune) *lineIndex {
	// Always include line 1 starting at offset 0.
	lineStart := make([]int, 1, 64)
	for i := 0; i < length; i++ {
		if charAt(i) == '\n' {
			// next line starts after '\n'
			lineStart = append(lineStart, i+1)
		}
	}
	return &lineIndex{lineStart: lineStart, length: length}
}

func (li *lineIndex) lineCount() int { return len(li.lineStart) }

func (li *lineIndex) position(index int) Position {
	if index < 0 {
		index = 0
	}
	if index > li.length {
		index = li.length
	}

	// Find first lineStart > index, then step back one.
	line := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > index
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: index - li.lineStart[line] + 1}
}

// lineRange returns the range of `line` (1-based) including its
// terminator.
func (li *lineIndex) lineRange(line int) IndexRange {
	if line < 1 || line > len(li.lineStart) {
		panic(fmt.Sprintf("line number %d out of range 1..%d", line, len(li.lineStart)))
	}
	start := li.lineStart[line-1]
	end := li.length
	if line < len(li.lineStart) {
		end = li.lineStart[line]
	}
	return IndexRange{Start: start, End: end}
}

// extractLine cuts the terminator of `line` out of the range so
// callers get the bare line text.
func (li *lineIndex) extractLine(line int, charAt func(int) rune, extract func(int, int) string) string {
	r := li.lineRange(line)
	end := r.End
	if end > r.Start && charAt(end-1) == '\n' {
		end--
	}
	if end > r.Start && charAt(end-1) == '\r' {
		end--
	}
	return extract(r.Start, end)
}
