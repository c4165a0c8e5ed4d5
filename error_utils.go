package pegkit

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/clarete/pegkit/ascii"
)

// formatInvalidInput builds messages such as
// "Invalid input 'x', expected 'a', 'b' or Number"
func formatInvalidInput(e *ParseError) string {
	var s strings.Builder
	if e.Input.CharAt(e.Start) == EOI {
		s.WriteString("Unexpected end of input")
	} else {
		s.WriteString("Invalid input ")
		text := e.Input.Extract(e.Start, e.End)
		if len([]rune(text)) == 1 {
			s.WriteString("'" + escapeString(text) + "'")
		} else {
			s.WriteString(`"` + escapeString(text) + `"`)
		}
	}
	if labels := ExpectedLabels(e); len(labels) > 0 {
		s.WriteString(", expected ")
		s.WriteString(joinLabels(labels))
	}
	return s.String()
}

// ExpectedLabels returns the labels of what could have been matched
// where `e` happened, without duplicates and in the order they were
// tried.
func ExpectedLabels(e *ParseError) []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, path := range e.Paths {
		m := FindProperLabelMatcher(path, e.Start)
		if m == nil {
			continue
		}
		label := m.Label()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func joinLabels(labels []string) string {
	if len(labels) == 1 {
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " or " + labels[len(labels)-1]
}

// PrintParseErrors renders each error with PrintParseError, separated
// by "---" lines.
func PrintParseErrors(errs []*ParseError) string {
	return printParseErrors(errs, ascii.PlainTheme)
}

// HighlightParseErrors is PrintParseErrors with the colors of `theme`
func HighlightParseErrors(errs []*ParseError, theme ascii.Theme) string {
	return printParseErrors(errs, theme)
}

func printParseErrors(errs []*ParseError, theme ascii.Theme) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = printParseError(e, theme)
	}
	return strings.Join(parts, "---\n")
}

// PrintParseError renders the message of `e` followed by the line
// of the input it happened at, with carets under the offending text.
func PrintParseError(e *ParseError) string {
	return printParseError(e, ascii.PlainTheme)
}

func printParseError(e *ParseError, theme ascii.Theme) string {
	return printErrorMessage("%s (line %d, pos %d):", e.message(), e.Start, e.End, e.Input, theme)
}

// PrintErrorMessage renders `msg` with the position of `start`, the
// line it's in and carets under `start..end`.  `format` receives the
// message, the line and the column, in that order.
func PrintErrorMessage(format, msg string, start, end int, input InputBuffer) string {
	return printErrorMessage(format, msg, start, end, input, ascii.PlainTheme)
}

func printErrorMessage(format, msg string, start, end int, input InputBuffer, theme ascii.Theme) string {
	if start > end {
		panic(fmt.Sprintf("error range %d..%d is inverted", start, end))
	}
	pos := input.Position(start)
	line := []rune(input.ExtractLine(pos.Line))

	var s strings.Builder
	s.WriteString(ascii.Color(theme.Error, format, msg, pos.Line, pos.Column))
	s.WriteString("\n")
	s.WriteString(string(line))
	s.WriteString("\n")

	// padding keeps tabs so carets line up however the terminal
	// expands them, and takes the display width of everything else
	col := pos.Column - 1
	for i := 0; i < col; i++ {
		switch {
		case i >= len(line):
			s.WriteByte(' ')
		case line[i] == '\t':
			s.WriteByte('\t')
		default:
			s.WriteString(strings.Repeat(" ", runeWidth(line[i])))
		}
	}

	count := max(min(end-start, len(line)-pos.Column+2), 1)
	carets := 0
	for i := col; i < col+count; i++ {
		if i < len(line) {
			carets += runeWidth(line[i])
		} else {
			carets++
		}
	}
	s.WriteString(ascii.Color(theme.Caret, "%s", strings.Repeat("^", carets)))
	s.WriteString("\n")
	return s.String()
}

func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	return max(runewidth.RuneWidth(r), 1)
}
