package pegkit

import (
	"strings"
)

type FormatToken int

const (
	FormatToken_None FormatToken = iota
	FormatToken_Label
	FormatToken_Range
	FormatToken_Literal
	FormatToken_Value
)

// FormatFunc decorates a piece of output with the style of `token`
type FormatFunc func(input string, token FormatToken) string

func plainFormat(input string, _ FormatToken) string { return input }

// treePrinter writes box-drawing trees, keeping track of the prefix
// each nesting level adds to the lines below it.
type treePrinter struct {
	padStr []string
	output strings.Builder
	format FormatFunc
}

func newTreePrinter(format FormatFunc) *treePrinter {
	if format == nil {
		format = plainFormat
	}
	return &treePrinter{format: format}
}

func (tp *treePrinter) indent(s string) { tp.padStr = append(tp.padStr, s) }
func (tp *treePrinter) unindent()       { tp.padStr = tp.padStr[:len(tp.padStr)-1] }
func (tp *treePrinter) write(s string)  { tp.output.WriteString(s) }

func (tp *treePrinter) padding() {
	for _, item := range tp.padStr {
		tp.write(item)
	}
}

func (tp *treePrinter) pwrite(s string) {
	tp.padding()
	tp.write(s)
}

// children visits each item of a list of `n` children, drawing the
// branch that leads to it
func (tp *treePrinter) children(n int, visit func(i int)) {
	for i := 0; i < n; i++ {
		if i == n-1 {
			tp.pwrite("└── ")
			tp.indent("    ")
		} else {
			tp.pwrite("├── ")
			tp.indent("│   ")
		}
		visit(i)
		tp.unindent()
	}
}

var literalSanitizer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	string(IndentChar), "⇥",
	string(DedentChar), "⇤",
)

func escapeLiteral(s string) string {
	return literalSanitizer.Replace(s)
}
