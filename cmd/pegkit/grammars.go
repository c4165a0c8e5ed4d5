package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clarete/pegkit"
	pegjson "github.com/clarete/pegkit/examples/json"
	"github.com/clarete/pegkit/examples/outline"
)

// grammar is one of the grammars the command line can run
type grammar struct {
	description string
	build       func() pegkit.Matcher

	// indented grammars run over an IndentDedentBuffer
	indented bool

	// render formats the top of the value stack after a run
	render func(v any) (string, error)
}

var grammars = map[string]grammar{
	"json": {
		description: "JSON documents, printed back as YAML",
		build:       pegjson.Grammar,
		render:      renderYAML,
	},
	"outline": {
		description: "indented to-do lists",
		build:       outline.Grammar,
		indented:    true,
		render: func(v any) (string, error) {
			root, ok := v.(*outline.Item)
			if !ok {
				return "", fmt.Errorf("unexpected value %T", v)
			}
			total, done := root.Count()
			return fmt.Sprintf("%s(%d of %d done)\n", root, done, total), nil
		},
	},
}

func grammarNames() string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func lookupGrammar(name string) (grammar, error) {
	g, ok := grammars[name]
	if !ok {
		return grammar{}, fmt.Errorf("unknown grammar `%s`, available: %s", name, grammarNames())
	}
	return g, nil
}

// buffer wraps `text` in the input buffer the grammar expects
func (g grammar) buffer(text string, cfg *pegkit.Config) (pegkit.InputBuffer, error) {
	if !g.indented {
		return pegkit.NewInputBuffer(text), nil
	}
	return pegkit.NewIndentDedentBuffer(text, pegkit.IndentOptionsFromConfig(cfg))
}

func renderYAML(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readSource reads the file named by the first argument, or stdin
// when there's none.
func readSource(args []string) (string, error) {
	var r io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return pegkit.ReadInput(r)
}
