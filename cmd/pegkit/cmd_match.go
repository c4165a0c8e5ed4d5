package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarete/pegkit"
	"github.com/clarete/pegkit/ascii"
)

var errNoMatch = errors.New("input doesn't match")

func newMatchCmd(opts *options) *cobra.Command {
	var (
		showTree bool
		trace    bool
	)

	cmd := &cobra.Command{
		Use:   "match <grammar> [file]",
		Short: "Run a built-in grammar over a file or stdin",
		Long: `Run a built-in grammar over a file, or stdin when no file is given,
and print the value its actions produce.

Available grammars: ` + grammarNames() + `

Use --tree to also print the parse tree, and --trace together with -vv
to log every match attempt.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := lookupGrammar(args[0])
			if err != nil {
				return err
			}
			text, err := readSource(args[1:])
			if err != nil {
				return err
			}
			if showTree {
				opts.cfg.SetBool("runner.build_tree", true)
			}
			if trace {
				opts.cfg.SetBool("runner.trace", true)
			}
			result, err := runGrammar(g, text, opts.cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g, result, ascii.ThemeFor(os.Stdout))
		},
	}

	cmd.Flags().BoolVarP(&showTree, "tree", "t", false, "print the parse tree")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every match attempt at debug level")

	return cmd
}

func runGrammar(g grammar, text string, cfg *pegkit.Config) (*pegkit.ParsingResult, error) {
	input, err := g.buffer(text, cfg)
	if err != nil {
		return nil, err
	}
	return pegkit.NewParseRunner(g.build(), cfg).RunBuffer(input), nil
}

func printResult(w io.Writer, g grammar, result *pegkit.ParsingResult, theme ascii.Theme) error {
	if result.HasErrors() {
		fmt.Fprint(w, pegkit.HighlightParseErrors(result.Errors, theme))
	}
	if !result.Matched {
		return errNoMatch
	}
	if result.Root != nil {
		fmt.Fprint(w, result.Root.Highlight(result.Input, theme))
	}
	out, err := g.render(result.Value)
	if err != nil {
		return err
	}
	fmt.Fprint(w, out)
	return nil
}
