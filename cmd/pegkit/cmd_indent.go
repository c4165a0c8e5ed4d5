package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clarete/pegkit"
)

var markers = strings.NewReplacer(
	string(pegkit.IndentChar), "⇥",
	string(pegkit.DedentChar), "⇤",
)

func newIndentCmd(opts *options) *cobra.Command {
	var showMap bool

	cmd := &cobra.Command{
		Use:   "indent [file]",
		Short: "Show how indentation is turned into INDENT and DEDENT markers",
		Long: `Convert a file, or stdin, the way indentation sensitive grammars see
it: INDENT is printed as ⇥ and DEDENT as ⇤.  The buffer.* settings of the
configuration file control the conversion.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args)
			if err != nil {
				return err
			}
			input, err := pegkit.NewIndentDedentBuffer(text, pegkit.IndentOptionsFromConfig(opts.cfg))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, markers.Replace(input.Converted()))
			if !showMap {
				return nil
			}
			converted := []rune(input.Converted())
			for i, orig := range input.IndexMap() {
				fmt.Fprintf(w, "%4d %-4q -> %4d %s\n", i, markers.Replace(string(converted[i])), orig, input.Position(i))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showMap, "map", "m", false, "print where each converted character comes from")

	return cmd
}
