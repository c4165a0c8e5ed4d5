package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/clarete/pegkit"
	"github.com/clarete/pegkit/ascii"
)

type options struct {
	configPath string
	verbose    int

	cfg *pegkit.Config
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "pegkit",
		Short:         "Run PEG grammars built with pegkit",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(opts.verbose, nil)
			return opts.loadConfig()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML file with runner and buffer settings")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "log more (repeat for debug output)")

	rootCmd.AddCommand(newMatchCmd(opts))
	rootCmd.AddCommand(newIndentCmd(opts))
	rootCmd.AddCommand(newWordsCmd(opts))
	rootCmd.AddCommand(newReplCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fatal("%s", err)
	}
}

func (o *options) loadConfig() error {
	if o.configPath == "" {
		o.cfg = pegkit.NewConfig()
		return nil
	}
	f, err := os.Open(o.configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := pegkit.LoadConfig(f)
	if err != nil {
		return fmt.Errorf("%s: %w", o.configPath, err)
	}
	o.cfg = cfg
	return nil
}

// fatal prints an error message and exits with code 1.
func fatal(format string, args ...any) {
	theme := ascii.ThemeFor(os.Stderr)
	fmt.Fprint(os.Stderr, ascii.Color(theme.Error, "error:")+" ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
	os.Exit(1)
}
