package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/clarete/pegkit"
	"github.com/clarete/pegkit/ascii"
)

const (
	historyFile = ".pegkit_history"
	promptMain  = "> "
	promptCont  = ". "
)

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <grammar>",
		Short: "Match lines typed interactively against a built-in grammar",
		Long: `Start an interactive session that runs a built-in grammar over each
entry.  An entry that stops at the end of the input is continued on the
next line; an empty line submits it as it is.

Commands: :tree toggles parse tree output, :quit leaves the session.

Available grammars: ` + grammarNames(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := lookupGrammar(args[0])
			if err != nil {
				return err
			}
			return repl(cmd.OutOrStdout(), g, opts.cfg)
		},
	}
}

func repl(w io.Writer, g grammar, cfg *pegkit.Config) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	theme := ascii.ThemeFor(os.Stdout)
	for {
		text, ok := readEntry(ln, g, cfg)
		if !ok {
			fmt.Fprintln(w)
			return nil
		}

		switch strings.TrimSpace(text) {
		case "":
			continue
		case ":quit":
			return nil
		case ":tree":
			cfg.SetBool("runner.build_tree", !cfg.GetBool("runner.build_tree"))
			fmt.Fprintf(w, "tree output: %t\n", cfg.GetBool("runner.build_tree"))
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(text, "\n", " "))
		result, err := runGrammar(g, text, cfg)
		if err != nil {
			fmt.Fprintln(w, ascii.Color(theme.Error, "%s", err))
			continue
		}
		if err := printResult(w, g, result, theme); err != nil && !errors.Is(err, errNoMatch) {
			fmt.Fprintln(w, ascii.Color(theme.Error, "%s", err))
		}
	}
}

// readEntry reads lines until the grammar either matches them or
// fails before the end of the input.
func readEntry(ln *liner.State, g grammar, cfg *pegkit.Config) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			if line == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(src, ":") || !incomplete(g, src, cfg) {
			return src, true
		}
	}
}

func incomplete(g grammar, text string, cfg *pegkit.Config) bool {
	probe := cfg.Clone()
	probe.SetBool("runner.build_tree", false)
	probe.SetBool("runner.trace", false)
	result, err := runGrammar(g, text, probe)
	if err != nil || result.Matched {
		return false
	}
	for _, e := range result.Errors {
		if e.Type == pegkit.ErrorType_InvalidInput && e.Start >= result.Input.Length() {
			return true
		}
	}
	return false
}
