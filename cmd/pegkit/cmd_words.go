package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clarete/pegkit"
)

type wordHit struct {
	word string
	pos  pegkit.Position
}

func newWordsCmd(opts *options) *cobra.Command {
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   "words <word-list> [file]",
		Short: "Find the longest words of a list within a file or stdin",
		Long: `Scan a file, or stdin, for the words of a list, one word per line.
At every position the longest word found wins and scanning resumes after
it.  Empty lines and lines starting with # are ignored.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trie, err := loadWords(args[0])
			if err != nil {
				return err
			}
			text, err := readSource(args[1:])
			if err != nil {
				return err
			}
			hits, err := findWords(trie, ignoreCase, text, opts.cfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, h := range hits {
				fmt.Fprintf(w, "%s\t%s\n", h.pos, h.word)
			}
			fmt.Fprintf(w, "%d matches, %d words, longest has %d characters\n", len(hits), trie.Size(), trie.MaxLength())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "match words in any case")

	return cmd
}

func loadWords(path string) (*pegkit.Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	b := pegkit.NewTrieBuilder()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if err := b.AddWord(word); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build()
}

// findWords runs a grammar that either matches a word of `trie` or
// skips one character, until the end of the input.
func findWords(trie *pegkit.Trie, ignoreCase bool, text string, cfg *pegkit.Config) ([]wordHit, error) {
	words := pegkit.TrieMatcher(trie)
	if ignoreCase {
		words = pegkit.CaseInsensitiveTrieMatcher(trie)
	}
	hit := pegkit.Action(func(ctx *pegkit.Context) (bool, error) {
		ctx.Stack().Push(wordHit{
			word: ctx.Match(),
			pos:  ctx.Input().Position(ctx.MatchStart()),
		})
		return true, nil
	})
	g := pegkit.Sequence(
		pegkit.ZeroOrMore(pegkit.FirstOf(pegkit.Sequence(words, hit), pegkit.Any())),
		pegkit.EndOfInput(),
	)

	result := pegkit.NewParseRunner(g, cfg).Run(text)
	if !result.Matched {
		return nil, fmt.Errorf("%s", result.PrintErrors())
	}
	values := result.ValueStack.Values()
	hits := make([]wordHit, len(values))
	for i, v := range values {
		// the stack lists the last hit first
		hits[len(values)-1-i] = v.(wordHit)
	}
	return hits, nil
}
