package pegkit

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrEmptyWord = errors.New("trie words can't be empty")
	ErrEmptyTrie = errors.New("trie needs at least one word")
)

// TrieBuilder collects the words of a Trie.
type TrieBuilder struct {
	words map[string]struct{}
}

func NewTrieBuilder() *TrieBuilder {
	return &TrieBuilder{words: make(map[string]struct{})}
}

// AddWord adds `word` to the trie.  Adding the same word twice has no
// effect.
func (b *TrieBuilder) AddWord(word string) error {
	if word == "" {
		return ErrEmptyWord
	}
	b.words[word] = struct{}{}
	return nil
}

// Build creates an immutable Trie out of the words added so far.
func (b *TrieBuilder) Build() (*Trie, error) {
	if len(b.words) == 0 {
		return nil, ErrEmptyTrie
	}
	words := make([]string, 0, len(b.words))
	for w := range b.words {
		words = append(words, w)
	}
	slices.Sort(words)
	return newTrie(words), nil
}

// Trie is a prefix tree over a set of words, used to match the
// longest of them at a given position.
type Trie struct {
	root      *trieNode
	words     []string
	maxLength int
}

// trieNode keeps its transitions sorted by character so they can be
// binary searched.
type trieNode struct {
	word  bool
	chars []rune
	next  []*trieNode
}

// trieDraft is the mutable version of trieNode used while inserting
type trieDraft struct {
	word bool
	next map[rune]*trieDraft
}

func newTrie(words []string) *Trie {
	t := &Trie{words: words}
	root := &trieDraft{}
	for _, w := range words {
		chars := []rune(w)
		t.maxLength = max(t.maxLength, len(chars))
		node := root
		for _, c := range chars {
			if node.next == nil {
				node.next = make(map[rune]*trieDraft)
			}
			child, ok := node.next[c]
			if !ok {
				child = &trieDraft{}
				node.next[c] = child
			}
			node = child
		}
		node.word = true
	}
	t.root = root.freeze()
	return t
}

func (d *trieDraft) freeze() *trieNode {
	n := &trieNode{word: d.word}
	for c := range d.next {
		n.chars = append(n.chars, c)
	}
	slices.Sort(n.chars)
	n.next = make([]*trieNode, len(n.chars))
	for i, c := range n.chars {
		n.next[i] = d.next[c].freeze()
	}
	return n
}

// Words returns the words of the trie in lexicographic order
func (t *Trie) Words() []string { return slices.Clone(t.words) }

// Size returns the number of words
func (t *Trie) Size() int { return len(t.words) }

// MaxLength returns the length, in characters, of the longest word
func (t *Trie) MaxLength() int { return t.maxLength }

// Search returns the length of the longest word found at `index` in
// `input`, or -1 when no word is found there.  With `ignoreCase` set,
// input characters are lower cased before being looked up.
func (t *Trie) Search(input InputBuffer, index int, ignoreCase bool) int {
	found := -1
	node := t.root
	for i := 0; ; i++ {
		if node.word {
			found = i
		}
		c := input.CharAt(index + i)
		if c == EOI {
			break
		}
		if ignoreCase {
			c = unicode.ToLower(c)
		}
		j, ok := slices.BinarySearch(node.chars, c)
		if !ok {
			break
		}
		node = node.next[j]
	}
	return found
}

func (t *Trie) lowered() *Trie {
	seen := make(map[string]struct{}, len(t.words))
	words := make([]string, 0, len(t.words))
	for _, w := range t.words {
		lw := strings.Map(unicode.ToLower, w)
		if _, ok := seen[lw]; ok {
			continue
		}
		seen[lw] = struct{}{}
		words = append(words, lw)
	}
	slices.Sort(words)
	return newTrie(words)
}

// ---- Matchers ----

type trieMatcher struct {
	baseMatcher
	trie       *Trie
	ignoreCase bool
}

// TrieMatcher matches the longest word of `t` found at the current
// index.
func TrieMatcher(t *Trie) Matcher {
	if t == nil {
		grammarErrorf("nil trie")
	}
	return &trieMatcher{terminal(MatcherKind_Trie, trieLabel(t.words)), t, false}
}

// CaseInsensitiveTrieMatcher is TrieMatcher ignoring case, both in
// the words of `t` and in the input.
func CaseInsensitiveTrieMatcher(t *Trie) Matcher {
	if t == nil {
		grammarErrorf("nil trie")
	}
	return &trieMatcher{terminal(MatcherKind_Trie, trieLabel(t.words)+"i"), t.lowered(), true}
}

// TrieOf builds a trie out of `words` and matches the longest of them
// found at the current index.  The order of the words is irrelevant.
func TrieOf(words ...string) Matcher { return TrieMatcher(mustBuildTrie(words)) }

// TrieOfIgnoreCase is TrieOf ignoring case.
func TrieOfIgnoreCase(words ...string) Matcher {
	return CaseInsensitiveTrieMatcher(mustBuildTrie(words))
}

// LongestString is an alias of TrieOf that reads better when used in
// place of a FirstOf of strings.
func LongestString(words ...string) Matcher { return TrieOf(words...) }

func mustBuildTrie(words []string) *Trie {
	b := NewTrieBuilder()
	for _, w := range words {
		if err := b.AddWord(w); err != nil {
			grammarErrorf("%s", err)
		}
	}
	t, err := b.Build()
	if err != nil {
		grammarErrorf("%s", err)
	}
	return t
}

const trieLabelWords = 5

func trieLabel(words []string) string {
	quoted := make([]string, 0, trieLabelWords+1)
	for i, w := range words {
		if i == trieLabelWords {
			quoted = append(quoted, "...")
			break
		}
		quoted = append(quoted, strconv.Quote(w))
	}
	return "(" + strings.Join(quoted, "|") + ")"
}

func (m *trieMatcher) Match(ctx *Context) bool {
	n := m.trie.Search(ctx.Input(), ctx.current, m.ignoreCase)
	if n < 0 {
		return false
	}
	ctx.AdvanceIndex(n)
	return true
}
