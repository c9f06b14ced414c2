// Package normalizer cleans raw transaction descriptions.
package normalizer

import (
	"sort"
	"strings"

	"fjacquet/fatura-extractor/internal/patterns"
)

// Normalizer strips trailing location tokens, collapses whitespace and applies
// the literal override table. It is safe for concurrent use.
type Normalizer struct {
	trailing  [][]string
	overrides []patterns.Override
}

// New builds a Normalizer from the registry location lists and overrides.
func New(reg *patterns.Registry) *Normalizer {
	return NewWith(reg.Countries(), reg.Cities(), reg.Overrides())
}

// NewWith builds a Normalizer from explicit lists. Tokens are matched
// case-insensitively on whole words.
func NewWith(countries, cities []string, overrides []patterns.Override) *Normalizer {
	n := &Normalizer{overrides: append([]patterns.Override(nil), overrides...)}
	for _, tok := range append(append([]string(nil), countries...), cities...) {
		if words := strings.Fields(strings.ToUpper(tok)); len(words) > 0 {
			n.trailing = append(n.trailing, words)
		}
	}
	// Multi-word names first so "RIO DE JANEIRO" wins over a shorter token.
	sort.SliceStable(n.trailing, func(i, j int) bool {
		return len(n.trailing[i]) > len(n.trailing[j])
	})
	return n
}

// Normalize returns the cleaned description. Trailing tokens are removed
// repeatedly, so a description made only of location tokens ("SAO PAULO BR")
// normalizes to the empty string and the caller drops it.
func (n *Normalizer) Normalize(raw string) string {
	words := strings.Fields(raw)
	for len(words) > 0 {
		cut := n.trailingMatch(words)
		if cut == 0 {
			break
		}
		words = words[:len(words)-cut]
	}

	s := strings.Join(words, " ")
	for _, o := range n.overrides {
		s = strings.ReplaceAll(s, o.Match, o.Replace)
	}
	return strings.Join(strings.Fields(s), " ")
}

// trailingMatch returns how many words at the end of words form a known
// location token, or zero.
func (n *Normalizer) trailingMatch(words []string) int {
	for _, tok := range n.trailing {
		if len(tok) > len(words) {
			continue
		}
		tail := words[len(words)-len(tok):]
		match := true
		for i := range tok {
			if strings.ToUpper(tail[i]) != tok[i] {
				match = false
				break
			}
		}
		if match {
			return len(tok)
		}
	}
	return 0
}
