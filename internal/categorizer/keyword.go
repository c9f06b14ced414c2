package categorizer

import (
	"context"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// KeywordStrategy matches descriptions against every category keyword in a
// single Aho-Corasick pass. When keywords of several categories occur, the
// category listed first in the taxonomy wins.
type KeywordStrategy struct {
	taxonomy Taxonomy
	matcher  *ahocorasick.Matcher
	// owner maps a dictionary index to its category index.
	owner []int
}

// NewKeywordStrategy compiles the keyword automaton for taxonomy.
func NewKeywordStrategy(taxonomy Taxonomy) *KeywordStrategy {
	s := &KeywordStrategy{taxonomy: taxonomy}

	seen := make(map[string]bool)
	var dict [][]byte
	for ci, c := range taxonomy {
		for _, kw := range c.Keywords {
			k := fold(strings.TrimSpace(kw))
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			dict = append(dict, []byte(k))
			s.owner = append(s.owner, ci)
		}
	}
	if len(dict) > 0 {
		s.matcher = ahocorasick.NewMatcher(dict)
	}
	return s
}

func (s *KeywordStrategy) Name() string { return "keyword" }

func (s *KeywordStrategy) Categorize(_ context.Context, description string) (string, bool, error) {
	if s.matcher == nil || strings.TrimSpace(description) == "" {
		return "", false, nil
	}
	hits := s.matcher.MatchThreadSafe([]byte(fold(description)))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(s.owner) {
			continue
		}
		if ci := s.owner[idx]; best == -1 || ci < best {
			best = ci
		}
	}
	if best == -1 {
		return "", false, nil
	}
	return s.taxonomy[best].Name, true, nil
}
