package categorizer

import (
	"context"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// Keywords shorter than this are too ambiguous for approximate matching.
	defaultFuzzyMinLength = 6
	defaultFuzzyDistance  = 1
)

// FuzzyStrategy tolerates single-character damage in description words,
// such as "SUPERMERCDO", by comparing each word with each keyword by
// Levenshtein distance.
type FuzzyStrategy struct {
	taxonomy    Taxonomy
	minLength   int
	maxDistance int
}

// NewFuzzyStrategy builds a FuzzyStrategy with the default thresholds.
func NewFuzzyStrategy(taxonomy Taxonomy) *FuzzyStrategy {
	return &FuzzyStrategy{taxonomy: taxonomy, minLength: defaultFuzzyMinLength, maxDistance: defaultFuzzyDistance}
}

func (s *FuzzyStrategy) Name() string { return "fuzzy" }

func (s *FuzzyStrategy) Categorize(_ context.Context, description string) (string, bool, error) {
	words := strings.Fields(fold(description))
	if len(words) == 0 {
		return "", false, nil
	}
	for _, c := range s.taxonomy {
		for _, kw := range c.Keywords {
			k := fold(kw)
			if len([]rune(k)) < s.minLength {
				continue
			}
			for _, w := range words {
				if fuzzy.LevenshteinDistance(w, k) <= s.maxDistance {
					return c.Name, true, nil
				}
			}
		}
	}
	return "", false, nil
}
