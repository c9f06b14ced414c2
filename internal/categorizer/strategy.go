// Package categorizer assigns transactions to the closed category taxonomy.
//
// Categorization runs an ordered chain of strategies. The keyword strategy is
// always first; fuzzy and AI strategies are optional and only consulted when
// every earlier strategy found nothing.
package categorizer

import (
	"context"
	"strings"
	"unicode"

	"fjacquet/fatura-extractor/internal/patterns"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Strategy is one way of mapping a description to a category name.
type Strategy interface {
	// Categorize returns the category for description and whether one was found.
	Categorize(ctx context.Context, description string) (string, bool, error)
	// Name identifies the strategy in logs.
	Name() string
}

// Taxonomy is the ordered, closed list of categories.
type Taxonomy []patterns.Category

// Names returns the category names in priority order.
func (t Taxonomy) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the canonical name of category, matching case and accents
// loosely. The boolean is false when category is not part of the taxonomy.
func (t Taxonomy) Lookup(category string) (string, bool) {
	want := fold(strings.TrimSpace(category))
	if want == "" {
		return "", false
	}
	for _, c := range t {
		if fold(c.Name) == want {
			return c.Name, true
		}
	}
	return "", false
}

// fold lower-cases s and strips combining accents so "Sacolão" and "SACOLAO"
// compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
