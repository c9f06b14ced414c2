package categorizer

import (
	"context"

	"fjacquet/fatura-extractor/internal/logging"
	"fjacquet/fatura-extractor/internal/patterns"
)

// Options selects the optional strategies.
type Options struct {
	Fuzzy bool
	// AI enables the AI strategy when non-nil.
	AI AIClient
}

// Categorizer runs its strategies in order and returns the first hit.
// It is safe for concurrent use as long as its strategies are.
type Categorizer struct {
	strategies []Strategy
	logger     logging.Logger
}

// New builds a Categorizer from explicit strategies.
func New(logger logging.Logger, strategies ...Strategy) *Categorizer {
	return &Categorizer{strategies: strategies, logger: logging.OrDefault(logger)}
}

// NewFromRegistry builds the keyword strategy from the registry taxonomy and
// appends the optional strategies enabled in opts.
func NewFromRegistry(reg *patterns.Registry, opts Options, logger logging.Logger) *Categorizer {
	taxonomy := Taxonomy(reg.Categories())
	strategies := []Strategy{NewKeywordStrategy(taxonomy)}
	if opts.Fuzzy {
		strategies = append(strategies, NewFuzzyStrategy(taxonomy))
	}
	if opts.AI != nil {
		strategies = append(strategies, NewAIStrategy(opts.AI, taxonomy))
	}
	return New(logger, strategies...)
}

// Strategies returns the strategy names in evaluation order.
func (c *Categorizer) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Categorize returns the category for description. Strategy errors are
// logged and treated as a miss.
func (c *Categorizer) Categorize(ctx context.Context, description string) (string, bool) {
	for _, s := range c.strategies {
		category, found, err := s.Categorize(ctx, description)
		if err != nil {
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F(logging.FieldStrategy, s.Name()),
				logging.F(logging.FieldDescription, description))
			continue
		}
		if found {
			c.logger.Debug("Transaction categorized",
				logging.F(logging.FieldStrategy, s.Name()),
				logging.F(logging.FieldDescription, description),
				logging.F(logging.FieldCategory, category))
			return category, true
		}
	}
	return "", false
}
