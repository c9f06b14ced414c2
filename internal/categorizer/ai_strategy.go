package categorizer

import (
	"context"
	"strings"

	"fjacquet/fatura-extractor/internal/parsererror"
)

// AIStrategy delegates to an AIClient and accepts only answers that belong
// to the taxonomy.
type AIStrategy struct {
	client   AIClient
	taxonomy Taxonomy
}

// NewAIStrategy wraps client.
func NewAIStrategy(client AIClient, taxonomy Taxonomy) *AIStrategy {
	return &AIStrategy{client: client, taxonomy: taxonomy}
}

func (s *AIStrategy) Name() string { return "ai" }

func (s *AIStrategy) Categorize(ctx context.Context, description string) (string, bool, error) {
	if s.client == nil || strings.TrimSpace(description) == "" {
		return "", false, nil
	}
	suggestion, err := s.client.Suggest(ctx, description, s.taxonomy.Names())
	if err != nil {
		return "", false, &parsererror.CategorizationError{Description: description, Strategy: s.Name(), Err: err}
	}
	name, ok := s.taxonomy.Lookup(suggestion)
	if !ok {
		return "", false, nil
	}
	return name, true, nil
}
