package categorizer

import "context"

// AIClient suggests a category for a description, choosing from categories.
// An empty suggestion means the model could not decide.
type AIClient interface {
	Suggest(ctx context.Context, description string, categories []string) (string, error)
}
