package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/fatura-extractor/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

const geminiPrompt = `You categorize Brazilian credit card transactions.
Answer with exactly one category name from this list, or NONE if none fits:
%s

Transaction description: %s`

// GeminiClient implements AIClient with the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	timeout time.Duration
	logger  logging.Logger
}

// GeminiOptions configures NewGeminiClient.
type GeminiOptions struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewGeminiClient connects to Gemini. The client must be closed with Close.
func NewGeminiClient(ctx context.Context, opts GeminiOptions, logger logging.Logger) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0)

	return &GeminiClient{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		timeout: opts.Timeout,
		logger:  logging.OrDefault(logger),
	}, nil
}

// Suggest asks the model for one of categories.
func (c *GeminiClient) Suggest(ctx context.Context, description string, categories []string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for gemini rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(geminiPrompt, strings.Join(categories, "\n"), description)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	answer := cleanAnswer(sb.String())

	c.logger.Debug("Gemini suggestion received",
		logging.F(logging.FieldDescription, description),
		logging.F(logging.FieldCategory, answer))

	if strings.EqualFold(answer, "NONE") {
		return "", nil
	}
	return answer, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(s, "`\"'. "))
}
