package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/budget-advisor/internal/logger"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient completes prompts with a Gemini model.
type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClient: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}

	return &GeminiClient{
		models:  client.Models,
		model:   model,
		timeout: timeout,
	}, nil
}

// Complete sends prompt as a single user turn and returns the response text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Complete: generate content: %w", err)
	}

	text := resp.Text()
	log.Debug().
		Str("provider", "gemini").
		Str("model", c.model).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(text)).
		Dur("latency", time.Since(start)).
		Msg("Completion finished")

	if text == "" {
		return "", fmt.Errorf("Complete: empty response from model")
	}
	return text, nil
}
