package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dvloznov/budget-advisor/internal/logger"
)

const anthropicMaxTokens = 4096

// messageCreator is the subset of anthropic.MessageService the client uses.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicClient completes prompts with a Claude model.
type AnthropicClient struct {
	messages messageCreator
	model    string
	timeout  time.Duration
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(apiKey, model string, timeout time.Duration) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewAnthropicClient: API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		messages: &client.Messages,
		model:    model,
		timeout:  timeout,
	}, nil
}

// Complete sends prompt as a single user message and returns the first text
// block of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	message, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Complete: create message: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			log.Debug().
				Str("provider", "anthropic").
				Str("model", c.model).
				Int("prompt_chars", len(prompt)).
				Int64("tokens_in", message.Usage.InputTokens).
				Int64("tokens_out", message.Usage.OutputTokens).
				Dur("latency", time.Since(start)).
				Msg("Completion finished")
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("Complete: no text content in response")
}
