// Package llm adapts hosted text-generation APIs to advisor.Completer.
package llm

import (
	"context"
	"fmt"

	"github.com/dvloznov/budget-advisor/internal/advisor"
	"github.com/dvloznov/budget-advisor/internal/config"
)

var (
	_ advisor.Completer = (*GeminiClient)(nil)
	_ advisor.Completer = (*AnthropicClient)(nil)
)

// New returns the completer for the provider selected in cfg.
func New(ctx context.Context, cfg *config.Config) (advisor.Completer, error) {
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case config.ProviderGemini, "":
		c, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, model, cfg.CompletionTimeout)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		return c, nil
	case config.ProviderAnthropic:
		c, err := NewAnthropicClient(cfg.AnthropicAPIKey, model, cfg.CompletionTimeout)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("New: unknown provider %q", cfg.LLMProvider)
	}
}
