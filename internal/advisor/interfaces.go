package advisor

import "context"

// Completer sends one prompt to a text-generation service and returns the raw
// response text. Implementations must be safe for concurrent use.
//
//go:generate mockgen -destination=mocks/mock_completer.go -source=interfaces.go Completer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f(ctx, prompt).
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
