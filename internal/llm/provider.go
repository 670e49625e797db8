package llm

import (
	"context"

	"github.com/athorburn/concordia/internal/model"
)

// Request is one generation call. Prompts always instruct the model to
// answer with a single JSON object; the structured-call layer enforces it.
type Request struct {
	// System is the system-role instruction
	System string

	// Prompt is the user-role content
	Prompt string

	// Temperature overrides the configured default when >= 0
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// Provider is the generation collaborator. Implementations are stateless
// across calls; any non-determinism comes from the underlying model, not
// from the provider.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate issues one completion call and returns the raw response text
	Generate(ctx context.Context, req Request) (string, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// NewProvider creates a provider from configuration
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, &UnknownProviderError{Name: cfg.Provider}
	}
}

// UnknownProviderError is returned for providers outside the supported set
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return "unknown LLM provider: " + e.Name + " (supported: openai, mock)"
}
