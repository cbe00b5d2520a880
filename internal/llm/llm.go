package llm

import (
	"context"
	"fmt"

	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/prompt"
	"smart-diet-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// StructuredGenerator produces JSON text constrained to a schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *prompt.Schema) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Generator is a StructuredGenerator owning network resources.
type Generator interface {
	StructuredGenerator
	Closer
}

// New returns the generator selected by cfg.LLMProvider.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		return NewGroqClient(cfg), nil
	case config.ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
