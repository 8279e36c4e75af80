package llm

import "context"

// GenerateOptions carries the per-call generation settings. They are read
// from runtime config on every call so admin edits take effect immediately.
type GenerateOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	System      string
}

// TextGenerator produces a completion for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, opts GenerateOptions, prompt string) (string, error)
}

// Embedder turns text into vectors
type Embedder interface {
	// EmbedTexts embeds a batch of texts in one request, preserving order
	EmbedTexts(ctx context.Context, model string, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string
	EmbedQuery(ctx context.Context, model string, text string) ([]float32, error)
}
