// Package ollama configures an AI provider for a local Ollama server through
// its OpenAI-compatible endpoint.
package ollama

import (
	"github.com/openai/openai-go/option"

	"github.com/kiranshivaraju/codereview/internal/ai/openai"
	"github.com/kiranshivaraju/codereview/internal/config"
)

// placeholderKey satisfies clients that insist on a key; Ollama ignores it.
const placeholderKey = "ollama"

func NewProvider(cfg config.OllamaConfig, opts ...option.RequestOption) *openai.Provider {
	return openai.NewProvider(openai.Config{
		Name:    "ollama",
		APIKey:  placeholderKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, opts...)
}
