package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/codereview/internal/ai/ollama"
	"github.com/kiranshivaraju/codereview/internal/ai/openai"
	"github.com/kiranshivaraju/codereview/internal/ai/vllm"
	"github.com/kiranshivaraju/codereview/internal/config"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		}), nil
	case "none":
		return DisabledProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, ollama, vllm, none", cfg.Provider)
	}
}

// DisabledProvider is used when no AI backend is configured. Every call fails
// with ErrProviderDisabled, so reviews rely on the heuristic rewrite alone.
type DisabledProvider struct{}

func (DisabledProvider) Name() string  { return "none" }
func (DisabledProvider) Model() string { return "" }

func (DisabledProvider) Suggest(context.Context, models.SuggestRequest) (string, error) {
	return "", ErrProviderDisabled
}

func (DisabledProvider) Refactor(context.Context, models.RefactorRequest) (string, error) {
	return "", ErrProviderDisabled
}

var _ models.AIProvider = DisabledProvider{}
