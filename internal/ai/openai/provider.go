// Package openai implements models.AIProvider on top of the OpenAI chat
// completions API. Any server speaking that API (Ollama, vLLM) can be used by
// pointing BaseURL at it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kiranshivaraju/codereview/internal/ai/prompt"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// Config selects the endpoint and sampling settings for a Provider.
type Config struct {
	// Name is reported by Provider.Name; defaults to "openai".
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Provider implements models.AIProvider using an OpenAI-compatible API.
type Provider struct {
	client      oai.Client
	name        string
	model       string
	maxTokens   int64
	temperature float64
}

// NewProvider builds a provider. Extra request options are applied after the
// ones derived from cfg.
func NewProvider(cfg Config, opts ...option.RequestOption) *Provider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	p := &Provider{
		client:      oai.NewClient(reqOpts...),
		name:        cfg.Name,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
	if p.name == "" {
		p.name = "openai"
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}
	if p.temperature <= 0 {
		p.temperature = defaultTemperature
	}
	return p
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

func (p *Provider) Suggest(ctx context.Context, req models.SuggestRequest) (string, error) {
	return p.complete(ctx, prompt.Suggest(req.Issues, req.Revisit))
}

func (p *Provider) Refactor(ctx context.Context, req models.RefactorRequest) (string, error) {
	return p.complete(ctx, prompt.Refactor(req.Source, req.Suggestions, req.Revisit))
}

func (p *Provider) complete(ctx context.Context, text string) (string, error) {
	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    []oai.ChatCompletionMessageParamUnion{oai.UserMessage(text)},
		MaxTokens:   oai.Int(p.maxTokens),
		Temperature: oai.Float(p.temperature),
	})
	if err != nil {
		return "", classifyError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", models.ErrInvalidResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty completion", models.ErrInvalidResponse)
	}

	slog.DebugContext(ctx, "chat completion finished",
		"provider", p.name,
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return content, nil
}

// classifyError maps client errors onto the provider sentinels.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat completion: %w", err)
	}

	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 408 || apiErr.StatusCode == 504 {
			return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: status %d: %v", models.ErrProviderUnavailable, apiErr.StatusCode, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

var _ models.AIProvider = (*Provider)(nil)
