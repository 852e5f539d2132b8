// Package vllm configures an AI provider for a vLLM server.
package vllm

import (
	"github.com/openai/openai-go/option"

	"github.com/kiranshivaraju/codereview/internal/ai/openai"
	"github.com/kiranshivaraju/codereview/internal/config"
)

func NewProvider(cfg config.VLLMConfig, opts ...option.RequestOption) *openai.Provider {
	return openai.NewProvider(openai.Config{
		Name:    "vllm",
		APIKey:  "EMPTY",
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, opts...)
}
