// Package ai talks to the text-generation model that writes meal plans.
package ai

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/config"
)

// Oracle turns a prompt into free-form text.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("model returned no text")

// New returns the oracle selected by cfg.AIProvider, or nil when that
// provider has no API key.
func New(cfg *config.Config) Oracle {
	if !cfg.AIConfigured() {
		return nil
	}
	if cfg.AIProvider == config.ProviderOpenAI {
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel, cfg.AITimeout)
}
