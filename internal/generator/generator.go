package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/lingo-digest-bot/internal/config"
	"github.com/kapu/lingo-digest-bot/pkg/errors"
)

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// ResolveBackend picks the backend to use from configuration. An explicit
// backend wins; otherwise the first configured key is used, OpenAI first.
func ResolveBackend(gen config.GeneratorConfig, openaiKey, geminiKey string) (string, error) {
	switch gen.Backend {
	case BackendOpenAI:
		if openaiKey == "" {
			return "", errors.NewContentGenerationError("OPENAI_API_KEY is required for the openai backend", BackendOpenAI, "setup", nil)
		}
		return BackendOpenAI, nil
	case BackendGemini:
		if geminiKey == "" {
			return "", errors.NewContentGenerationError("GEMINI_API_KEY is required for the gemini backend", BackendGemini, "setup", nil)
		}
		return BackendGemini, nil
	case "":
	default:
		return "", errors.NewContentGenerationError(fmt.Sprintf("unknown generator backend %q", gen.Backend), gen.Backend, "setup", nil)
	}

	switch {
	case openaiKey != "":
		return BackendOpenAI, nil
	case geminiKey != "":
		return BackendGemini, nil
	}
	return "", errors.NewContentGenerationError("no text generation backend configured (set OPENAI_API_KEY or GEMINI_API_KEY)", "", "setup", nil)
}

// NewTextGenerator builds the configured backend once at startup.
func NewTextGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (TextGenerator, error) {
	backend, err := ResolveBackend(cfg.Generator, cfg.OpenAI.APIKey, cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendOpenAI:
		logger.Info("Text generation backend selected", zap.String("backend", backend), zap.String("model", cfg.OpenAI.Model))
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger), nil
	default:
		provider, err := NewGeminiSessionProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			return nil, errors.NewContentGenerationError("failed to create Gemini client", BackendGemini, "setup", err)
		}
		logger.Info("Text generation backend selected", zap.String("backend", backend), zap.String("model", cfg.Gemini.Model))
		return provider, nil
	}
}
