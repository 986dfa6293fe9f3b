package ai

import (
	"context"
	"fmt"

	"habitflow-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config, read on every call so runtime settings take effect
	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// geminiGenerator adapts the raw Gemini client to TextGenerator
type geminiGenerator struct {
	svc *gemini.GeminiService
}

// NewGeminiGenerator wraps a Gemini client as a TextGenerator
func NewGeminiGenerator(svc *gemini.GeminiService) TextGenerator {
	return &geminiGenerator{svc: svc}
}

func (g *geminiGenerator) GenerateNotificationText(ctx context.Context, nc NotificationContext) (string, error) {
	if len(nc.PendingHabits) == 0 {
		return "", nil
	}
	text, err := g.svc.GenerateText(ctx, BuildNotificationPrompt(nc))
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}

// NewTextGenerator creates a TextGenerator based on the config.
// Switch AI provider by changing cfg.Provider; callers never see which one runs.
func NewTextGenerator(cfg Config) (TextGenerator, error) {
	ollama := func() *OllamaService {
		if cfg.GetOllamaBaseURL == nil || cfg.GetOllamaModel == nil {
			return NewOllamaService("", "")
		}
		return NewOllamaServiceWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)
	}

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiGenerator(gemini.NewGeminiService(cfg.GeminiAPIKey)), nil

	case ProviderOllama:
		return ollama(), nil

	case ProviderAuto, "":
		// Gemini first when a key is available, Ollama as the fallback
		var primary TextGenerator
		if cfg.GeminiAPIKey != "" {
			primary = NewGeminiGenerator(gemini.NewGeminiService(cfg.GeminiAPIKey))
		}
		return NewFallbackService(primary, ollama()), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
