package ai

import (
	"context"
	"time"
)

// NotificationContext is what a provider knows when writing a coaching notification
type NotificationContext struct {
	UserName      string
	PendingHabits []string
	Now           time.Time
}

// TextGenerator produces short, human-readable notification copy.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type TextGenerator interface {
	// GenerateNotificationText returns the notification body. An empty string
	// means the provider had nothing worth sending.
	GenerateNotificationText(ctx context.Context, nc NotificationContext) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
