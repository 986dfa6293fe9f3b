package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService routes to the primary provider and falls back to the
// secondary one on failure
type FallbackService struct {
	primary   TextGenerator
	secondary TextGenerator
}

// NewFallbackService creates a fallback service. Either provider may be nil.
func NewFallbackService(primary, secondary TextGenerator) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource_exhausted",
		"resource exhausted",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// GenerateNotificationText tries the primary provider, then the secondary
func (f *FallbackService) GenerateNotificationText(ctx context.Context, nc NotificationContext) (string, error) {
	var primaryErr error
	if f.primary != nil {
		text, err := f.primary.GenerateNotificationText(ctx, nc)
		if err == nil {
			return text, nil
		}
		primaryErr = err

		switch {
		case isQuotaError(err):
			log.Printf("[AI] Primary provider quota exhausted: %v, falling back", err)
		case isConnectionError(err):
			log.Printf("[AI] Primary provider unreachable: %v, falling back", err)
		default:
			log.Printf("[AI] Primary provider error: %v, falling back", err)
		}
	}

	if f.secondary != nil {
		text, err := f.secondary.GenerateNotificationText(ctx, nc)
		if err == nil {
			return text, nil
		}
		return "", fmt.Errorf("fallback provider failed: %w", err)
	}

	if primaryErr != nil {
		return "", primaryErr
	}
	return "", fmt.Errorf("no AI provider available for notification text")
}
