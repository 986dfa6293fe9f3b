package domain

import (
	"errors"
	"strings"

	pushdomain "habitflow-backend/internal/push/domain"
)

// DefaultTitle is the title of every coaching notification
const DefaultTitle = "HabitFlow"

// ErrNoGenerator is returned when no text provider is configured
var ErrNoGenerator = errors.New("no notification text provider configured")

// CoachRequest asks for an AI-written nudge about the habits still pending today
type CoachRequest struct {
	UserName      string   `json:"userName"`
	PendingHabits []string `json:"pendingHabits"`
	URL           string   `json:"url,omitempty"`
	Tag           string   `json:"tag,omitempty"`
}

// Validate trims names and drops blank habits in place
func (r *CoachRequest) Validate() error {
	r.UserName = strings.TrimSpace(r.UserName)
	if r.UserName == "" {
		return pushdomain.NewValidationError("userName", "userName is required")
	}

	habits := make([]string, 0, len(r.PendingHabits))
	for _, h := range r.PendingHabits {
		if h = strings.TrimSpace(h); h != "" {
			habits = append(habits, h)
		}
	}
	if len(habits) == 0 {
		return pushdomain.NewValidationError("pendingHabits", "at least one pending habit is required")
	}
	r.PendingHabits = habits
	return nil
}

// CoachResult is what a coaching run produced
type CoachResult struct {
	Text     string
	Skipped  bool
	Delivery *pushdomain.DeliveryResult
}
