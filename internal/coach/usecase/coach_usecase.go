package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"habitflow-backend/internal/coach/domain"
	pushdomain "habitflow-backend/internal/push/domain"
	pushusecase "habitflow-backend/internal/push/usecase"
	"habitflow-backend/pkg/ai"
)

// CoachUsecase turns pending habits into an AI-written push notification
type CoachUsecase interface {
	Nudge(ctx context.Context, req domain.CoachRequest) (*domain.CoachResult, error)
}

type coachUsecase struct {
	generator ai.TextGenerator
	delivery  pushusecase.DeliveryUsecase
	now       func() time.Time
}

// NewCoachUsecase creates a coaching usecase. generator may be nil, in which
// case every Nudge fails with domain.ErrNoGenerator.
func NewCoachUsecase(generator ai.TextGenerator, delivery pushusecase.DeliveryUsecase) CoachUsecase {
	return &coachUsecase{
		generator: generator,
		delivery:  delivery,
		now:       time.Now,
	}
}

func (u *coachUsecase) Nudge(ctx context.Context, req domain.CoachRequest) (*domain.CoachResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if u.generator == nil {
		return nil, domain.ErrNoGenerator
	}

	text, err := u.generator.GenerateNotificationText(ctx, ai.NotificationContext{
		UserName:      req.UserName,
		PendingHabits: req.PendingHabits,
		Now:           u.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate notification text: %w", err)
	}
	if text == "" {
		log.Printf("[Coach] Provider returned no text for %d pending habit(s), skipping", len(req.PendingHabits))
		return &domain.CoachResult{Skipped: true}, nil
	}

	result, err := u.delivery.Deliver(ctx, pushdomain.Payload{
		Title: domain.DefaultTitle,
		Body:  text,
		URL:   req.URL,
		Tag:   req.Tag,
	})
	if err != nil {
		return nil, err
	}

	return &domain.CoachResult{Text: text, Delivery: result}, nil
}
