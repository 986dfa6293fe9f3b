package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/internal/push/repository"
)

const listPrefixLen = 60

// registrationUsecase implements RegistrationUsecase
type registrationUsecase struct {
	repo      repository.SubscriptionRepository
	publicKey string
	now       func() time.Time
}

// NewRegistrationUsecase creates the registration API over repo.
// publicKey is the stable VAPID public key handed to clients.
func NewRegistrationUsecase(repo repository.SubscriptionRepository, publicKey string) RegistrationUsecase {
	return &registrationUsecase{
		repo:      repo,
		publicKey: publicKey,
		now:       time.Now,
	}
}

func (u *registrationUsecase) Subscribe(ctx context.Context, sub *domain.Subscription) (int, error) {
	if err := u.repo.Upsert(ctx, sub); err != nil {
		return 0, err
	}

	total, err := u.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	log.Printf("[Push] Subscription registered: %s (total: %d)", domain.EndpointPrefix(sub.Endpoint, listPrefixLen), total)
	return total, nil
}

func (u *registrationUsecase) Unsubscribe(ctx context.Context, endpoint string) (bool, int, error) {
	if strings.TrimSpace(endpoint) == "" {
		return false, 0, domain.NewValidationError("endpoint", "endpoint not provided")
	}

	deleted, err := u.repo.Remove(ctx, endpoint)
	if err != nil {
		return false, 0, err
	}

	total, err := u.repo.Count(ctx)
	if err != nil {
		return deleted, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if deleted {
		log.Printf("[Push] Subscription removed: %s (remaining: %d)", domain.EndpointPrefix(endpoint, listPrefixLen), total)
	} else {
		log.Printf("[Push] Unsubscribe for unknown endpoint (remaining: %d)", total)
	}
	return deleted, total, nil
}

func (u *registrationUsecase) ListRegistrations(ctx context.Context) ([]domain.RegistrationSummary, error) {
	subs, err := u.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	summaries := make([]domain.RegistrationSummary, 0, len(subs))
	for _, s := range subs {
		summaries = append(summaries, domain.RegistrationSummary{
			EndpointPrefix: domain.EndpointPrefix(s.Endpoint, listPrefixLen),
		})
	}
	return summaries, nil
}

func (u *registrationUsecase) SigningPublicKey() string {
	return u.publicKey
}

func (u *registrationUsecase) Health(ctx context.Context) (*HealthStatus, error) {
	total, err := u.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return &HealthStatus{
		Status:        "ok",
		Timestamp:     u.now().UTC(),
		Subscriptions: total,
	}, nil
}
