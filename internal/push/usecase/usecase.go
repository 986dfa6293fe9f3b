package usecase

import (
	"context"
	"time"

	"habitflow-backend/internal/push/domain"
	"habitflow-backend/pkg/webpush"
)

// RegistrationUsecase is the transport-agnostic registration API
type RegistrationUsecase interface {
	// Subscribe stores or rotates a subscription and returns the new total
	Subscribe(ctx context.Context, sub *domain.Subscription) (int, error)

	// Unsubscribe removes an endpoint. Unknown endpoints succeed with deleted=false.
	Unsubscribe(ctx context.Context, endpoint string) (deleted bool, total int, err error)

	// ListRegistrations returns redacted summaries, never key material
	ListRegistrations(ctx context.Context) ([]domain.RegistrationSummary, error)

	// SigningPublicKey returns the VAPID public key clients subscribe with
	SigningPublicKey() string

	// Health reports liveness and the current subscription count
	Health(ctx context.Context) (*HealthStatus, error)
}

// DeliveryUsecase fans a payload out to every stored subscription
type DeliveryUsecase interface {
	// Deliver fails only on payload validation or when the store cannot be read.
	// Per-endpoint failures are reported in the result.
	Deliver(ctx context.Context, payload domain.Payload) (*domain.DeliveryResult, error)
}

// Sender delivers one encrypted message to one endpoint.
// Implemented by *webpush.Client.
type Sender interface {
	Send(ctx context.Context, sub webpush.Subscription, message []byte) error
}

// HealthStatus is the body of the health check
type HealthStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Subscriptions int       `json:"subscriptions"`
}
