package repository

import (
	"context"

	"habitflow-backend/internal/push/domain"
)

// SubscriptionRepository is the durable store of push subscriptions keyed by endpoint
type SubscriptionRepository interface {
	// Load rebuilds the index from durable storage. A missing or unreadable
	// resource yields an empty store, not an error.
	Load(ctx context.Context) error

	// Upsert validates and inserts or replaces a subscription, persisting before it returns
	Upsert(ctx context.Context, sub *domain.Subscription) error

	// Remove deletes by endpoint and reports whether anything was deleted.
	// Removing an unknown endpoint is a no-op.
	Remove(ctx context.Context, endpoint string) (bool, error)

	// All returns a point-in-time snapshot in no particular order
	All(ctx context.Context) ([]domain.Subscription, error)

	// Count returns the current number of subscriptions
	Count(ctx context.Context) (int, error)
}
