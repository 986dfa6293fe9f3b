package pushagent

import (
	"context"

	"habitflow-backend/internal/push/domain"
)

// NotificationOptions are the display options of a local notification
type NotificationOptions struct {
	Body    string
	Icon    string
	Badge   string
	Tag     string
	Vibrate []int
}

// Platform is the browser side of push: service worker, PushManager and
// the Notification API.
type Platform interface {
	// Supported reports whether service workers, PushManager and Notification all exist
	Supported() bool
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)

	// GetSubscription returns the current subscription, or nil when there is none
	GetSubscription(ctx context.Context) (*domain.Subscription, error)
	// Subscribe creates a user-visible subscription bound to applicationServerKey
	Subscribe(ctx context.Context, applicationServerKey []byte) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, sub *domain.Subscription) error

	ShowNotification(title string, opts NotificationOptions) error

	IsIOS() bool
	// IsStandalone reports whether the app runs installed to the home screen.
	// iOS only delivers push to installed apps.
	IsStandalone() bool
}

// Backend is the registration API. Implemented by *pushclient.Client.
type Backend interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	Subscribe(ctx context.Context, sub *domain.Subscription) (int, error)
	Unsubscribe(ctx context.Context, endpoint string) (bool, error)
}
