package pushagent

import "habitflow-backend/internal/push/domain"

// Permission mirrors the browser's Notification.permission
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// State is what a UI renders. Permission is empty when push is unsupported.
type State struct {
	Checked      bool
	Supported    bool
	Permission   Permission
	Subscription *domain.Subscription
	IsLoading    bool
	Error        string
	IsIOS        bool
	IsStandalone bool
}

// Subscribed reports whether a subscription is active
func (s State) Subscribed() bool {
	return s.Subscription != nil
}

func (s State) clone() State {
	if s.Subscription != nil {
		sub := *s.Subscription
		if sub.ExpirationTime != nil {
			exp := *sub.ExpirationTime
			sub.ExpirationTime = &exp
		}
		s.Subscription = &sub
	}
	return s
}
