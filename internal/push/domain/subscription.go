package domain

import "strings"

// Keys holds the client-generated key material of a push subscription
type Keys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is one browser push endpoint (W3C PushSubscription.toJSON shape).
// Endpoint is the primary key: re-subscribing with the same endpoint replaces the keys.
type Subscription struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime *int64 `json:"expirationTime"`
	Keys           Keys   `json:"keys"`
}

// Validate checks that the fields required for encrypted delivery are present
func (s *Subscription) Validate() error {
	if s == nil || strings.TrimSpace(s.Endpoint) == "" {
		return NewValidationError("endpoint", "endpoint is required")
	}
	if strings.TrimSpace(s.Keys.P256dh) == "" {
		return NewValidationError("keys.p256dh", "keys.p256dh is required")
	}
	if strings.TrimSpace(s.Keys.Auth) == "" {
		return NewValidationError("keys.auth", "keys.auth is required")
	}
	return nil
}

// RegistrationSummary is the redacted view of a subscription exposed by the debug listing
type RegistrationSummary struct {
	EndpointPrefix string `json:"endpointPrefix"`
}

// EndpointPrefix shortens an endpoint for logs and listings. Key material is never included.
func EndpointPrefix(endpoint string, n int) string {
	if len(endpoint) <= n {
		return endpoint
	}
	return endpoint[:n] + "..."
}
