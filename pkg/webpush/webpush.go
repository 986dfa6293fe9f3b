package webpush

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

// ErrEndpointGone is matched (errors.Is) when the push service reports that the
// endpoint no longer exists (404 / 410). Such endpoints should be pruned.
var ErrEndpointGone = errors.New("push endpoint gone")

// StatusError is a non-2xx response from a push service
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("push service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("push service returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrEndpointGone && (e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone)
}

// Subscription identifies the endpoint and key material of one receiver
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Options configures a Client
type Options struct {
	PublicKey  string
	PrivateKey string
	// Subscriber is the contact identity: a mailto: address or https URL
	Subscriber string
	TTL        time.Duration
	Timeout    time.Duration
	// HTTPClient overrides the default client (tests)
	HTTPClient *http.Client
}

// Client sends VAPID-signed, encrypted Web Push messages
type Client struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	httpClient *http.Client
}

// NewClient creates a Web Push client with a process-wide signing identity
func NewClient(opts Options) (*Client, error) {
	if opts.PublicKey == "" || opts.PrivateKey == "" {
		return nil, fmt.Errorf("VAPID key pair is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ttl := int(opts.TTL / time.Second)
	if ttl <= 0 {
		ttl = 60 * 60 * 24
	}

	return &Client{
		publicKey:  opts.PublicKey,
		privateKey: opts.PrivateKey,
		// webpush-go adds the mailto: scheme itself
		subscriber: strings.TrimPrefix(opts.Subscriber, "mailto:"),
		ttl:        ttl,
		httpClient: httpClient,
	}, nil
}

// Send encrypts message for sub and posts it to the push service.
// A 404/410 response yields an error matching ErrEndpointGone.
func (c *Client) Send(ctx context.Context, sub Subscription, message []byte) error {
	resp, err := webpushgo.SendNotificationWithContext(ctx, message, &webpushgo.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpushgo.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpushgo.Options{
		HTTPClient:      c.httpClient,
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.publicKey,
		VAPIDPrivateKey: c.privateKey,
		TTL:             c.ttl,
		Urgency:         webpushgo.UrgencyNormal,
	})
	if err != nil {
		return fmt.Errorf("failed to send web push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
