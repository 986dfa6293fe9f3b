package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coachdomain "habitflow-backend/internal/coach/domain"
	coachdto "habitflow-backend/internal/coach/dto"
	"habitflow-backend/internal/push/domain"
	"habitflow-backend/internal/push/dto"
	"habitflow-backend/internal/push/usecase"
)

// Client is the HabitFlow push API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token is only needed for the send routes
// when the server runs with a sender secret.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// VAPIDPublicKey fetches the application server key clients subscribe with.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	var resp dto.PublicKeyResponse
	if err := c.get(ctx, "/api/vapid-public-key", &resp); err != nil {
		return "", fmt.Errorf("pushclient.VAPIDPublicKey: %w", err)
	}
	return resp.PublicKey, nil
}

// Subscribe registers (or rotates) a subscription and returns the server's total.
func (c *Client) Subscribe(ctx context.Context, sub *domain.Subscription) (int, error) {
	var resp dto.SubscribeResponse
	if err := c.post(ctx, "/api/subscribe", sub, &resp); err != nil {
		return 0, fmt.Errorf("pushclient.Subscribe: %w", err)
	}
	return resp.Total, nil
}

// Unsubscribe removes an endpoint. deleted is false when the server did not know it.
func (c *Client) Unsubscribe(ctx context.Context, endpoint string) (bool, error) {
	var resp dto.UnsubscribeResponse
	if err := c.post(ctx, "/api/unsubscribe", dto.UnsubscribeRequest{Endpoint: endpoint}, &resp); err != nil {
		return false, fmt.Errorf("pushclient.Unsubscribe: %w", err)
	}
	return resp.Deleted, nil
}

// Send broadcasts a notification to every registered device.
func (c *Client) Send(ctx context.Context, payload domain.Payload) (*dto.SendResponse, error) {
	var resp dto.SendResponse
	if err := c.post(ctx, "/api/send", payload, &resp); err != nil {
		return nil, fmt.Errorf("pushclient.Send: %w", err)
	}
	return &resp, nil
}

// SendCoach asks the server to write and broadcast a coaching nudge.
func (c *Client) SendCoach(ctx context.Context, req coachdomain.CoachRequest) (*coachdto.CoachResponse, error) {
	var resp coachdto.CoachResponse
	if err := c.post(ctx, "/api/send/coach", req, &resp); err != nil {
		return nil, fmt.Errorf("pushclient.SendCoach: %w", err)
	}
	return &resp, nil
}

// ListSubscriptions returns the redacted registration list.
func (c *Client) ListSubscriptions(ctx context.Context) (*dto.SubscriptionsResponse, error) {
	var resp dto.SubscriptionsResponse
	if err := c.get(ctx, "/api/subscriptions", &resp); err != nil {
		return nil, fmt.Errorf("pushclient.ListSubscriptions: %w", err)
	}
	return &resp, nil
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*usecase.HealthStatus, error) {
	var resp usecase.HealthStatus
	if err := c.get(ctx, "/health", &resp); err != nil {
		return nil, fmt.Errorf("pushclient.Health: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr dto.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
