package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"habitflow-backend/internal/push/repository"
	"habitflow-backend/internal/push/usecase"
	"habitflow-backend/pkg/webpush"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu   sync.Mutex
	errs map[string]error
	sent []string
}

func (s *stubSender) Send(ctx context.Context, sub webpush.Subscription, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub.Endpoint)
	return s.errs[sub.Endpoint]
}

func setupRouter(t *testing.T, sender *stubSender, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewFileSubscriptionRepository(filepath.Join(t.TempDir(), "subscriptions.json"))
	require.NoError(t, repo.Load(context.Background()))

	h := NewPushHandler(
		usecase.NewRegistrationUsecase(repo, "BPublicKey"),
		usecase.NewDeliveryEngine(repo, sender, 4),
	)

	r := gin.New()
	r.GET("/health", h.Health)
	api := r.Group("/api")
	api.POST("/subscribe", h.Subscribe)
	api.POST("/unsubscribe", h.Unsubscribe)
	api.POST("/send", SenderAuthMiddleware(secret), h.Send)
	api.GET("/subscriptions", h.ListSubscriptions)
	api.GET("/vapid-public-key", h.GetVAPIDPublicKey)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestSubscribeSendAndPruneScenario(t *testing.T) {
	sender := &stubSender{errs: map[string]error{
		"A": &webpush.StatusError{StatusCode: http.StatusGone},
	}}
	r := setupRouter(t, sender, "")

	code, body := doJSON(t, r, http.MethodPost, "/api/subscribe", `{"endpoint":"A","keys":{"p256dh":"abc","auth":"xyz"}}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["total"])

	code, body = doJSON(t, r, http.MethodPost, "/api/send", `{"title":"Hi","body":"Test"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["attempted"])
	assert.Equal(t, float64(0), stats["sent"])
	assert.Equal(t, float64(1), stats["failed"])
	assert.Equal(t, float64(0), stats["total"])
	assert.Equal(t, []string{"A"}, sender.sent)

	code, body = doJSON(t, r, http.MethodGet, "/api/subscriptions", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["count"])
}

func TestSubscribe_MissingFieldsIs400(t *testing.T) {
	r := setupRouter(t, &stubSender{}, "")

	for _, body := range []string{
		``,
		`{"endpoint":"A"}`,
		`{"endpoint":"A","keys":{"p256dh":"abc"}}`,
		`{"keys":{"p256dh":"abc","auth":"xyz"}}`,
	} {
		code, resp := doJSON(t, r, http.MethodPost, "/api/subscribe", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, false, resp["success"], body)
		assert.NotEmpty(t, resp["error"], body)
	}
}

func TestUnsubscribe(t *testing.T) {
	r := setupRouter(t, &stubSender{}, "")

	code, _ := doJSON(t, r, http.MethodPost, "/api/unsubscribe", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := doJSON(t, r, http.MethodPost, "/api/unsubscribe", `{"endpoint":"never-registered"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["deleted"])
	assert.Equal(t, float64(0), body["total"])

	doJSON(t, r, http.MethodPost, "/api/subscribe", `{"endpoint":"A","keys":{"p256dh":"abc","auth":"xyz"}}`)
	code, body = doJSON(t, r, http.MethodPost, "/api/unsubscribe", `{"endpoint":"A"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["deleted"])
}

func TestSend_MissingTitleIs400(t *testing.T) {
	sender := &stubSender{}
	r := setupRouter(t, sender, "")
	doJSON(t, r, http.MethodPost, "/api/subscribe", `{"endpoint":"A","keys":{"p256dh":"abc","auth":"xyz"}}`)

	code, body := doJSON(t, r, http.MethodPost, "/api/send", `{"body":"Test"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, sender.sent)
}

func TestSend_NoSubscriptions(t *testing.T) {
	r := setupRouter(t, &stubSender{}, "")

	code, body := doJSON(t, r, http.MethodPost, "/api/send", `{"title":"Hi","body":"Test"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No subscriptions registered", body["message"])
}

func TestSend_RequiresTokenWhenSecretSet(t *testing.T) {
	r := setupRouter(t, &stubSender{}, "s3cret")
	payload := `{"title":"Hi","body":"Test"}`

	code, _ := doJSON(t, r, http.MethodPost, "/api/send", payload)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/send", payload, "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, code)

	bad, err := IssueSenderToken("other", "ops", time.Minute)
	require.NoError(t, err)
	code, _ = doJSON(t, r, http.MethodPost, "/api/send", payload, "Authorization", "Bearer "+bad)
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, err := IssueSenderToken("s3cret", "ops", -time.Minute)
	require.NoError(t, err)
	code, _ = doJSON(t, r, http.MethodPost, "/api/send", payload, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, code)

	good, err := IssueSenderToken("s3cret", "ops", time.Minute)
	require.NoError(t, err)
	code, _ = doJSON(t, r, http.MethodPost, "/api/send", payload, "Authorization", "Bearer "+good)
	assert.Equal(t, http.StatusOK, code)
}

func TestPublicKeyAndHealth(t *testing.T) {
	r := setupRouter(t, &stubSender{}, "")

	code, body := doJSON(t, r, http.MethodGet, "/api/vapid-public-key", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BPublicKey", body["publicKey"])

	code, body = doJSON(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["subscriptions"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}
