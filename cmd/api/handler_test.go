package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"habitflow-backend/internal/push/repository"
	pushUsecase "habitflow-backend/internal/push/usecase"
	"habitflow-backend/pkg/config"
	"habitflow-backend/pkg/webpush"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Send(ctx context.Context, sub webpush.Subscription, message []byte) error {
	return nil
}

func newTestRouter(t *testing.T, mutate func(cfg *config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	frontend := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(frontend, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "assets", "app.js"), []byte("console.log(1)"), 0o644))

	cfg := &config.Config{
		ClientURL:          "https://habitflow.example",
		FrontendPath:       frontend,
		AIProvider:         "ollama",
		OllamaBaseURL:      "http://127.0.0.1:1",
		OllamaModel:        "llama3",
		PushMaxConcurrency: 4,
	}
	if mutate != nil {
		mutate(cfg)
	}

	repo := repository.NewFileSubscriptionRepository(filepath.Join(t.TempDir(), "subscriptions.json"))
	require.NoError(t, repo.Load(context.Background()))

	h := NewHandler(cfg,
		pushUsecase.NewRegistrationUsecase(repo, "BPublicKey"),
		pushUsecase.NewDeliveryEngine(repo, nopSender{}, cfg.PushMaxConcurrency),
	)
	return h.Router()
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "https://habitflow.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://habitflow.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/api/subscribe", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/health", "", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	w = serve(r, http.MethodGet, "/health", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestSPAFallback(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/habits/today", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = serve(r, http.MethodGet, "/assets/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")

	w = serve(r, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestPushRoutesMounted(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/vapid-public-key", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicKey":"BPublicKey"}`, w.Body.String())

	w = serve(r, http.MethodPost, "/api/subscribe", `{"endpoint":"https://push.example/1","keys":{"p256dh":"p","auth":"a"}}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodPost, "/api/send", `{"title":"Oi","body":"Bora"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":1`)
}

func TestSendRoutesRequireTokenWhenSecretSet(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) { cfg.SendAPISecret = "s3cret" })

	w := serve(r, http.MethodPost, "/api/send", `{"title":"Oi","body":"Bora"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/send/coach", `{"userName":"Ana","pendingHabits":["Ler"]}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/subscribe", `{"endpoint":"https://push.example/1","keys":{"p256dh":"p","auth":"a"}}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAISettings(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ollama.Close()

	r := newTestRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/settings/ai", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"provider":"ollama","ollama_base_url":"http://127.0.0.1:1","ollama_model":"llama3"}`, w.Body.String())

	w = serve(r, http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"not a url"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"`+ollama.URL+`/","ollama_model":"llama3.2"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ollama.URL, GetRuntimeOllamaBaseURL())
	assert.Equal(t, "llama3.2", GetRuntimeOllamaModel())

	w = serve(r, http.MethodPost, "/api/settings/ai/test", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":true`)

	w = serve(r, http.MethodPost, "/api/settings/ai/test", `{"ollama_base_url":"http://127.0.0.1:1"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
