package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogonki/streak-api/internal/config"
	"github.com/ogonki/streak-api/internal/domain/bot"
	"github.com/ogonki/streak-api/internal/infrastructure/telemetry"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
)

const webhook = "/v1/telegram/webhook"

type stubService struct {
	err   error
	calls int
}

func (s *stubService) HandleEvent(context.Context, bot.Event) (bot.Result, error) {
	s.calls++
	return bot.Result{}, s.err
}

func newServer(t *testing.T, svc bot.Service, secret string, ready httpserver.ReadinessCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{ServiceName: "streak-api", Environment: "test", TelegramWebhookSecret: secret}
	provider := handlers.NewProvider(svc, nil, telemetry.NewSanitizer(telemetry.PIILevelHashed, "t"), zerolog.Nop())
	return httpserver.New(cfg, zerolog.Nop(), provider, ready).Handler()
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const messageUpdate = `{"update_id":1,"message":{"message_id":1,"from":{"id":10,"first_name":"A","username":"alice"},"chat":{"id":10},"text":"/start"}}`

func TestWebhookProcessesMessage(t *testing.T) {
	svc := &stubService{}
	h := newServer(t, svc, "", nil)

	w := do(h, http.MethodPost, webhook, messageUpdate, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"ok": true}, decode(t, w))
	assert.Equal(t, 1, svc.calls)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestWebhookAcknowledgesUpdatesWithoutMessage(t *testing.T) {
	svc := &stubService{}
	h := newServer(t, svc, "", nil)

	for _, body := range []string{`{"update_id":2,"edited_message":{}}`, ``} {
		w := do(h, http.MethodPost, webhook, body, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"ok": true}, decode(t, w))
	}
	assert.Zero(t, svc.calls)
}

func TestWebhookFailureReturnsCause(t *testing.T) {
	h := newServer(t, &stubService{err: errors.New("upsert user: connection refused")}, "", nil)

	w := do(h, http.MethodPost, webhook, messageUpdate, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "upsert user: connection refused", decode(t, w)["error"])
}

func TestWebhookMalformedBody(t *testing.T) {
	h := newServer(t, &stubService{}, "", nil)

	w := do(h, http.MethodPost, webhook, `{"message":`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestWebhookPreflight(t *testing.T) {
	h := newServer(t, &stubService{}, "secret", nil)

	w := do(h, http.MethodOptions, webhook, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestWebhookRejectsOtherMethods(t *testing.T) {
	h := newServer(t, &stubService{}, "", nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := do(h, method, webhook, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "Method not allowed", decode(t, w)["error"])
	}
}

func TestWebhookSecretToken(t *testing.T) {
	svc := &stubService{}
	h := newServer(t, svc, "s3cret", nil)

	w := do(h, http.MethodPost, webhook, messageUpdate, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, http.MethodPost, webhook, messageUpdate, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.calls)

	w = do(h, http.MethodPost, webhook, messageUpdate, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestReadiness(t *testing.T) {
	down := newServer(t, &stubService{}, "", func(context.Context) error { return errors.New("db down") })
	w := do(down, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	up := newServer(t, &stubService{}, "", func(context.Context) error { return nil })
	w = do(up, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(up, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSwaggerDocDescribesWebhook(t *testing.T) {
	h := newServer(t, &stubService{}, "", nil)

	w := do(h, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc := decode(t, w)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, webhook)
	assert.Equal(t, "Streak API", doc["info"].(map[string]any)["title"])
}
