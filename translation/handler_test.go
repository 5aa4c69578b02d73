package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"translate-gateway/middleware/ratelimit"
	rlapp "translate-gateway/middleware/ratelimit/application"
	rlinfra "translate-gateway/middleware/ratelimit/infra"
	"translate-gateway/translation/application"
	"translate-gateway/translation/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProvider struct{ err error }

func (p echoProvider) Translate(_ context.Context, text, _, target string) (domain.Result, error) {
	if p.err != nil {
		return domain.Result{}, p.err
	}
	return domain.Result{TranslatedText: target + ":" + text, DetectedSourceLang: "JA"}, nil
}

func newHandler(t *testing.T, provider domain.Provider) *Handler {
	t.Helper()
	msgs, err := NewMessages()
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Handler{
		Service: application.Service{
			Provider: provider,
			Limiter: rlapp.Service{
				Store: rlinfra.NewMemoryStore(),
				Now:   func() time.Time { return now },
			},
		},
		KeyFn:     ratelimit.DefaultKeyFunc("", false),
		Messages:  msgs,
		BodyLimit: 10 << 20,
	}
}

func post(h http.HandlerFunc, body string, headers ...string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(body))
	r.RemoteAddr = "192.0.2.10:4000"
	r.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandler_Translate_OK(t *testing.T) {
	h := newHandler(t, echoProvider{})

	w := post(h.Translate, `{"text":"年齢","targetLang":"en"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "EN:年齢", body["translatedText"])
	assert.Equal(t, "JA", body["detectedSourceLang"])
}

func TestHandler_Translate_TextTooLong(t *testing.T) {
	h := newHandler(t, echoProvider{})

	payload, _ := json.Marshal(map[string]string{"text": strings.Repeat("a", 5001), "targetLang": "en"})
	w := post(h.Translate, string(payload))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Text too long. Maximum 5000 characters allowed.", decode(t, w)["error"])
}

func TestHandler_Translate_MissingParams(t *testing.T) {
	h := newHandler(t, echoProvider{})

	for _, body := range []string{`{"text":"x"}`, `{}`, `not json`} {
		w := post(h.Translate, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestHandler_Translate_LocalizedError(t *testing.T) {
	h := newHandler(t, echoProvider{})

	w := post(h.Translate, `{"text":"x"}`, "Accept-Language", "ja-JP,ja;q=0.9")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "必須パラメータ（text と targetLang）がありません", decode(t, w)["error"])
}

func TestHandler_Translate_EleventhCallIsRateLimited(t *testing.T) {
	h := newHandler(t, echoProvider{})

	for i := 0; i < 10; i++ {
		w := post(h.Translate, `{"text":"x","targetLang":"en"}`)
		require.Equal(t, http.StatusOK, w.Code, "call %d", i+1)
	}

	w := post(h.Translate, `{"text":"x","targetLang":"en"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	body := decode(t, w)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", body["error"])
	assert.Greater(t, body["retryAfter"], float64(0))
}

func TestHandler_Translate_ServerErrors(t *testing.T) {
	cases := map[string]struct {
		provider domain.Provider
		want     string
	}{
		"not configured":  {nil, "Translation API key not configured"},
		"provider status": {echoProvider{err: &domain.ProviderError{Status: 503}}, "Translation service temporarily unavailable"},
		"bad response":    {echoProvider{err: domain.ErrInvalidProviderResponse}, "Invalid response from translation service"},
		"network":         {echoProvider{err: errors.New("EOF")}, "Internal server error"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHandler(t, tc.provider)
			w := post(h.Translate, `{"text":"x","targetLang":"en"}`)
			require.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tc.want, decode(t, w)["error"])
		})
	}
}

func TestHandler_Translate_BodyLimit(t *testing.T) {
	h := newHandler(t, echoProvider{})
	h.BodyLimit = 16

	w := post(h.Translate, `{"text":"this body is way past sixteen bytes","targetLang":"en"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandler_Health(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := &Handler{Started: start, now: func() time.Time { return start.Add(90 * time.Second) }}

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, 90.0, body.Uptime)
	assert.True(t, body.Timestamp.Equal(start.Add(90*time.Second)))
}

func TestHandler_Ready(t *testing.T) {
	h := &Handler{Checks: map[string]Check{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	}}

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.Checks = nil
	w = httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.ErrTextTooLong))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(&domain.RateLimitError{}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&domain.ProviderError{Status: 429}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domain.ErrNotConfigured))
}
