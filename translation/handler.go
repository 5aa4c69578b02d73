package translation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"translate-gateway/middleware/ratelimit"
	"translate-gateway/translation/application"
	"translate-gateway/translation/domain"
)

// Translator é o que o handler precisa do gateway (application.Service).
type Translator interface {
	Translate(ctx context.Context, req domain.Request) (domain.Result, error)
}

// Check é uma verificação de dependência para /api/ready (ex.: ping no Redis).
type Check func(ctx context.Context) error

// Handler expõe o gateway em HTTP:
//
//	POST /api/translate  {text, targetLang} -> 200 {translatedText, detectedSourceLang}
//	GET  /api/health     -> 200 {status:"OK", timestamp, uptime}
//	GET  /api/ready      -> 200 | 503 conforme as dependências
type Handler struct {
	Service       Translator
	KeyFn         ratelimit.KeyFunc
	Messages      *Messages
	Logger        *slog.Logger
	BodyLimit     int64
	MaxTextLength int
	Started       time.Time
	Checks        map[string]Check

	now func() time.Time
}

type translateBody struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	if h.BodyLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.BodyLimit)
	}

	var body translateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: http.StatusText(http.StatusRequestEntityTooLarge)})
			return
		}
		// corpo ilegível é tratado como parâmetros faltando
		body = translateBody{}
	}

	key := ""
	if h.KeyFn != nil {
		key = h.KeyFn(r)
	}

	ctx := application.WithRoute(r.Context(), r.Method, r.URL.Path)
	res, err := h.Service.Translate(ctx, domain.Request{
		ClientKey:  key,
		Text:       body.Text,
		TargetLang: body.TargetLang,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	msg := h.Messages.Text(r.Header.Get("Accept-Language"), kind, map[string]any{"Max": h.maxText()})

	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		ratelimit.WriteRejected(w, http.StatusTooManyRequests, msg, rl.RetryAfterSeconds())
		return
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "translate request failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// StatusFor mapeia a taxonomia de erros para o status HTTP.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrTextTooLong):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	started := h.Started
	if started.IsZero() {
		started = now
	}
	writeJSON(w, http.StatusOK, domain.Health{
		Status:    "OK",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(started).Seconds(),
	})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.Checks {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			h.logger().ErrorContext(r.Context(), "readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "NOT_READY", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "READY"})
}

func (h *Handler) maxText() int {
	if h.MaxTextLength > 0 {
		return h.MaxTextLength
	}
	return domain.MaxTextLength
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
