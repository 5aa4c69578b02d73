package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"translate-gateway/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Limiter             domain.Admitter
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	AddRateLimitHeaders bool
	Logger              *slog.Logger
}

// DefaultKeyFunc identifica o cliente: header configurado, depois o primeiro
// IP do X-Forwarded-For (se confiável) e por fim o host de RemoteAddr.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware aplica o limiter antes do próximo handler. Falha do store
// (ex.: Redis fora) não bloqueia o cliente: a requisição segue e o erro é logado.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		if opts.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := opts.Limiter.Decide(r.Context(), domain.Key(key))
			if err != nil {
				opts.Logger.ErrorContext(r.Context(), "rate limit store error", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
			}
			if opts.AddRateLimitHeaders {
				SetHeaders(w, key, dec)
			}
			if !dec.Allowed {
				WriteRejected(w, opts.RejectStatus, "Rate limit exceeded. Please try again later.", dec.RetryAfterSeconds())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders escreve os headers informativos X-RateLimit-*.
func SetHeaders(w http.ResponseWriter, key string, dec domain.Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Key", key)
	if dec.Limit > 0 {
		h.Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
	}
	if !dec.ResetAt.IsZero() {
		h.Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))
	}
}

type rejectedBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// WriteRejected responde {error, retryAfter} com o header Retry-After.
func WriteRejected(w http.ResponseWriter, status int, message string, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejectedBody{Error: message, RetryAfter: retryAfter})
}
