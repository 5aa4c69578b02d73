package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	"translate-gateway/middleware/ratelimit/application"
	"translate-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max          int
	Wait         time.Duration
	RejectStatus int
	// RetryAfter vai no header e no corpo da recusa (segundos, mínimo 1).
	RetryAfter int
	Logger     *slog.Logger
}

// ConcurrencyMiddleware recusa com {error, retryAfter} quando já há Max
// requisições em andamento e nenhuma vaga abre dentro de Wait.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RetryAfter < 1 {
		opts.RetryAfter = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	svc := application.NewConcurrencyService(infra.NewChanPool(opts.Max), opts.Wait)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				opts.Logger.WarnContext(r.Context(), "server busy, request rejected",
					"path", r.URL.Path,
					"in_flight", svc.InFlight(),
					"rejected_total", svc.Rejected(),
				)
				WriteRejected(w, opts.RejectStatus, "Server busy. Please try again later.", opts.RetryAfter)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
