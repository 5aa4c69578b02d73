package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"translate-gateway/catalog/infra"
	"translate-gateway/config"
	"translate-gateway/middleware/ratelimit"
	rlapp "translate-gateway/middleware/ratelimit/application"
	rldomain "translate-gateway/middleware/ratelimit/domain"
	rlinfra "translate-gateway/middleware/ratelimit/infra"
	"translate-gateway/middleware/requestid"
	"translate-gateway/middleware/security"
	"translate-gateway/redisconn"
	"translate-gateway/translation"
	"translate-gateway/translation/application"
	tinfra "translate-gateway/translation/infra"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// app junta as peças do gateway. Construído por newApp, servido por Router.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	storeKind string

	handler     *translation.Handler
	stats       *rlinfra.MemoryStatsStore
	redisStats  *rlinfra.RedisStatsStore
	staticLimit rldomain.Admitter
	allStats    rldomain.StatsStore
	registry    *prometheus.Registry
	bundles     *infra.StaticBundles
}

// newApp monta as dependências. Com rdb != nil, limiter e estatísticas ficam no
// Redis (compartilhados entre réplicas); sem ele, em memória com janitor até ctx encerrar.
func newApp(ctx context.Context, cfg config.Config, log *slog.Logger, rdb *redis.Client) (*app, error) {
	a := &app{cfg: cfg, log: log, stats: rlinfra.NewMemoryStatsStore()}

	var (
		apiStore    rldomain.WindowStore
		staticStore rldomain.WindowStore
	)
	if rdb != nil {
		a.storeKind = "redis"
		apiStore = rlinfra.NewRedisStore(rdb)
		staticStore = rlinfra.NewRedisStore(rdb, rlinfra.WithKeyPrefix("ratelimit:static"))
	} else {
		a.storeKind = "memory"
		mem := rlinfra.NewMemoryStore(
			rlinfra.WithMaxKeys(cfg.RateMaxKeys),
			rlinfra.WithCleanupEvery(cfg.RateCleanupEvery),
		)
		mem.StartJanitor(ctx)
		staticMem := rlinfra.NewMemoryStore(
			rlinfra.WithMaxKeys(cfg.RateMaxKeys),
			rlinfra.WithCleanupEvery(cfg.RateCleanupEvery),
		)
		staticMem.StartJanitor(ctx)
		apiStore, staticStore = mem, staticMem
	}

	sinks := rlinfra.FanoutStats{a.stats}
	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prom, err := rlinfra.NewPrometheusStatsStore(a.registry)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
	}
	if cfg.RateStatsEnabled && rdb != nil {
		a.redisStats = rlinfra.NewRedisStatsStore(rdb,
			rlinfra.WithStatsPrefix(cfg.RateStatsPrefix),
			rlinfra.WithStatsTTL(cfg.RateStatsTTL),
			rlinfra.WithStatsPerMinute(cfg.RateStatsPerMinute),
			rlinfra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		)
		sinks = append(sinks, a.redisStats)
	}
	a.allStats = sinks

	provider := tinfra.NewDeepLProvider(cfg.DeepLAPIKey,
		tinfra.WithEndpoint(cfg.DeepLAPIURL),
		tinfra.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout}),
		tinfra.WithRateLimit(cfg.ProviderRPS, cfg.ProviderBurst),
	)

	msgs, err := translation.NewMessages()
	if err != nil {
		return nil, err
	}

	checks := map[string]translation.Check{}
	if rdb != nil {
		checks["redis"] = redisconn.Healthcheck(rdb)
	}

	a.handler = &translation.Handler{
		Service: application.Service{
			Provider: provider,
			Limiter: rlapp.Service{
				Store:  apiStore,
				Limit:  cfg.RateLimit,
				Window: cfg.RateWindow,
			},
			Stats:         a.allStats,
			SourceLang:    cfg.SourceLang,
			MaxTextLength: cfg.MaxTextLength,
			Logger:        log,
		},
		KeyFn:         ratelimit.DefaultKeyFunc(cfg.RateKeyHeader, cfg.TrustXFF),
		Messages:      msgs,
		Logger:        log,
		BodyLimit:     cfg.BodyLimit,
		MaxTextLength: cfg.MaxTextLength,
		Started:       time.Now(),
		Checks:        checks,
	}

	a.staticLimit = rlapp.Service{
		Store:  staticStore,
		Limit:  cfg.StaticRateLimit,
		Window: cfg.RateWindow,
	}

	if cfg.LocalesEnabled {
		if a.bundles, err = infra.DefaultBundles(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.Headers)
	r.Use(security.CORS(a.cfg.AllowedOrigins))
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:    a.cfg.ConcurrencyMax,
		Wait:   a.cfg.ConcurrencyTimeout,
		Logger: a.log,
	}))

	r.Post("/api/translate", a.handler.Translate)
	r.Get("/api/health", a.handler.Health)
	r.Get("/api/ready", a.handler.Ready)
	r.Get("/api/stats", a.statsHandler)

	if a.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	if a.bundles != nil {
		r.Mount("/locales", (&infra.BundleServer{Bundles: a.bundles}).Routes())
	}
	if a.cfg.StaticDir != "" {
		r.With(ratelimit.Middleware(ratelimit.Options{
			Limiter:             a.staticLimit,
			Stats:               a.allStats,
			KeyHeader:           a.cfg.RateKeyHeader,
			TrustXForwardedFor:  a.cfg.TrustXFF,
			AddRateLimitHeaders: a.cfg.AddRateLimitHeaders,
			Logger:              a.log,
		})).Handle("/*", http.FileServer(http.Dir(a.cfg.StaticDir)))
	}
	return r
}

type statsBody struct {
	rlinfra.StatsSnapshot
	Cluster *rlinfra.Counters `json:"cluster,omitempty"`
}

// statsHandler expõe os contadores em memória desta réplica e, com Redis,
// o total de todas as réplicas.
func (a *app) statsHandler(w http.ResponseWriter, r *http.Request) {
	body := statsBody{StatsSnapshot: a.stats.Snapshot()}
	if a.redisStats != nil {
		c, err := a.redisStats.Totals(r.Context())
		if err != nil {
			a.log.WarnContext(r.Context(), "cluster stats unavailable", "error", err)
		} else {
			body.Cluster = &c
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
