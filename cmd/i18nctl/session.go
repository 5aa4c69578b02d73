package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"translate-gateway/catalog/application"
	"translate-gateway/catalog/domain"
	"translate-gateway/catalog/infra"
	"translate-gateway/logger"
	"translate-gateway/redisconn"
	srcapp "translate-gateway/source/application"
	srcdomain "translate-gateway/source/domain"
	srcinfra "translate-gateway/source/infra"
)

// session é o estado de uma execução do CLI.
type session struct {
	client   *application.Client
	resolver *srcapp.Resolver
	bundles  domain.BundleSource
	log      *slog.Logger
	closers  []func() error
}

func (s *session) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// Keys devolve as chaves do bundle base, que é o conjunto que a tela precisa.
func (s *session) Keys() []string {
	return s.client.Cache().Keys(s.client.BaseLanguage())
}

func openSession(ctx context.Context, o *options) (*session, error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(
		logger.WithFormat(logger.FormatText),
		logger.WithOutput(os.Stderr),
		logger.WithLevel(level),
	)

	embedded, err := infra.DefaultBundles()
	if err != nil {
		return nil, err
	}

	roots := o.sources
	if len(roots) == 0 {
		roots = []string{strings.TrimRight(o.gateway, "/") + "/locales"}
	}
	resolver, err := srcapp.NewResolver(candidates(roots), srcinfra.NewHTTPProber("", 5*time.Second), srcapp.WithLogger(log))
	if err != nil {
		return nil, err
	}

	s := &session{resolver: resolver, log: log}
	s.bundles = fallbackBundles{
		primary:  infra.NewRemoteBundles(resolver, 10*time.Second),
		fallback: embedded,
		log:      log,
	}

	prefs, closeFn, err := openPreferences(ctx, o)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		s.closers = append(s.closers, closeFn)
	}

	gw := infra.NewGatewayClient(o.gateway, 15*time.Second)
	if o.clientKey != "" {
		gw.Header = http.Header{"X-Client-Key": {o.clientKey}}
	}

	cache := domain.NewCache()
	s.client = application.NewClient(cache, gw,
		application.WithBundles(s.bundles, embedded.Languages()...),
		application.WithPreferences(prefs),
		application.WithWorkers(o.workers),
		application.WithPacing(o.rps, 1),
		application.WithLogger(log),
	)

	base, err := s.bundles.Bundle(ctx, s.client.BaseLanguage())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("load base bundle: %w", err)
	}
	cache.Merge(s.client.BaseLanguage(), base)
	return s, nil
}

func candidates(roots []string) []srcdomain.Candidate {
	out := make([]srcdomain.Candidate, 0, len(roots))
	for i, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		name := root
		if u, err := url.Parse(root); err == nil && u.Host != "" {
			name = u.Host
		}
		out = append(out, srcdomain.Candidate{URL: root, DisplayName: name, Priority: i})
	}
	return out
}

func openPreferences(ctx context.Context, o *options) (domain.PreferenceStore, func() error, error) {
	if o.redisURL == "" {
		return infra.FilePreferenceStore{Path: o.prefFile}, nil, nil
	}
	rdb, err := redisconn.Connect(ctx, redisconn.Config{
		URL:            o.redisURL,
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	return infra.NewRedisPreferenceStore(rdb, o.session), rdb.Close, nil
}

// fallbackBundles usa os bundles remotos e, se nenhuma fonte servir, os embutidos.
type fallbackBundles struct {
	primary  domain.BundleSource
	fallback domain.BundleSource
	log      *slog.Logger
}

func (b fallbackBundles) Bundle(ctx context.Context, lang string) (domain.Tree, error) {
	tree, err := b.primary.Bundle(ctx, lang)
	if err == nil {
		return tree, nil
	}
	if !errors.Is(err, domain.ErrBundleNotFound) {
		b.log.WarnContext(ctx, "remote bundle unavailable, using embedded copy", "lang", lang, "error", err)
	}
	tree, ferr := b.fallback.Bundle(ctx, lang)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return tree, nil
}
