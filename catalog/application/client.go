// Package application contém o cliente de i18n: lookup síncrono com fallback,
// preenchimento do cache via Gateway e a política de escolha de idioma.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"translate-gateway/catalog/domain"
	tdomain "translate-gateway/translation/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// Client é o estado de uma sessão de i18n: cache, idioma ativo e os
// colaboradores (Gateway, bundles, preferência). Seguro para uso concorrente.
type Client struct {
	cache      *domain.Cache
	translator domain.Translator
	prefs      domain.PreferenceStore
	bundles    domain.BundleSource
	available  []string
	base       string
	workers    int
	pacer      *rate.Limiter
	logger     *slog.Logger

	mu     sync.RWMutex
	active string
}

type Option func(*Client)

// WithBundles registra a origem dos bundles estáticos e os idiomas que ela tem.
func WithBundles(src domain.BundleSource, langs ...string) Option {
	return func(c *Client) {
		c.bundles = src
		for _, l := range langs {
			if l = domain.NormalizeLang(l); l != "" && !slices.Contains(c.available, l) {
				c.available = append(c.available, l)
			}
		}
	}
}

func WithPreferences(p domain.PreferenceStore) Option {
	return func(c *Client) { c.prefs = p }
}

func WithBaseLanguage(lang string) Option {
	return func(c *Client) {
		if lang = domain.NormalizeLang(lang); lang != "" {
			c.base = lang
		}
	}
}

// WithWorkers limita quantas chamadas ao Gateway EnsureLanguage faz em paralelo.
// O padrão é 1 (uma por vez, na ordem das chaves).
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithPacing espaça as chamadas ao Gateway (rps por segundo, rajada burst)
// para não estourar o rate limit do servidor.
func WithPacing(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient começa com o idioma base ativo.
func NewClient(cache *domain.Cache, translator domain.Translator, opts ...Option) *Client {
	if cache == nil {
		cache = domain.NewCache()
	}
	c := &Client{
		cache:      cache,
		translator: translator,
		base:       domain.BaseLanguage,
		workers:    1,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.active = c.base
	return c
}

func (c *Client) Cache() *domain.Cache { return c.cache }

func (c *Client) BaseLanguage() string { return c.base }

// Active devolve o idioma ativo.
func (c *Client) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// HasBundle diz se lang tem bundle estático.
func (c *Client) HasBundle(lang string) bool {
	lang = domain.NormalizeLang(lang)
	return lang == c.base || slices.Contains(c.available, lang)
}

// GetText: lang, depois o idioma base, depois a própria chave. Nunca falha.
// lang vazio usa o idioma ativo.
func (c *Client) GetText(key, lang string) string {
	if lang == "" {
		lang = c.Active()
	}
	if s, err := c.cache.Lookup(lang, key); err == nil {
		return s
	}
	if s, err := c.cache.Lookup(c.base, key); err == nil {
		return s
	}
	return key
}

// SetLanguage troca o ponteiro e persiste a escolha. Não mexe no cache.
func (c *Client) SetLanguage(ctx context.Context, lang string) error {
	lang = domain.NormalizeLang(lang)
	if lang == "" {
		return errors.New("catalog: empty language")
	}
	c.mu.Lock()
	c.active = lang
	c.mu.Unlock()

	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.Save(ctx, lang); err != nil {
		return fmt.Errorf("catalog: persist language %q: %w", lang, err)
	}
	return nil
}

// EnsureLanguage garante que keys sejam resolvíveis em lang. Primeiro tenta o
// bundle estático (se houver); o que ainda faltar vai ao Gateway, uma chamada
// por chave, usando o texto do idioma base como origem. Cada acerto entra no
// cache na hora, então uma falha no meio mantém o que já deu certo.
//
// Só devolve erro (ErrLanguageUnavailable) quando nenhuma das chamadas deu certo.
// Chamar de novo com o idioma já completo não faz nenhuma chamada.
func (c *Client) EnsureLanguage(ctx context.Context, lang string, keys []string) error {
	lang = domain.NormalizeLang(lang)
	if lang == "" || lang == c.base {
		return nil
	}

	if c.bundles != nil && !c.cache.Has(lang) && slices.Contains(c.available, lang) {
		c.loadBundle(ctx, lang)
	}

	jobs := c.missing(lang, keys)
	if len(jobs) == 0 {
		return nil
	}
	if c.translator == nil {
		return fmt.Errorf("%w: %s: no translator configured", domain.ErrLanguageUnavailable, lang)
	}

	ok, errs := c.translateAll(ctx, lang, jobs)
	if ok == 0 {
		return fmt.Errorf("%w: %s: %w", domain.ErrLanguageUnavailable, lang, errors.Join(errs...))
	}
	if len(errs) > 0 {
		c.logger.WarnContext(ctx, "language partially translated",
			"lang", lang,
			"translated", ok,
			"failed", len(errs),
			"error", errs[0],
		)
	}
	return nil
}

type job struct {
	key    string
	source string
}

// missing lista as chaves sem entrada em lang que têm texto no idioma base.
func (c *Client) missing(lang string, keys []string) []job {
	var out []job
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := c.cache.Lookup(lang, key); err == nil {
			continue
		}
		src, err := c.cache.Lookup(c.base, key)
		if err != nil {
			c.logger.Debug("key has no source text, skipping", "key", key)
			continue
		}
		out = append(out, job{key: key, source: src})
	}
	return out
}

func (c *Client) translateAll(ctx context.Context, lang string, jobs []job) (int, []error) {
	var (
		mu      sync.Mutex
		ok      int
		errs    []error
		limited atomic.Bool
	)

	run := func(j job) {
		if limited.Load() {
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: skipped after rate limit", j.key))
			mu.Unlock()
			return
		}
		text, err := c.translateOne(ctx, lang, j.source)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if errors.Is(err, tdomain.ErrRateLimitExceeded) {
				limited.Store(true)
			}
			errs = append(errs, fmt.Errorf("%s: %w", j.key, err))
			return
		}
		c.cache.Set(lang, j.key, text)
		ok++
	}

	if c.workers <= 1 {
		for _, j := range jobs {
			run(j)
		}
		return ok, errs
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	for _, j := range jobs {
		g.Go(func() error {
			run(j)
			return nil
		})
	}
	_ = g.Wait()
	return ok, errs
}

func (c *Client) translateOne(ctx context.Context, lang, text string) (string, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", err
		}
	}
	return c.translator.Translate(ctx, text, lang)
}

func (c *Client) loadBundle(ctx context.Context, lang string) bool {
	tree, err := c.bundles.Bundle(ctx, lang)
	if err != nil {
		if !errors.Is(err, domain.ErrBundleNotFound) {
			c.logger.WarnContext(ctx, "bundle load failed", "lang", lang, "error", err)
		}
		return false
	}
	c.cache.Merge(lang, tree)
	return true
}

// ChangeLanguage ativa lang de forma tentativa e preenche o cache. Se o
// preenchimento falhar por completo, o idioma anterior volta a ser o ativo (a
// não ser que outra troca já tenha acontecido) e o erro é devolvido. Em caso de
// sucesso a escolha é persistida.
func (c *Client) ChangeLanguage(ctx context.Context, lang string, keys []string) error {
	return c.change(ctx, lang, keys, true)
}

func (c *Client) change(ctx context.Context, lang string, keys []string, persist bool) error {
	lang = domain.NormalizeLang(lang)
	if lang == "" {
		return errors.New("catalog: empty language")
	}

	c.mu.Lock()
	prev := c.active
	c.active = lang
	c.mu.Unlock()

	if err := c.EnsureLanguage(ctx, lang, keys); err != nil {
		c.mu.Lock()
		if c.active == lang {
			c.active = prev
		}
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "language change rolled back", "lang", lang, "active", prev, "error", err)
		return err
	}

	if persist && c.prefs != nil {
		if err := c.prefs.Save(ctx, lang); err != nil {
			c.logger.WarnContext(ctx, "could not persist language", "lang", lang, "error", err)
		}
	}
	return nil
}

// SelectInitial aplica a prioridade do idioma inicial: query (se houver bundle)
// > preferência salva > idioma do navegador (se houver bundle) > base.
// browser aceita o formato de Accept-Language.
func (c *Client) SelectInitial(query, persisted, browser string) string {
	if q := domain.NormalizeLang(query); q != "" && c.HasBundle(q) {
		return q
	}
	if p := domain.NormalizeLang(persisted); p != "" {
		return p
	}
	if lang, ok := c.matchBrowser(browser); ok {
		return lang
	}
	return c.base
}

func (c *Client) matchBrowser(browser string) (string, bool) {
	if browser == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(browser)
	if err != nil || len(tags) == 0 {
		return "", false
	}

	supported := append([]string{c.base}, c.available...)
	supportedTags := make([]language.Tag, 0, len(supported))
	names := make([]string, 0, len(supported))
	for _, s := range supported {
		t, err := language.Parse(s)
		if err != nil {
			continue
		}
		supportedTags = append(supportedTags, t)
		names = append(names, s)
	}

	_, idx, conf := language.NewMatcher(supportedTags).Match(tags...)
	if conf == language.No {
		return "", false
	}
	return names[idx], true
}

// BootstrapInput descreve o carregamento da página: ?lang=, o idioma do
// navegador e as chaves que a tela precisa.
type BootstrapInput struct {
	Query   string
	Browser string
	Keys    []string
}

// Bootstrap escolhe e ativa o idioma inicial. Um ?lang= sem bundle ainda é
// tentado via Gateway; se falhar, fica o idioma que a política escolheria sem
// ele, e o erro é devolvido para a UI avisar. Bootstrap não persiste nada.
func (c *Client) Bootstrap(ctx context.Context, in BootstrapInput) (string, error) {
	if c.bundles != nil && !c.cache.Has(c.base) {
		c.loadBundle(ctx, c.base)
	}

	var persisted string
	if c.prefs != nil {
		p, err := c.prefs.Load(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "could not read language preference", "error", err)
		}
		persisted = p
	}

	choice := c.SelectInitial(in.Query, persisted, in.Browser)
	if err := c.change(ctx, choice, in.Keys, false); err != nil {
		c.logger.WarnContext(ctx, "initial language unavailable, staying on base", "lang", choice, "error", err)
		c.mu.Lock()
		c.active = c.base
		c.mu.Unlock()
	}

	query := domain.NormalizeLang(in.Query)
	if query == "" || query == c.Active() {
		return c.Active(), nil
	}
	if err := c.change(ctx, query, in.Keys, false); err != nil {
		return c.Active(), err
	}
	return c.Active(), nil
}
