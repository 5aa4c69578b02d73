package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	rldomain "translate-gateway/middleware/ratelimit/domain"
	"translate-gateway/translation/domain"
)

// Service é o gateway de tradução: rate limit, validação, chamada ao provedor
// e normalização dos erros. Nada de net/http aqui.
type Service struct {
	Provider domain.Provider
	// Limiter é consultado antes de qualquer outra coisa. Nil desliga.
	Limiter rldomain.Admitter
	Stats   rldomain.StatsStore

	SourceLang    string
	MaxTextLength int
	Logger        *slog.Logger
}

// Translate devolve sempre um erro da taxonomia de domain (nunca um erro cru
// do provedor e nunca um panic).
func (s Service) Translate(ctx context.Context, req domain.Request) (res domain.Result, err error) {
	log := s.logger()

	if s.Limiter != nil {
		if err := s.admit(ctx, req.ClientKey); err != nil {
			return domain.Result{}, err
		}
	}

	if err := s.validate(req); err != nil {
		return domain.Result{}, err
	}

	source := s.SourceLang
	if source == "" {
		source = domain.DefaultSourceLang
	}
	target := strings.ToUpper(strings.TrimSpace(req.TargetLang))

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "translation provider panicked", "panic", r)
			res, err = domain.Result{}, fmt.Errorf("%w: provider panic: %v", domain.ErrInternal, r)
		}
	}()

	res, err = s.Provider.Translate(ctx, req.Text, strings.ToUpper(source), target)
	if err != nil {
		err = normalize(err)
		log.ErrorContext(ctx, "translation failed",
			"kind", domain.Kind(err),
			"target_lang", target,
			"error", err,
		)
		return domain.Result{}, err
	}
	if res.TranslatedText == "" {
		return domain.Result{}, domain.ErrInvalidProviderResponse
	}
	return res, nil
}

func (s Service) admit(ctx context.Context, clientKey string) error {
	key := rldomain.Key(clientKey)
	if key == "" {
		key = "anonymous"
	}

	dec, err := s.Limiter.Decide(ctx, key)
	if err != nil {
		// store indisponível não bloqueia o cliente
		s.logger().WarnContext(ctx, "rate limit store error", "key", key, "error", err)
		return nil
	}
	if s.Stats != nil {
		_ = s.Stats.Record(ctx, rldomain.StatsEvent{
			Key:     key,
			Allowed: dec.Allowed,
			Method:  methodFrom(ctx),
			Path:    pathFrom(ctx),
			At:      time.Now(),
		})
	}
	if !dec.Allowed {
		s.logger().InfoContext(ctx, "rate limit exceeded", "key", key, "retry_after", dec.RetryAfter)
		return &domain.RateLimitError{RetryAfter: dec.RetryAfter}
	}
	return nil
}

// validate na ordem: faltando -> longo demais -> provedor sem credencial.
func (s Service) validate(req domain.Request) error {
	if req.Text == "" || strings.TrimSpace(req.TargetLang) == "" {
		return domain.ErrInvalidRequest
	}
	limit := s.MaxTextLength
	if limit <= 0 {
		limit = domain.MaxTextLength
	}
	if utf8.RuneCountInString(req.Text) > limit {
		return fmt.Errorf("%w: maximum %d characters allowed", domain.ErrTextTooLong, limit)
	}
	if s.Provider == nil {
		return domain.ErrNotConfigured
	}
	if c, ok := s.Provider.(domain.Configurable); ok && !c.Configured() {
		return domain.ErrNotConfigured
	}
	return nil
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// normalize mantém os erros tipados do provedor e converte o resto em ErrInternal.
func normalize(err error) error {
	var pe *domain.ProviderError
	switch {
	case errors.As(err, &pe):
		return pe
	case errors.Is(err, domain.ErrInvalidProviderResponse),
		errors.Is(err, domain.ErrNotConfigured),
		errors.Is(err, domain.ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
}
