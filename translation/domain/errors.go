package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRequest          = errors.New("missing required parameters: text and targetLang")
	ErrTextTooLong             = errors.New("text too long")
	ErrNotConfigured           = errors.New("translation provider not configured")
	ErrRateLimitExceeded       = errors.New("rate limit exceeded")
	ErrProviderUnavailable     = errors.New("translation service temporarily unavailable")
	ErrInvalidProviderResponse = errors.New("invalid response from translation service")
	ErrInternal                = errors.New("internal server error")
)

// RateLimitError carrega a dica de espera. errors.Is(err, ErrRateLimitExceeded) == true.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimitExceeded, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimitExceeded }

// RetryAfterSeconds arredonda para cima.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := e.RetryAfter / time.Second
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// ProviderError é um status não-2xx do provedor. O chamador decide se tenta de novo;
// o gateway não repete sozinho.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (status %d)", ErrProviderUnavailable, e.Status)
}

func (e *ProviderError) Unwrap() error { return ErrProviderUnavailable }

// Kind devolve o nome estável do erro na taxonomia, para logs e métricas.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, ErrTextTooLong):
		return "TextTooLong"
	case errors.Is(err, ErrNotConfigured):
		return "NotConfigured"
	case errors.Is(err, ErrRateLimitExceeded):
		return "RateLimitExceeded"
	case errors.Is(err, ErrProviderUnavailable):
		return "ProviderUnavailable"
	case errors.Is(err, ErrInvalidProviderResponse):
		return "InvalidProviderResponse"
	default:
		return "InternalError"
	}
}
