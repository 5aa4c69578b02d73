package domain

import (
	"context"
	"time"
)

const (
	// MaxTextLength é o tamanho máximo do texto, em caracteres.
	MaxTextLength = 5000
	// DefaultSourceLang é a língua de origem do conteúdo estático do app.
	DefaultSourceLang = "JA"
)

type Request struct {
	// ClientKey identifica o cliente para o rate limit (IP, header, sessão).
	ClientKey  string
	Text       string
	TargetLang string
}

type Result struct {
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang"`
}

// Provider é o serviço externo de tradução (ex.: DeepL).
//
// Erros de status HTTP devem vir como *ProviderError; resposta sem tradução
// como ErrInvalidProviderResponse. Qualquer outro erro vira ErrInternal.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error)
}

// Configurable é implementado por provedores que sabem se têm credencial.
type Configurable interface {
	Configured() bool
}

// Health é o corpo de GET /api/health.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}
