package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultLimit é o número de chamadas admitidas por janela e por cliente.
	DefaultLimit = 10
	// DefaultWindow é a duração fixa da janela.
	DefaultWindow = 60 * time.Second
)

var ErrKeyRequired = errors.New("ratelimit: key is required")

type Key string

// RateRecord é o contador de um cliente dentro da janela corrente.
//
// Criado na primeira requisição da janela; reiniciado quando now > ResetAt.
type RateRecord struct {
	Key     Key
	Count   int
	ResetAt time.Time
}

// WindowStore guarda um RateRecord por chave.
//
// Admit precisa ser uma única seção crítica por chave: duas chamadas
// concorrentes nunca podem observar ambas count < limit quando só resta uma vaga.
// Quando a chamada é rejeitada o contador NÃO é incrementado.
type WindowStore interface {
	Admit(ctx context.Context, key Key, limit int, window time.Duration, now time.Time) (rec RateRecord, allowed bool, err error)
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration

	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfterSeconds arredonda para cima, como o header Retry-After espera.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed || d.RetryAfter <= 0 {
		return 0
	}
	secs := d.RetryAfter / time.Second
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// Admitter é o contrato admit(clientKey) -> Allowed | Rejected(retryAfter).
type Admitter interface {
	Decide(ctx context.Context, key Key) (Decision, error)
}
