package domain

import (
	"context"
	"strings"
	"time"
)

const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
)

// StatsEvent é uma decisão do limiter. Method/Path vêm da rota HTTP quando
// existe; chamadas em processo deixam os dois vazios.
type StatsEvent struct {
	Key     Key
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// Route é "<METHOD> <path>", ou "" fora de HTTP.
func (e StatsEvent) Route() string {
	return strings.TrimSpace(strings.TrimSpace(e.Method) + " " + strings.TrimSpace(e.Path))
}

func (e StatsEvent) Outcome() string {
	if e.Allowed {
		return OutcomeAllowed
	}
	return OutcomeRejected
}

// StatsStore registra decisões. Best-effort: o chamador ignora o erro, a
// requisição nunca falha por causa das estatísticas.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
