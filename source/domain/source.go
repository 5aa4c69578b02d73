// Package domain define as fontes candidatas de assets (local ou espelhos de CDN)
// e os erros da resolução.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// Candidate é uma raiz de onde modelos/bundles podem ser baixados.
// Priority menor = tentado antes.
type Candidate struct {
	URL         string
	DisplayName string
	Priority    int
}

func (c Candidate) String() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.URL
}

// Prober verifica, de forma leve, se a fonte responde (HEAD num manifest pequeno).
type Prober interface {
	Probe(ctx context.Context, c Candidate) error
}

var (
	// ErrSourceUnreachable: todas as candidatas foram descartadas.
	ErrSourceUnreachable = errors.New("source: all candidates exhausted")
	// ErrSourceFailure marca uma falha de carga atribuível à fonte
	// (rede, 5xx), e não ao conteúdo (parse, biblioteca).
	ErrSourceFailure = errors.New("source: load failed")
	ErrNoCandidates  = errors.New("source: no candidates configured")
)

// SourceFailure embrulha err como falha da fonte, o que faz o resolver trocar de candidata.
func SourceFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSourceFailure, err)
}

// IsSourceFailure diz se err deve provocar failover.
func IsSourceFailure(err error) bool {
	return errors.Is(err, ErrSourceFailure)
}
