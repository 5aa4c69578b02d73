package domain

import (
	"context"
	"errors"
)

// ErrNoSlot indica que nenhuma vaga abriu antes do prazo.
var ErrNoSlot = errors.New("ratelimit: no free slot")

// Release devolve a vaga. Chamar mais de uma vez não tem efeito.
type Release func()

// SlotPool limita quantas requisições ficam em andamento ao mesmo tempo.
// Acquire espera até abrir uma vaga ou até o ctx encerrar (ErrNoSlot).
type SlotPool interface {
	Acquire(ctx context.Context) (Release, error)
	Cap() int
	InUse() int
}
