// Package domain define contratos e tipos de domínio para o rate limit por janela fixa,
// estatísticas de decisão e limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas
// (memória, Redis, Prometheus ficam em infra).
package domain
