// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: janela fixa por chave em memória, com janitor e limite de chaves
//   - RedisStore: janela fixa compartilhada entre réplicas (script Lua)
//   - MemoryStatsStore / RedisStatsStore / PrometheusStatsStore: estatísticas de decisão
//   - ChanPool: semáforo simples para limite de concorrência
package infra
