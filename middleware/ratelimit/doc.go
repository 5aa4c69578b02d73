// Package ratelimit fornece adapters HTTP (net/http) para o rate limit por janela
// fixa e para o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (memória, Redis, Prometheus, semáforo)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo:
//
//  1. Extrai a chave do cliente (header/XFF/IP)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 {error, retryAfter} (rate limit) ou 503 (concorrência)
//  4. Se permitido, chama o próximo handler
//
// A rota /api/translate não usa Middleware: o gateway de tradução consulta o
// limiter diretamente (ver translation/application), e usa KeyFunc/WriteRejected daqui.
// Middleware protege os arquivos estáticos com um limite próprio.
package ratelimit
