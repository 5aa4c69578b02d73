// Package application contém os casos de uso do rate limit por janela fixa
// e do limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) retorna uma Decision (allow/deny + retry-after em segundos).
package application
