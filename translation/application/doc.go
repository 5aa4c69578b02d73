// Package application contém o caso de uso do gateway de tradução:
// rate limit -> validação -> provedor -> erro normalizado.
//
// Não conhece net/http; o adapter HTTP fica no pacote translation.
package application
