// Package domain define os tipos do gateway de tradução: requisição, resultado,
// o contrato do provedor externo e a taxonomia de erros.
package domain
