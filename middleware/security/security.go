// Package security aplica os cabeçalhos de segurança e o CORS do gateway.
package security

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Headers define os cabeçalhos fixos em toda resposta.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CORS libera só as origens listadas, métodos GET/POST e os cabeçalhos
// Content-Type/Authorization, sem credenciais. Origem fora da lista não recebe
// Access-Control-Allow-Origin; a requisição em si segue normalmente.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           600,
	})
}
