package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/suyash-modi/Product-Detection/internal/config"
)

// AuthMiddleware protects the API with a shared secret. The token is taken
// from the Authorization bearer header, the X-Api-Key header, or a "token"
// query parameter (websocket clients cannot set headers from a browser).
// An empty configured password disables the check.
func AuthMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Password == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Api-Key")
		if token == "" {
			if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
				token = auth[7:]
			}
		}
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Password)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
