package middleware

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/go-sports-feed/internal/storage"
)

// AuthBearer извлекает Bearer-токен из Authorization и кладёт "сырой" токен
// в контекст через storage.WithAccessToken. Валидацию токена выполняет хранилище.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			const prefix = "Bearer "
			if strings.HasPrefix(auth, prefix) {
				if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
					r = r.WithContext(storage.WithAccessToken(r.Context(), token))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
