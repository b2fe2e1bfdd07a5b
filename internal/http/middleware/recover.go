package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-sports-feed/internal/apierror"
	"github.com/pribylovaa/go-sports-feed/pkg/log"
)

var errPanic = errors.New("panic")

// Recover перехватывает panic и отвечает 500 {"error":"internal error"}.
// Детали паники пишутся только в лог.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.From(r.Context()).
					LogAttrs(r.Context(), slog.LevelError, "panic",
						slog.String("path", r.URL.Path),
						slog.Any("reason", rec),
					)
				apierror.WriteError(w, errPanic)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
