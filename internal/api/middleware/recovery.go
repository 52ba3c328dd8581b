package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/tibkiss/huba-v1/pkg/utils"
)

// Recovery - middleware для восстановления после паники в handlers.
//
// Паника в одном запросе не должна ронять процесс: в live режиме
// вместе с сервером умерла бы и торговля. Паника логируется со stack
// trace, клиент получает 500.
func Recovery(log *utils.Logger) func(http.Handler) http.Handler {
	log = log.WithComponent("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic in HTTP handler",
						utils.Any("panic", err),
						utils.String("path", r.URL.Path),
						utils.String("stack", string(debug.Stack())),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
