package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/tibkiss/huba-v1/pkg/crypto"
	"github.com/tibkiss/huba-v1/pkg/ratelimit"
	"github.com/tibkiss/huba-v1/pkg/utils"
)

// BasicAuth - middleware для защиты API live-дашборда
//
// HTTP Basic Auth для одного оператора: имя пользователя сравнивается
// constant-time, пароль проверяется против bcrypt-хэша из конфигурации
// (API_AUTH_PASS_HASH, генерируется командой hash-pass).
//
// Попытки аутентификации проходят через rate limiter: bcrypt дорог,
// и лимит одновременно душит bruteforce и защищает CPU.
//
// Если credentials не настроены, аутентификация отключена - бот
// рассчитан на локальное развертывание за firewall.
func BasicAuth(user, passHash string, limiter *ratelimit.RateLimiter, log *utils.Logger) func(http.Handler) http.Handler {
	enabled := user != "" && passHash != ""
	if !enabled {
		log.Warn("API auth disabled: API_AUTH_USER / API_AUTH_PASS_HASH not set")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			reqUser, reqPass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="huba"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if limiter != nil && !limiter.Allow() {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			userMatch := subtle.ConstantTimeCompare([]byte(reqUser), []byte(user)) == 1
			passMatch := crypto.CheckPasswordMatch(reqPass, passHash)

			if !userMatch || !passMatch {
				log.Warn("Failed API auth attempt", utils.String("remote", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Basic realm="huba"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
