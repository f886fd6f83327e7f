package middleware

import (
	"net/http"
	"strings"

	"mousebot/internal/httputil"
	"mousebot/internal/service/admin"
)

// AdminAuth guards the dashboard API with admin session tokens. The
// webhook and metrics routes are mounted outside this chain.
func AdminAuth(auth *admin.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			if err := auth.VerifyToken(token); err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
