package middleware

import (
	"net/http"

	"github.com/kmcheng/discusshub-backend/db/model"
)

// RequireRole guards a subtree to one role. Must run after Authenticator.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			u := r.Context().Value("user").(*model.User)
			if u.Role != role {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
