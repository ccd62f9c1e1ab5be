package auth

import (
	"net/http"

	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/shared"
)

// RequireUser rejects requests without a signed-in session. The
// session middleware must run first.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.UserID() == 0 {
			httpx.Error(w, http.StatusUnauthorized, shared.UserSafeMessage(shared.ErrUnauthenticated))
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), sess.UserID())))
	})
}
