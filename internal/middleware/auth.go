package middleware

import (
	"net/http"

	"github.com/Dan9191/todo-service/internal/auth"
	"github.com/gorilla/mux"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "token"

// TokenVerifier validates a session token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid session cookie and attaches
// the token's identity to the request context. Missing, malformed and expired
// tokens all produce the same 401 response.
func AuthMiddleware(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{ID: claims.UserID, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
