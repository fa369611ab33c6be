package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mealmafia/mealmafia-go/internal/crypto"
	"github.com/mealmafia/mealmafia-go/internal/service"
)

// TokenCookie is the name of the HTTP-only session cookie.
const TokenCookie = "token"

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*crypto.Claims, error)
}

// AdminChecker reports whether the user behind email may use admin routes.
// Errors wrapping service.ErrAuth deny access; any other error is a server error.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, email string) error
}

// VerifyToken returns middleware that validates the session cookie and stores
// its claims in the request context.
func VerifyToken(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil || cookie.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				slog.Warn("token verification failed", "path", r.URL.Path, "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that admits only users whose persisted role
// is admin. It must run after VerifyToken.
func RequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized access")
				return
			}

			if err := checker.RequireAdmin(r.Context(), claims.Email); err != nil {
				if errors.Is(err, service.ErrAuth) {
					writeJSONError(w, http.StatusUnauthorized, "forbidden access")
					return
				}
				slog.Error("admin check failed", "email", claims.Email, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts the verified session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*crypto.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*crypto.Claims)
	return claims, ok && claims != nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
