package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aivahq/aiva-backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Authenticator validates bearer tokens and stores the claims in the
// request context.
type Authenticator struct {
	svc *auth.Service
}

func NewAuthenticator(svc *auth.Service) *Authenticator {
	return &Authenticator{svc: svc}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing authorization", http.StatusUnauthorized)
			return
		}
		claims, err := a.svc.Validate(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// Websocket clients can't set headers, so allow a query token too.
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the validated claims stored by the Middleware.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
