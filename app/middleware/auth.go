package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slicehouse/catalog-service/app/api"
)

const RoleAdmin = "admin"

// Principal is the authenticated caller taken from the bearer token.
type Principal struct {
	Subject string
	Role    string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by Authenticate, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// Authenticate rejects requests without a valid HS256 bearer token signed
// with secret. A token without a role claim is treated as a plain user.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims := jwt.MapClaims{}
			parsed, err := parser.ParseWithClaims(strings.TrimPrefix(authHeader, "Bearer "), claims, keyFunc)
			if err != nil || !parsed.Valid {
				api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			principal := &Principal{Role: "user"}
			if sub, err := claims.GetSubject(); err == nil {
				principal.Subject = sub
			}
			if role, ok := claims["role"].(string); ok && role != "" {
				principal.Role = role
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole lets through only principals with the given role. It must run
// after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if p == nil {
				api.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if p.Role != role {
				api.ErrorResponse(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
