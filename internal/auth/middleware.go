package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// contextKey is a private type for context values set by this package.
type contextKey int

const principalKey contextKey = iota

// SessionResolver resolves a bearer token to a Principal.
// Implemented by the identity service, which looks the session up and
// re-reads the user from the registry so role changes apply immediately.
type SessionResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*Principal, error)
}

// Middleware resolves the Authorization header and, when a valid session
// token is present, attaches the Principal to the request context.
// Requests without a token pass through anonymously; services reject
// operations that need an authenticated or admin principal.
func Middleware(resolver SessionResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				// Invalid or expired token: continue anonymously.
				log.Debug().Err(err).Msg("failed to resolve session token")
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal attached to the context,
// or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// TokenFromRequest exposes the raw bearer token (used by logout).
func TokenFromRequest(r *http.Request) string {
	return bearerToken(r)
}
