package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// Context keys for middleware
type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (studycontent.Principal, bool) {
	p, ok := ctx.Value(principalKey).(studycontent.Principal)
	return p, ok
}

// WithPrincipal returns a copy of ctx carrying the principal. Exposed
// for handler tests.
func WithPrincipal(ctx context.Context, p studycontent.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Authenticator resolves the verified JWT (ingested by
// jwtauth.Verifier) into a Principal. The token itself is issued by
// the external auth subsystem; admin status is decided by the
// configured admin identity set, never by a hardcoded list.
type Authenticator struct {
	tokenAuth   *jwtauth.JWTAuth
	adminEmails map[string]bool
}

// NewAuthenticator creates an Authenticator for tokens signed with the
// given HMAC secret, treating the given emails as administrators.
func NewAuthenticator(jwtSecret string, adminEmails []string) *Authenticator {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &Authenticator{
		tokenAuth:   jwtauth.New("HS256", []byte(jwtSecret), nil),
		adminEmails: admins,
	}
}

// TokenAuth exposes the underlying verifier, for wiring
// jwtauth.Verifier and for issuing tokens in tests.
func (a *Authenticator) TokenAuth() *jwtauth.JWTAuth {
	return a.tokenAuth
}

// Verifier returns the middleware that parses and validates the
// request token.
func (a *Authenticator) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokenAuth)
}

// Principal turns verified token claims into a Principal on the
// request context. Requests without a valid token pass through
// unauthenticated; RequireAdmin decides whether that matters.
func (a *Authenticator) Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}

		principal := studycontent.Principal{}
		if sub, ok := claims["sub"].(string); ok {
			principal.ID = sub
		}
		if email, ok := claims["email"].(string); ok {
			principal.Email = email
			principal.IsAdmin = a.adminEmails[strings.ToLower(email)]
		}
		if principal.ID == "" && principal.Email == "" {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequireAdmin rejects requests whose principal is absent or not an
// administrator, before any side effect.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, studycontent.ErrUnauthenticated.Error(), http.StatusUnauthorized)
			return
		}
		if !principal.IsAdmin {
			slog.Warn("admin operation rejected", "principal", principal.ID)
			http.Error(w, studycontent.ErrAdminRequired.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
