package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/authz"
)

type contextKeyIdentity string

const identityKey contextKeyIdentity = "identity"

// Session resolves the caller's identity from the session cookie or a
// Bearer token and stores it in the request context. Requests with no
// credential, or a credential that fails validation, proceed as
// anonymous; route guards decide whether that is acceptable.
func Session(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolveIdentity(manager, r)
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(manager *auth.JWTManager, r *http.Request) authz.Identity {
	if manager == nil {
		return authz.Anonymous()
	}

	token := ""
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" {
		bearer, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			return authz.Anonymous()
		}
		token = bearer
	}
	if token == "" {
		return authz.Anonymous()
	}

	claims, err := manager.Validate(token)
	if err != nil {
		return authz.Anonymous()
	}

	return authz.Identity{
		UserID: claims.Subject,
		Role:   auth.NormalizeRole(claims.Role),
	}
}

// IdentityFrom returns the identity resolved for this request, or the
// anonymous identity when the session middleware did not run.
func IdentityFrom(r *http.Request) authz.Identity {
	if r == nil {
		return authz.Anonymous()
	}
	if identity, ok := r.Context().Value(identityKey).(authz.Identity); ok {
		return identity
	}
	return authz.Anonymous()
}
