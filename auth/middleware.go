package auth

import (
	"net/http"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/respond"
)

// RequireAuth rejects requests without a valid access token with a generic 401.
// On success the identity is available through IdentityFromContext.
func RequireAuth(resolver *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolver.Resolve(r)
			if !ok {
				respond.Error(w, r, apperror.NewUnauthenticated())
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContextWithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches an identity when the request carries a valid token and
// otherwise lets the request through anonymously.
func OptionalAuth(resolver *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := resolver.Resolve(r); ok {
				r = r.WithContext(NewContextWithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must run after RequireAuth. It answers 403 when the caller's role
// is not the expected one.
func RequireRole(role Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, r, apperror.NewUnauthenticated())
				return
			}
			if id.Role != role {
				respond.Error(w, r, apperror.NewUnauthorizedError("this action requires a "+string(role)+" account", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
