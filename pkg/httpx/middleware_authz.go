package httpx

import (
	"net/http"

	"github.com/franpulido/ticketlog/pkg/jwtx"
)

// RequireFullScope rejects requests whose context lacks an identity or
// whose token is only provisional. A provisional token must never satisfy
// a full-scope check.
func RequireFullScope() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := scopeFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			if scope != jwtx.ScopeFull {
				writeBearerError(w, "full authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireProvisionalScope admits any authenticated request. The two-factor
// endpoint sits behind this: a provisional token is the expected input
// there, and a full token is also acceptable.
func RequireProvisionalScope() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := scopeFromContext(r.Context()); !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole additionally demands at least one of the listed roles.
// Role order in the token is irrelevant here.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, role := range required {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, role := range rolesFromContext(r.Context()) {
				if _, ok := want[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("insufficient_role"))
		})
	}
}

// RFC 6750 style error response for bearer auth failures. The description
// stays generic so nothing about token internals leaks to the caller.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
