package httpx

import (
	"net/http"
	"strings"

	"github.com/franpulido/ticketlog/pkg/jwtx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

// Decoder verifies a bearer token string and returns its claims.
// *jwtx.Codec satisfies this.
type Decoder interface {
	Decode(token string) (jwtx.Claims, error)
}

// AuthContextMiddleware is the request-time bearer filter. When the request
// carries a valid "Authorization: Bearer" token it attaches the resulting
// identity to the request context; otherwise it does nothing and the
// request proceeds as anonymous. It never rejects a request itself.
// Rejection belongs to the authorization middlewares that inspect the
// attached context, which keeps this filter side-effect-free and
// idempotent.
func AuthContextMiddleware(d Decoder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := d.Decode(raw)
			if err != nil {
				slogx.FromContext(ctx).Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, claims)))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return token, token != ""
}
