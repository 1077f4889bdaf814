package httpx

import (
	"context"

	"github.com/franpulido/ticketlog/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyUsername ctxKey = "username"
	CtxKeyRoles    ctxKey = "roles"
	CtxKeyScope    ctxKey = "scope"
	CtxKeyClaims   ctxKey = "claims"
)

// ContextWithIdentity attaches the verified token claims to ctx for
// downstream authorization checks.
func ContextWithIdentity(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.UID)
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyScope, c.Scope)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// ClaimsFromContext returns the verified claims attached by the bearer
// filter, or ok=false for an anonymous request.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// UserIDFromContext returns the authenticated user id, or "" when
// anonymous.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return id
	}
	return ""
}

func scopeFromContext(ctx context.Context) (jwtx.Scope, bool) {
	s, ok := ctx.Value(CtxKeyScope).(jwtx.Scope)
	return s, ok
}

func rolesFromContext(ctx context.Context) []string {
	if r, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return r
	}
	return nil
}
