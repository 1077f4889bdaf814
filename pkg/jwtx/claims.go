package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. The provisional TTL only has to cover the
// two-factor round trip, so it stays short.
const (
	DefaultProvisionalTTL = 5 * time.Minute
	DefaultFullTTL        = 1 * time.Hour
)

// Scope is the access level a token asserts. A provisional token is issued
// after the password check alone and must never pass a check that requires
// full scope.
type Scope string

const (
	ScopeProvisional Scope = "provisional"
	ScopeFull        Scope = "full"
)

// Valid reports whether s is one of the two known scopes.
func (s Scope) Valid() bool {
	return s == ScopeProvisional || s == ScopeFull
}

// Claims are the fields carried inside an issued token. The subject is the
// username; UID carries the stable user id so handlers never have to look
// a username up again.
type Claims struct {
	jwt.RegisteredClaims

	// UID is the user's opaque identifier (ULID).
	UID string `json:"uid,omitempty"`

	// Roles the user held at issue time, order preserved for display.
	Roles []string `json:"roles,omitempty"`

	// Scope is "provisional" or "full".
	Scope Scope `json:"scope,omitempty"`
}

// NewClaims builds minimally-correct claims for a token of the given scope.
func NewClaims(
	subject, uid string,
	roles []string,
	scope Scope,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		UID:   uid,
		Roles: roles,
		Scope: scope,
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasRole reports whether the claims carry the named role. Role order is
// irrelevant for authorization.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateIssuer checks the issuer claim against the expected value.
// An empty expected value enforces nothing.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
