package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrBadScope    = errors.New("jwtx: unknown scope")
)

// Codec signs and verifies bearer tokens with a single Ed25519 key held for
// the process lifetime. It keeps no other state, so it is safe for
// unsynchronized concurrent use.
type Codec struct {
	key ed25519.PrivateKey
	pub ed25519.PublicKey

	Issuer         string
	ProvisionalTTL time.Duration
	FullTTL        time.Duration
}

// NewCodec loads an Ed25519 private key from PKCS8 PEM bytes.
func NewCodec(pemKey []byte, issuer string) (*Codec, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return newCodec(key, issuer), nil
}

// NewEphemeralCodec generates a fresh keypair. Tokens die with the process,
// which is the intended behavior for single-instance deployments without a
// provisioned key file.
func NewEphemeralCodec(issuer string) (*Codec, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate Ed25519 key: %w", err)
	}
	return newCodec(key, issuer), nil
}

func newCodec(key ed25519.PrivateKey, issuer string) *Codec {
	return &Codec{
		key:            key,
		pub:            key.Public().(ed25519.PublicKey),
		Issuer:         issuer,
		ProvisionalTTL: DefaultProvisionalTTL,
		FullTTL:        DefaultFullTTL,
	}
}

// TTL returns the lifetime used for tokens of the given scope.
func (c *Codec) TTL(scope Scope) time.Duration {
	if scope == ScopeProvisional {
		return c.ProvisionalTTL
	}
	return c.FullTTL
}

// Encode issues a signed token asserting (subject, uid, roles, scope),
// expiring after the scope's TTL.
func (c *Codec) Encode(subject, uid string, roles []string, scope Scope) (string, error) {
	if !scope.Valid() {
		return "", ErrBadScope
	}
	claims := NewClaims(subject, uid, roles, scope, c.TTL(scope), c.Issuer, time.Now().UTC())
	return c.Sign(claims)
}

// Sign produces a signed JWT string for arbitrary claims. Encode is the
// normal entry point; Sign exists for callers that need full control over
// the timestamps.
func (c *Codec) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(c.key)
}

// Decode verifies the signature and expiry of a token string and returns
// its claims. It is a pure function of the token and the codec's fixed key;
// no external state is consulted. Failures map to the package sentinels:
// ErrMalformed, ErrInvalidSig, ErrExpired, ErrIssuer.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.pub, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(c.Issuer); err != nil {
		return Claims{}, err
	}
	if !claims.Scope.Valid() {
		return Claims{}, ErrBadScope
	}

	return *claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %s", ErrMalformed, err)
	}
}
