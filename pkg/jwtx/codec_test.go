package jwtx_test

import (
	"testing"
	"time"

	"github.com/franpulido/ticketlog/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewEphemeralCodec("ticketlog-auth")
	require.NoError(t, err)
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	tests := []struct {
		name  string
		roles []string
		scope jwtx.Scope
	}{
		{"provisional single role", []string{"ROLE_USER"}, jwtx.ScopeProvisional},
		{"full multiple roles", []string{"ROLE_ADMIN", "ROLE_USER"}, jwtx.ScopeFull},
		{"full no roles", nil, jwtx.ScopeFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Encode("alice", "01JTESTUSERID0000000000000", tt.roles, tt.scope)
			require.NoError(t, err)

			claims, err := c.Decode(token)
			require.NoError(t, err)
			require.Equal(t, "alice", claims.Subject)
			require.Equal(t, "01JTESTUSERID0000000000000", claims.UID)
			require.Equal(t, tt.roles, claims.Roles)
			require.Equal(t, tt.scope, claims.Scope)
		})
	}
}

func TestEncodeRejectsUnknownScope(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	_, err := c.Encode("alice", "uid", nil, jwtx.Scope("superuser"))
	require.ErrorIs(t, err, jwtx.ErrBadScope)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	// Validly signed but already expired.
	claims := jwtx.NewClaims("alice", "uid", nil, jwtx.ScopeFull,
		time.Minute, c.Issuer, time.Now().UTC().Add(-10*time.Minute))
	token, err := c.Sign(claims)
	require.NoError(t, err)

	_, err = c.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	t.Parallel()

	issuing := newTestCodec(t)
	verifying := newTestCodec(t)

	token, err := issuing.Encode("alice", "uid", nil, jwtx.ScopeFull)
	require.NoError(t, err)

	_, err = verifying.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	for _, s := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := c.Decode(s)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", s)
	}
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	token, err := c.Encode("alice", "uid", []string{"ROLE_USER"}, jwtx.ScopeProvisional)
	require.NoError(t, err)

	// Flip a character in the payload segment.
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	_, err = c.Decode(string(tampered))
	require.Error(t, err)
}

func TestDecodeRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	token, err := c.Encode("alice", "uid", nil, jwtx.ScopeFull)
	require.NoError(t, err)

	c.Issuer = "someone-else"
	_, err = c.Decode(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestTTLPerScope(t *testing.T) {
	t.Parallel()
	c := newTestCodec(t)

	require.Equal(t, jwtx.DefaultProvisionalTTL, c.TTL(jwtx.ScopeProvisional))
	require.Equal(t, jwtx.DefaultFullTTL, c.TTL(jwtx.ScopeFull))
	require.Less(t, c.TTL(jwtx.ScopeProvisional), c.TTL(jwtx.ScopeFull))
}
