package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/domain"
	"github.com/franpulido/ticketlog/internal/auth/notify"
	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/pkg/cryptox"
	"github.com/franpulido/ticketlog/pkg/jwtx"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

const (
	// MaxCodeAttempts is how many wrong guesses a pending code survives
	// before it is invalidated.
	MaxCodeAttempts = 5

	// DefaultCodeTTL bounds how long a dispatched code stays redeemable.
	DefaultCodeTTL = 10 * time.Minute

	// DefaultDispatchTimeout bounds the out-of-band delivery attempt.
	DefaultDispatchTimeout = 10 * time.Second
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrCodeExpired        = errors.New("code_expired")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
	ErrInvalidToken       = errors.New("invalid_token")
)

// AuthService orchestrates the two-phase login: password verification
// issuing a provisional token plus a dispatched one-time code, then code
// verification upgrading to a full token.
type AuthService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	Dispatcher notify.Dispatcher

	CodeTTL         time.Duration
	DispatchTimeout time.Duration
}

// LoginResult is what a successful first phase returns. Dispatched is
// false when the notification channel failed; the login still succeeded.
type LoginResult struct {
	Token      string
	Identity   domain.Identity
	Dispatched bool
}

// Login verifies the password, persists a fresh one-time code (replacing
// any code already in flight for this user) and dispatches it out of band.
// Unknown usernames and wrong passwords yield the same error so the
// endpoint can't be used for username enumeration. A delivery failure is
// logged and does not abort the login.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !u.Enabled {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return LoginResult{}, ErrInvalidCredentials
		}
		// Unparseable stored hash: treat as a credential failure for the
		// caller, but make sure it reaches the logs.
		l.Error("stored password hash rejected", "user_id", u.ID, "err", err)
		return LoginResult{}, ErrInvalidCredentials
	}

	code, err := cryptox.GenerateNumericCode(cryptox.CodeDigits)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate login code: %w", err)
	}

	now := time.Now().UTC()
	if err := s.Store.LoginCodes().SaveLoginCode(ctx, domain.LoginCode{
		UserID:    u.ID,
		CodeHash:  cryptox.FingerprintCode(code),
		Attempts:  0,
		ExpiresAt: now.Add(s.codeTTL()),
		CreatedAt: now,
	}); err != nil {
		return LoginResult{}, fmt.Errorf("persist login code: %w", err)
	}

	token, err := s.Codec.Encode(u.Username, u.ID, u.Roles, jwtx.ScopeProvisional)
	if err != nil {
		return LoginResult{}, fmt.Errorf("encode provisional token: %w", err)
	}

	dispatched := s.dispatchCode(ctx, u, code)

	return LoginResult{
		Token:      token,
		Identity:   u.Identity(),
		Dispatched: dispatched,
	}, nil
}

// VerifyCode completes the second phase. The provisional token names the
// identity; the submitted code is compared by fingerprint against the
// stored one inside a single store transaction, so a login and a verify
// racing on the same user serialize at the store boundary. On a match the
// code is consumed and a full-scope token is issued. A wrong guess leaves
// the code in place but burns an attempt; at MaxCodeAttempts the code is
// invalidated.
func (s *AuthService) VerifyCode(ctx context.Context, provisionalToken, submittedCode string) (string, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.Decode(provisionalToken)
	if err != nil {
		return "", err
	}
	if claims.UID == "" {
		return "", ErrInvalidToken
	}

	submittedHash := cryptox.FingerprintCode(submittedCode)
	now := time.Now().UTC()

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		code, err := tx.LoginCodes().GetLoginCode(ctx, claims.UID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCode
			}
			return err
		}

		if code.Expired(now) {
			_ = tx.LoginCodes().ClearLoginCode(ctx, claims.UID)
			return ErrCodeExpired
		}

		if code.Attempts >= MaxCodeAttempts {
			if err := tx.LoginCodes().ClearLoginCode(ctx, claims.UID); err != nil {
				return err
			}
			l.Warn("login code locked out", "user_id", claims.UID, "attempts", code.Attempts)
			return ErrTooManyAttempts
		}

		if !cryptox.ConstantTimeEquals(submittedHash, code.CodeHash) {
			updated, err := tx.LoginCodes().IncrementLoginCodeAttempts(ctx, claims.UID)
			if err != nil {
				return err
			}
			if updated.Attempts >= MaxCodeAttempts {
				if err := tx.LoginCodes().ClearLoginCode(ctx, claims.UID); err != nil {
					return err
				}
				l.Warn("login code locked out", "user_id", claims.UID, "attempts", updated.Attempts)
				return ErrTooManyAttempts
			}
			return ErrInvalidCode
		}

		// Consume the code and reload the user so the full token carries
		// current roles, not the ones captured at password time.
		if err := tx.LoginCodes().ClearLoginCode(ctx, claims.UID); err != nil {
			return err
		}
		user, err = tx.Users().GetUserByID(ctx, claims.UID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	token, err := s.Codec.Encode(user.Username, user.ID, user.Roles, jwtx.ScopeFull)
	if err != nil {
		return "", fmt.Errorf("encode full token: %w", err)
	}
	return token, nil
}

// dispatchCode delivers the code and reports whether delivery succeeded.
// Failures are an operational concern, not the client's.
func (s *AuthService) dispatchCode(ctx context.Context, u domain.User, code string) bool {
	if s.Dispatcher == nil || u.Email == "" {
		slogx.FromContext(ctx).Warn("no notification channel for login code", "user_id", u.ID)
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dispatchTimeout())
	defer cancel()

	subject := "Your login verification code"
	body := fmt.Sprintf("Your login verification code is: %s\n\nIt expires in %s.", code, s.codeTTL())
	if err := s.Dispatcher.Send(sendCtx, u.Email, subject, body); err != nil {
		slogx.FromContext(ctx).Error("login code dispatch failed", "user_id", u.ID, "err", err)
		return false
	}
	return true
}

func (s *AuthService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

func (s *AuthService) dispatchTimeout() time.Duration {
	if s.DispatchTimeout > 0 {
		return s.DispatchTimeout
	}
	return DefaultDispatchTimeout
}
