package store

import (
	"context"
	"errors"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface the auth core consumes. Concrete
// drivers (sqlite today) implement it. Sub-repositories keep concerns tidy
// and make it obvious which operations participate in a transaction.
type Store interface {
	Users() Users
	LoginCodes() LoginCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. The code save/compare/clear sequences go
	// through here so login and verify racing on the same user serialize
	// at the store boundary.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback added.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is the lookup used during password verification.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser removes the user; the login_codes row cascades per schema.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true when no users exist (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type LoginCodes interface {
	// SaveLoginCode upserts the pending code for a user, replacing any
	// earlier code and resetting the attempt counter.
	SaveLoginCode(ctx context.Context, code domain.LoginCode) error

	// GetLoginCode returns the pending code row for a user.
	GetLoginCode(ctx context.Context, userID string) (domain.LoginCode, error)

	// IncrementLoginCodeAttempts bumps the failed-attempt counter and
	// returns the updated row.
	IncrementLoginCodeAttempts(ctx context.Context, userID string) (domain.LoginCode, error)

	// ClearLoginCode deletes the pending code for a user. Clearing an
	// absent code is not an error.
	ClearLoginCode(ctx context.Context, userID string) error

	// DeleteExpiredLoginCodes removes codes whose expiry is before now and
	// reports how many were swept. Housekeeping only; expiry is enforced at
	// verification time regardless.
	DeleteExpiredLoginCodes(ctx context.Context, now time.Time) (int64, error)
}
