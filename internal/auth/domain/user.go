package domain

import "time"

// User is the stored credential record. Roles are kept in declaration order
// for display; authorization treats them as a set.
type User struct {
	ID           string
	Username     string
	Email        string // destination for one-time login codes
	PasswordHash string // argon2id, PHC encoded
	Roles        []string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the immutable projection of a user that flows through tokens
// and request context.
type Identity struct {
	ID       string
	Username string
	Roles    []string
}

// Identity derives the token-facing view of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Roles: u.Roles}
}
