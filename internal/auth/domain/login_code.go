package domain

import "time"

// LoginCode is the persisted one-time code row for a pending two-factor
// login. At most one row exists per user; a new login overwrites any
// earlier one. Only the SHA-256 fingerprint of the code is stored.
type LoginCode struct {
	UserID    string
	CodeHash  string
	Attempts  int // failed verification attempts against this code
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (c LoginCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
