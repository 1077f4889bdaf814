package sqlite

import (
	"context"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/domain"
)

type loginCodesRepo struct {
	q querier
}

func (r *loginCodesRepo) SaveLoginCode(ctx context.Context, code domain.LoginCode) error {
	createdAt := code.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Upsert: a fresh login replaces any code already in flight and
	// resets the attempt counter.
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO login_codes (user_id, code_hash, attempts, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   code_hash = excluded.code_hash,
		   attempts = excluded.attempts,
		   expires_at = excluded.expires_at,
		   created_at = excluded.created_at`,
		code.UserID, code.CodeHash, code.Attempts, code.ExpiresAt.UTC(), createdAt,
	)
	return err
}

func (r *loginCodesRepo) GetLoginCode(ctx context.Context, userID string) (domain.LoginCode, error) {
	var c domain.LoginCode
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, code_hash, attempts, expires_at, created_at
		 FROM login_codes WHERE user_id = ?`, userID,
	).Scan(&c.UserID, &c.CodeHash, &c.Attempts, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.LoginCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *loginCodesRepo) IncrementLoginCodeAttempts(ctx context.Context, userID string) (domain.LoginCode, error) {
	var c domain.LoginCode
	err := r.q.QueryRowContext(ctx,
		`UPDATE login_codes SET attempts = attempts + 1 WHERE user_id = ?
		 RETURNING user_id, code_hash, attempts, expires_at, created_at`, userID,
	).Scan(&c.UserID, &c.CodeHash, &c.Attempts, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.LoginCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *loginCodesRepo) ClearLoginCode(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM login_codes WHERE user_id = ?`, userID)
	return err
}

func (r *loginCodesRepo) DeleteExpiredLoginCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM login_codes WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
