package pgstore

import (
	"context"
	"time"

	"github.com/dmitrymomot/authkit/svc/security"
)

var _ security.StatusSource = (*Store)(nil)

func (s *Store) FindAccountProfile(ctx context.Context, userID string) (*security.AccountProfile, error) {
	var (
		p    security.AccountProfile
		hash *string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id::text, email, email_verified, phone_verified, password_hash,
		       password_changed_at, two_factor_enabled
		FROM users WHERE id = $1`, userID,
	).Scan(&p.UserID, &p.Email, &p.EmailVerified, &p.PhoneVerified, &hash,
		&p.PasswordChangedAt, &p.TwoFactorEnabled)
	if err != nil {
		if missing(err) {
			return nil, security.ErrUserNotFound
		}
		return nil, err
	}
	if hash != nil && *hash != "" {
		p.HasPassword = true
		p.PasswordHash = *hash
	}
	return &p, nil
}

func (s *Store) CountActiveSessions(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2`, userID, now,
	).Scan(&n)
	if missing(err) {
		return 0, nil
	}
	return n, err
}

func (s *Store) CountRecentLoginAttempts(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM login_attempts
		WHERE user_id = $1 AND created_at >= $2`, userID, since,
	).Scan(&n)
	if missing(err) {
		return 0, nil
	}
	return n, err
}
