package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/authkit/pkg/pg"
)

// ErrEmailTaken is returned by CreateUser for a duplicate email.
var ErrEmailTaken = errors.New("pgstore: email already registered")

// NewUser is the input of CreateUser.
type NewUser struct {
	Email         string
	EmailVerified bool
	Phone         string
	PhoneVerified bool
	PasswordHash  string
}

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (string, error) {
	var passwordChangedAt *time.Time
	if u.PasswordHash != "" {
		now := time.Now().UTC()
		passwordChangedAt = &now
	}

	var id string
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (email, email_verified, phone, phone_verified, password_hash, password_changed_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6)
		RETURNING id::text`,
		u.Email, u.EmailVerified, u.Phone, u.PhoneVerified, u.PasswordHash, passwordChangedAt,
	).Scan(&id)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return id, nil
}

// CreateSession records a session for userID that lasts until expiresAt.
func (s *Store) CreateSession(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	var id string
	err := s.db.QueryRow(ctx,
		`INSERT INTO sessions (user_id, expires_at) VALUES ($1, $2) RETURNING id::text`,
		userID, expiresAt,
	).Scan(&id)
	return id, err
}

// RevokeSession marks a session revoked. Revoking twice is a no-op.
func (s *Store) RevokeSession(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if missing(err) {
		return nil
	}
	return err
}

// RecordLoginAttempt stores the outcome of one sign-in attempt.
func (s *Store) RecordLoginAttempt(ctx context.Context, userID string, succeeded bool, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO login_attempts (user_id, succeeded, created_at) VALUES ($1, $2, $3)`,
		userID, succeeded, at,
	)
	return err
}
