package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authkit/svc/token"
)

var (
	_ token.VerificationStore    = (*Store)(nil)
	_ token.VerificationReplacer = (*Store)(nil)
	_ token.RefreshStore         = (*Store)(nil)
)

func (s *Store) FindVerificationToken(ctx context.Context, value string) (*token.VerificationToken, error) {
	var t token.VerificationToken
	err := s.db.QueryRow(ctx,
		`SELECT identifier, token, expires FROM verification_tokens WHERE token = $1`, value,
	).Scan(&t.Identifier, &t.Token, &t.Expires)
	if err != nil {
		if missing(err) {
			return nil, token.ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteVerificationToken(ctx context.Context, value string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM verification_tokens WHERE token = $1`, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}

func (s *Store) DeleteVerificationTokensByIdentifier(ctx context.Context, identifier string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM verification_tokens WHERE identifier = $1`, identifier)
	return err
}

func (s *Store) CreateVerificationToken(ctx context.Context, t token.VerificationToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO verification_tokens (identifier, token, expires) VALUES ($1, $2, $3)`,
		t.Identifier, t.Token, t.Expires,
	)
	return err
}

// ReplaceVerificationToken drops earlier tokens for the identifier and inserts t in one transaction.
func (s *Store) ReplaceVerificationToken(ctx context.Context, t token.VerificationToken) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM verification_tokens WHERE identifier = $1`, t.Identifier,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO verification_tokens (identifier, token, expires) VALUES ($1, $2, $3)`,
			t.Identifier, t.Token, t.Expires,
		)
		return err
	})
}

func (s *Store) FindRefreshToken(ctx context.Context, value string) (*token.RefreshToken, error) {
	var t token.RefreshToken
	err := s.db.QueryRow(ctx, `
		SELECT id::text, token, user_id::text, expires, created_at
		FROM refresh_tokens WHERE token = $1`, value,
	).Scan(&t.ID, &t.Token, &t.UserID, &t.Expires, &t.CreatedAt)
	if err != nil {
		if missing(err) {
			return nil, token.ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, t token.RefreshToken) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO refresh_tokens (id, token, user_id, expires, created_at) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Token, t.UserID, t.Expires, t.CreatedAt,
	)
	return err
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		if missing(err) {
			return token.ErrTokenNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return token.ErrTokenNotFound
	}
	return nil
}
