package token

import (
	"context"
	"time"
)

// VerificationStore persists email verification and password reset tokens.
type VerificationStore interface {
	// FindVerificationToken looks a token up by value. Returns ErrTokenNotFound when absent.
	FindVerificationToken(ctx context.Context, token string) (*VerificationToken, error)
	// DeleteVerificationToken returns ErrTokenNotFound when nothing was deleted.
	DeleteVerificationToken(ctx context.Context, token string) error
	DeleteVerificationTokensByIdentifier(ctx context.Context, identifier string) error
	CreateVerificationToken(ctx context.Context, t VerificationToken) error
}

// VerificationReplacer is implemented by stores that can delete earlier tokens
// for an identifier and insert a new one in a single transaction. When the
// store does not implement it the two steps run separately.
type VerificationReplacer interface {
	ReplaceVerificationToken(ctx context.Context, t VerificationToken) error
}

// RefreshStore persists refresh tokens.
type RefreshStore interface {
	// FindRefreshToken looks a token up by value. Returns ErrTokenNotFound when absent.
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	CreateRefreshToken(ctx context.Context, t RefreshToken) error
	// DeleteRefreshToken returns ErrTokenNotFound when nothing was deleted.
	DeleteRefreshToken(ctx context.Context, id string) error
}

// Signer issues access tokens. *jwt.Service satisfies it.
type Signer interface {
	Sign(subject string, issuedAt, expiresAt time.Time) (string, error)
}
