package token

import (
	"strings"
	"time"
)

// Kind is the purpose of a verification token.
type Kind string

const (
	KindEmailVerification Kind = "EMAIL_VERIFICATION"
	KindPasswordReset     Kind = "PASSWORD_RESET"
)

// PasswordResetPrefix marks password reset identifiers.
const PasswordResetPrefix = "reset_"

// VerificationToken proves control of an email address.
type VerificationToken struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"token"`
	Expires    time.Time `json:"expires"`
}

// Kind derives the purpose from the identifier prefix.
func (t VerificationToken) Kind() Kind {
	return identifierKind(t.Identifier)
}

// Email strips the purpose prefix from the identifier.
func (t VerificationToken) Email() string {
	return strings.TrimPrefix(t.Identifier, PasswordResetPrefix)
}

// IsExpired reports whether the token expired before now.
func (t VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.Expires)
}

// RefreshToken is a long-lived credential exchanged for access tokens.
type RefreshToken struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Expires   time.Time `json:"expires"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the token expired before now.
func (t RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.Expires)
}

// TokenPair is the result of a refresh token rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Exp          int64  `json:"exp"` // Access token expiry, unix seconds
}

// VerifyResult is the outcome of Verify. Error is empty when Valid.
type VerifyResult struct {
	Valid      bool   `json:"valid"`
	Email      string `json:"email,omitempty"`
	Kind       Kind   `json:"type,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Error      string `json:"error,omitempty"`
}

func identifierKind(identifier string) Kind {
	if strings.HasPrefix(identifier, PasswordResetPrefix) {
		return KindPasswordReset
	}
	return KindEmailVerification
}

func passwordResetIdentifier(email string) string {
	return PasswordResetPrefix + email
}
