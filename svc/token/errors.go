package token

import "errors"

var (
	ErrTokenNotFound            = errors.New("token: not found")
	ErrInvalidRefreshToken      = errors.New("Invalid or expired refresh token") //nolint:staticcheck // shown to users verbatim
	ErrFailedToGenerateToken    = errors.New("token: failed to generate token")
	ErrFailedToStoreToken       = errors.New("token: failed to store token")
	ErrFailedToDeleteToken      = errors.New("token: failed to delete token")
	ErrFailedToSignToken        = errors.New("token: failed to sign access token")
	ErrFailedToLoadToken        = errors.New("token: failed to load token")
	ErrEmptyEmail               = errors.New("token: email is required")
	ErrEmptyUserID              = errors.New("token: user id is required")
	ErrMissingSigner            = errors.New("token: access token signer is required")
	ErrMissingRefreshStore      = errors.New("token: refresh token store is required")
	ErrMissingVerificationStore = errors.New("token: verification token store is required")
)

// Messages returned in VerifyResult.Error.
const (
	MsgInvalidToken = "Invalid token"
	MsgTokenExpired = "Token expired"
)
