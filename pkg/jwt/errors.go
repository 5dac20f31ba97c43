package jwt

import "errors"

var (
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrExpiredToken         = errors.New("jwt: token is expired")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrMissingSubject       = errors.New("jwt: missing subject")
	ErrInvalidSignature     = errors.New("jwt: invalid signature")
	ErrFailedToSignToken    = errors.New("jwt: failed to sign token")
	ErrUnexpectedIssuer     = errors.New("jwt: unexpected issuer")
	ErrMissingAuthorization = errors.New("jwt: missing authorization header")
)
