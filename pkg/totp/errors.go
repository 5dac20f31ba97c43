package totp

import "errors"

var (
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrFailedToGenerateSecretKey     = errors.New("failed to generate TOTP secret key")
	ErrFailedToGenerateBackupCode    = errors.New("failed to generate backup code")
	ErrInvalidBackupCodeCount        = errors.New("invalid backup code count, must be greater than 0")
	ErrFailedToSealSecret            = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret            = errors.New("failed to open TOTP secret")
	ErrSecretNotSealed               = errors.New("TOTP secret is not sealed")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
)
