package twofactor

import "errors"

var (
	ErrNotEnabled          = errors.New("2FA not enabled")
	ErrUserNotFound        = errors.New("twofactor: user not found")
	ErrSetupFailed         = errors.New("twofactor: failed to generate setup")
	ErrFailedToSaveFields  = errors.New("twofactor: failed to save security fields")
	ErrFailedToLoadFields  = errors.New("twofactor: failed to load security fields")
	ErrFailedToSealSecret  = errors.New("twofactor: failed to seal secret")
	ErrFailedToOpenSecret  = errors.New("twofactor: failed to open secret")
	ErrFailedToGenerateSet = errors.New("twofactor: failed to generate backup codes")
)

// Messages returned in VerifyResult.Error.
const (
	MsgNotEnabled   = "2FA is not enabled"
	MsgInvalidToken = "Invalid token"
)
