package twofactor

import (
	"context"
	"time"
)

// SecurityFields is the two-factor state of one user as persisted.
type SecurityFields struct {
	Enabled     bool
	Secret      string     // Base32 secret, possibly sealed
	BackupCodes []string   // SHA-256 digests of unused codes
	VerifiedAt  *time.Time // When 2FA was last enabled
}

// SecurityPatch lists the fields to overwrite. Nil fields are left untouched.
type SecurityPatch struct {
	Enabled     *bool
	Secret      *string    // Empty string clears the secret
	BackupCodes *[]string  // Empty slice clears the set
	VerifiedAt  *time.Time // Zero time clears the timestamp
}

// Store persists two-factor state on the user record.
type Store interface {
	// FindSecurityFields returns ErrUserNotFound when the user does not exist.
	FindSecurityFields(ctx context.Context, userID string) (*SecurityFields, error)

	// UpdateSecurityFields applies patch. Returns ErrUserNotFound when the user does not exist.
	UpdateSecurityFields(ctx context.Context, userID string, patch SecurityPatch) error

	// ConsumeBackupCode removes codeHash from the user's backup codes if it is
	// present, as a single atomic operation. It reports whether a code was removed.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string) (bool, error)
}

func enablePatch(secret string, codeHashes []string, at time.Time) SecurityPatch {
	enabled := true
	return SecurityPatch{
		Enabled:     &enabled,
		Secret:      &secret,
		BackupCodes: &codeHashes,
		VerifiedAt:  &at,
	}
}

func disablePatch() SecurityPatch {
	enabled := false
	secret := ""
	codes := []string{}
	return SecurityPatch{
		Enabled:     &enabled,
		Secret:      &secret,
		BackupCodes: &codes,
		VerifiedAt:  &time.Time{},
	}
}

func backupCodesPatch(codeHashes []string) SecurityPatch {
	return SecurityPatch{BackupCodes: &codeHashes}
}
