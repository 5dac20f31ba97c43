// Package twofactor enrolls users in TOTP two-factor authentication and
// verifies their codes.
//
// Enrollment is two-phase. GenerateSetup returns a fresh secret, a QR data URL
// and a batch of backup codes without persisting anything; Enable persists them
// only after the user proves possession with a valid code. VerifyToken accepts
// either a TOTP code or an unused backup code. Backup codes are consumed
// through the store's atomic ConsumeBackupCode so concurrent attempts with the
// same code cannot both succeed.
//
// Failures on the verification path are reported in VerifyResult with a
// uniform message so a caller cannot tell which factor failed. Mutating
// operations log and return infrastructure errors; GetStatus degrades to a
// zero Status instead.
//
// Backup codes are stored as SHA-256 digests. When an encryption key is
// configured the TOTP secret is sealed with AES-256-GCM before it reaches the
// store; rows written before the key was configured stay readable.
package twofactor
