// Package totp implements the one-time-password engine behind two-factor
// authentication: a lenient RFC 4648 Base32 codec for shared secrets, the
// HMAC-SHA1 primitive, HOTP (RFC 4226) and TOTP (RFC 6238) generation and
// windowed verification, backup-code generation and hashing, and AES-256-GCM
// sealing of secrets at rest.
//
// Everything here is a pure function of its inputs. Time and randomness are
// passed in by the caller, which keeps the package deterministic under test.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret(nil)
//	key := totp.EncodeBase32(secret)
//	uri := totp.ProvisioningURI("Acme", "alice@example.com", key)
//
//	// later, when the user types a code
//	ok := totp.Verify(totp.DecodeBase32(key), "123456", time.Now())
//
// Verification accepts codes from DefaultWindow steps on each side of the
// current one (±60s with the default 30s step). Widening the window widens
// the brute-force acceptance surface; do it only after a security review.
//
// Backup codes are formatted XXXX-XXXX and persisted as SHA-256 digests:
//
//	codes, _ := totp.GenerateBackupCodes(nil)
//	stored := totp.HashBackupCodes(codes)
//	hash, ok := totp.MatchBackupCode("abcd1234", stored)
//
// # Error Handling
//
// Decoding is lenient by default and never fails; DecodeBase32Strict is
// available when malformed input must be rejected. Other failures are
// package-level sentinels joined with the underlying cause and can be
// inspected with errors.Is.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
//   - RFC 4648 – The Base16, Base32, and Base64 Data Encodings
package totp
