// Package authkit is the account-security backend of an authentication
// system: TOTP two-factor authentication with backup codes, single-use
// email verification and password-reset tokens, rotating refresh tokens,
// and an account security score.
//
// The module is organised as:
//
//   - pkg/totp: Base32, HOTP/TOTP (RFC 4226/6238), backup codes and secret sealing
//   - svc/twofactor: setup, enable, disable, verify and backup-code regeneration
//   - svc/token: verification, password-reset and refresh token lifecycle
//   - svc/security: password strength and the 0-100 security score
//   - internal/store: PostgreSQL, MongoDB and Redis persistence
//   - internal/api: the HTTP API served by cmd/server
//
// Services depend only on small store interfaces, so each ships an
// in-memory store for tests and embedding:
//
//	store := twofactor.NewMemoryStore()
//	store.AddUser("user-1")
//	svc := twofactor.NewService(store, twofactor.WithIssuer("Acme"))
//	setup, err := svc.GenerateSetup(ctx, "user-1", "user@example.com")
//
// Run the server with:
//
//	JWT_SIGNING_KEY=... API_SERVICE_KEY=... PG_CONN_URL=... go run ./cmd/server
package authkit
