// Package token issues and checks single-use email tokens and rotating
// refresh tokens.
//
// Email verification and password reset tokens share one table keyed by the
// token value. The identifier column holds the email for verification tokens
// and "reset_<email>" for password reset tokens; Kind is derived from that
// prefix so rows issued by earlier deployments keep working. Issuing a token
// removes any earlier token for the same identifier.
//
// Refresh tokens are opaque 40-byte values. RotateRefreshToken deletes the
// presented token before issuing a replacement and a signed access token, so a
// rotated-away token cannot be used again. Reuse of an old token is not
// treated as a theft signal.
package token
