// Package api exposes the two-factor, token and security services as JSON
// endpoints under /v1.
//
// Routes under /v1/2fa and /v1/security need a bearer access token; the
// user is the token subject. Token issuance routes are for trusted backends
// and need the X-Service-Key header. Every response uses the handler.Envelope
// shape.
package api
