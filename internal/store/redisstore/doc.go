// Package redisstore keeps verification and refresh tokens in Redis and lets
// key expiry clean them up.
//
// Keys live for the token lifetime plus a grace period, so the token service
// still sees a recently expired token and can answer "Token expired" instead
// of "Invalid token".
//
// Layout, relative to the configured prefix:
//
//	vt:<token>        JSON verification token
//	vt:id:<ident>     set of verification token values for one identifier
//	rt:<token>        JSON refresh token
//	rt:id:<id>        refresh token value for a row id
package redisstore
