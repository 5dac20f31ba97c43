// Package jwt signs and verifies the short-lived HS256 access tokens handed out
// alongside rotated refresh tokens.
//
// Token encoding and validation are delegated to github.com/golang-jwt/jwt/v5.
// This package pins the signing method, fixes the claim layout (AccessClaims)
// and maps library failures onto its own sentinel errors so callers never
// import the upstream package.
//
// # Usage
//
//	svc, err := jwt.New([]byte(cfg.SigningKey), jwt.WithIssuer(cfg.Issuer))
//	if err != nil {
//		return err
//	}
//
//	token, err := svc.Sign(userID, now, now.Add(15*time.Minute))
//
//	claims, err := svc.ParseAccessToken(token)
//	if errors.Is(err, jwt.ErrExpiredToken) {
//		// ask the client to refresh
//	}
//
// Middleware verifies a bearer token and stores the claims in the request
// context, where ClaimsFromContext finds them:
//
//	r.With(jwt.Middleware(svc)).Get("/me", handler)
package jwt
