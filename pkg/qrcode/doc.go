// Package qrcode renders otpauth provisioning URIs as QR images that an
// authenticator app can scan.
//
// Images are PNG encoded by github.com/skip2/go-qrcode. DataURL returns the
// image as a data URI suitable for an <img> src attribute, which is what the
// two-factor setup flow hands back to the page:
//
//	uri := totp.ProvisioningURI("Acme", "alice@example.com", secret)
//	src, err := qrcode.DataURL(uri)
//
// A Renderer carries a non-default size or recovery level:
//
//	r := qrcode.NewRenderer(qrcode.WithSize(320), qrcode.WithRecoveryLevel(qrcode.High))
//	src, err := r.DataURL(uri)
package qrcode
