package twofactor

import (
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authkit/pkg/totp"
)

// ServiceOption configures a Service.
type ServiceOption func(*service)

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) ServiceOption {
	return func(s *service) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithTOTPOptions overrides digits, step or window for generation and verification.
func WithTOTPOptions(opts ...totp.Option) ServiceOption {
	return func(s *service) {
		s.totpOpts = append(s.totpOpts, opts...)
	}
}

// WithEncryptionKey seals secrets with AES-256-GCM before they are stored.
// The key must be totp.AESKeySize bytes; a nil key disables sealing.
func WithEncryptionKey(key []byte) ServiceOption {
	return func(s *service) {
		s.sealKey = key
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandom overrides the entropy source for secrets and backup codes.
func WithRandom(r io.Reader) ServiceOption {
	return func(s *service) {
		if r != nil {
			s.random = r
		}
	}
}

// WithQRRenderer overrides the function that turns the provisioning URI into
// an image URL.
func WithQRRenderer(render func(text string) (string, error)) ServiceOption {
	return func(s *service) {
		if render != nil {
			s.renderQR = render
		}
	}
}

func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}
