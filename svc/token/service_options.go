package token

import (
	"io"
	"log/slog"
	"time"
)

// ServiceOption configures a Service.
type ServiceOption func(*service)

// WithConfig overrides token lifetimes. Non-positive durations keep the defaults.
func WithConfig(cfg Config) ServiceOption {
	return func(s *service) {
		if cfg.VerificationTTL > 0 {
			s.cfg.VerificationTTL = cfg.VerificationTTL
		}
		if cfg.PasswordResetTTL > 0 {
			s.cfg.PasswordResetTTL = cfg.PasswordResetTTL
		}
		if cfg.RefreshTTL > 0 {
			s.cfg.RefreshTTL = cfg.RefreshTTL
		}
		if cfg.AccessTTL > 0 {
			s.cfg.AccessTTL = cfg.AccessTTL
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRandom overrides the entropy source for token values.
func WithRandom(r io.Reader) ServiceOption {
	return func(s *service) {
		if r != nil {
			s.random = r
		}
	}
}

// WithIDGenerator overrides how refresh token row IDs are created.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.newID = fn
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
