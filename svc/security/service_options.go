package security

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service.
type ServiceOption func(*service)

// WithClock overrides the time source used for session and login windows.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
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
