package security

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// RecentLoginWindow is how far back login attempts are counted.
const RecentLoginWindow = 24 * time.Hour

// StatusSource reads the persisted state a Status is derived from.
type StatusSource interface {
	// FindAccountProfile returns ErrUserNotFound when the user does not exist.
	FindAccountProfile(ctx context.Context, userID string) (*AccountProfile, error)
	CountActiveSessions(ctx context.Context, userID string, now time.Time) (int, error)
	CountRecentLoginAttempts(ctx context.Context, userID string, since time.Time) (int, error)
}

// Report is a status together with its score.
type Report struct {
	Status Status `json:"status"`
	Result
}

// Service derives security status on demand.
type Service interface {
	Status(ctx context.Context, userID string) (Status, AccountProfile, error)
	Report(ctx context.Context, userID string) (*Report, error)
}

type service struct {
	src StatusSource
	now func() time.Time
	log *slog.Logger
}

// NewService creates a Service reading from src.
// Panics if src is nil.
func NewService(src StatusSource, opts ...ServiceOption) Service {
	if src == nil {
		panic("security: StatusSource is required")
	}

	s := &service{
		src: src,
		now: time.Now,
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("security"))

	return s
}

// Status derives the current status of userID. Count failures are logged and
// reported as zero.
func (s *service) Status(ctx context.Context, userID string) (Status, AccountProfile, error) {
	profile, err := s.src.FindAccountProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.ErrorContext(ctx, "load account profile", logger.UserID(userID), logger.Error(err))
		}
		return Status{}, AccountProfile{}, err
	}

	now := s.now()

	sessions, err := s.src.CountActiveSessions(ctx, userID, now)
	if err != nil {
		s.log.WarnContext(ctx, "count active sessions", logger.UserID(userID), logger.Error(err))
		sessions = 0
	}

	attempts, err := s.src.CountRecentLoginAttempts(ctx, userID, now.Add(-RecentLoginWindow))
	if err != nil {
		s.log.WarnContext(ctx, "count login attempts", logger.UserID(userID), logger.Error(err))
		attempts = 0
	}

	strength := StrengthNone
	if profile.HasPassword {
		strength = PasswordStrength(profile.PasswordHash)
	}

	return Status{
		PasswordStrength:    strength,
		TwoFactorEnabled:    profile.TwoFactorEnabled,
		ActiveSessions:      sessions,
		RecentLoginAttempts: attempts,
		LastPasswordChange:  profile.PasswordChangedAt,
	}, *profile, nil
}

func (s *service) Report(ctx context.Context, userID string) (*Report, error) {
	status, profile, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Report{Status: status, Result: Score(profile, status)}, nil
}
