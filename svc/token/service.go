package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

const (
	verificationTokenBytes = 32
	refreshTokenBytes      = 40
)

// Service is the token lifecycle API.
type Service interface {
	IssueVerificationToken(ctx context.Context, email string) (*VerificationToken, error)
	IssuePasswordResetToken(ctx context.Context, email string) (*VerificationToken, error)
	Verify(ctx context.Context, token string) VerifyResult
	Peek(ctx context.Context, token string) VerifyResult
	IssueRefreshToken(ctx context.Context, userID string) (string, error)
	RotateRefreshToken(ctx context.Context, oldToken string) (*TokenPair, error)
	Revoke(ctx context.Context, token string) error
}

type service struct {
	verifications VerificationStore
	refreshes     RefreshStore
	signer        Signer
	cfg           Config
	now           func() time.Time
	random        io.Reader
	newID         func() string
	log           *slog.Logger
}

// NewService wires the token stores and access token signer.
// Panics if any of them is nil.
func NewService(verifications VerificationStore, refreshes RefreshStore, signer Signer, opts ...ServiceOption) Service {
	if verifications == nil {
		panic(ErrMissingVerificationStore)
	}
	if refreshes == nil {
		panic(ErrMissingRefreshStore)
	}
	if signer == nil {
		panic(ErrMissingSigner)
	}

	s := &service{
		verifications: verifications,
		refreshes:     refreshes,
		signer:        signer,
		cfg:           DefaultConfig(),
		now:           time.Now,
		random:        rand.Reader,
		newID:         uuid.NewString,
		log:           logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("token"))

	return s
}

func (s *service) IssueVerificationToken(ctx context.Context, email string) (*VerificationToken, error) {
	return s.issue(ctx, email, email, s.cfg.VerificationTTL)
}

func (s *service) IssuePasswordResetToken(ctx context.Context, email string) (*VerificationToken, error) {
	return s.issue(ctx, email, passwordResetIdentifier(email), s.cfg.PasswordResetTTL)
}

func (s *service) issue(ctx context.Context, email, identifier string, ttl time.Duration) (*VerificationToken, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmptyEmail
	}

	value, err := s.randomHex(verificationTokenBytes)
	if err != nil {
		return nil, err
	}

	t := VerificationToken{
		Identifier: identifier,
		Token:      value,
		Expires:    s.now().Add(ttl),
	}

	if err := s.replace(ctx, t); err != nil {
		s.log.ErrorContext(ctx, "store verification token", logger.TokenKind(string(t.Kind())), logger.Error(err))
		return nil, errors.Join(ErrFailedToStoreToken, err)
	}

	return &t, nil
}

func (s *service) replace(ctx context.Context, t VerificationToken) error {
	if r, ok := s.verifications.(VerificationReplacer); ok {
		return r.ReplaceVerificationToken(ctx, t)
	}
	if err := s.verifications.DeleteVerificationTokensByIdentifier(ctx, t.Identifier); err != nil {
		return err
	}
	return s.verifications.CreateVerificationToken(ctx, t)
}

// Verify checks token and consumes it on success.
func (s *service) Verify(ctx context.Context, token string) VerifyResult {
	return s.check(ctx, token, true)
}

// Peek checks token without consuming it, for multi-step forms that verify
// again on submit.
func (s *service) Peek(ctx context.Context, token string) VerifyResult {
	return s.check(ctx, token, false)
}

func (s *service) check(ctx context.Context, token string, consume bool) VerifyResult {
	if token == "" {
		return VerifyResult{Error: MsgInvalidToken}
	}

	t, err := s.verifications.FindVerificationToken(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			s.log.ErrorContext(ctx, "load verification token", logger.Error(err))
		}
		return VerifyResult{Error: MsgInvalidToken}
	}

	if t.IsExpired(s.now()) {
		if err := s.verifications.DeleteVerificationToken(ctx, t.Token); err != nil && !errors.Is(err, ErrTokenNotFound) {
			s.log.WarnContext(ctx, "purge expired verification token", logger.TokenKind(string(t.Kind())), logger.Error(err))
		}
		return VerifyResult{Error: MsgTokenExpired}
	}

	if consume {
		if err := s.verifications.DeleteVerificationToken(ctx, t.Token); err != nil {
			if !errors.Is(err, ErrTokenNotFound) {
				s.log.ErrorContext(ctx, "consume verification token", logger.TokenKind(string(t.Kind())), logger.Error(err))
			}
			return VerifyResult{Error: MsgInvalidToken}
		}
	}

	return VerifyResult{
		Valid:      true,
		Email:      t.Email(),
		Kind:       t.Kind(),
		Identifier: t.Identifier,
	}
}

func (s *service) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	value, err := s.randomHex(refreshTokenBytes)
	if err != nil {
		return "", err
	}

	now := s.now()
	t := RefreshToken{
		ID:        s.newID(),
		Token:     value,
		UserID:    userID,
		Expires:   now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.refreshes.CreateRefreshToken(ctx, t); err != nil {
		s.log.ErrorContext(ctx, "store refresh token", logger.UserID(userID), logger.Error(err))
		return "", errors.Join(ErrFailedToStoreToken, err)
	}

	return value, nil
}

// RotateRefreshToken exchanges oldToken for a new refresh token and access
// token. The old token is deleted first; when two rotations race, only the
// one whose delete succeeds continues.
func (s *service) RotateRefreshToken(ctx context.Context, oldToken string) (*TokenPair, error) {
	if oldToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	old, err := s.refreshes.FindRefreshToken(ctx, oldToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.log.ErrorContext(ctx, "load refresh token", logger.Error(err))
		return nil, errors.Join(ErrFailedToLoadToken, err)
	}

	now := s.now()
	if old.IsExpired(now) {
		if err := s.refreshes.DeleteRefreshToken(ctx, old.ID); err != nil && !errors.Is(err, ErrTokenNotFound) {
			s.log.WarnContext(ctx, "purge expired refresh token", logger.UserID(old.UserID), logger.Error(err))
		}
		return nil, ErrInvalidRefreshToken
	}

	if err := s.refreshes.DeleteRefreshToken(ctx, old.ID); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		s.log.ErrorContext(ctx, "delete rotated refresh token", logger.UserID(old.UserID), logger.Error(err))
		return nil, errors.Join(ErrFailedToDeleteToken, err)
	}

	refresh, err := s.IssueRefreshToken(ctx, old.UserID)
	if err != nil {
		return nil, err
	}

	exp := now.Add(s.cfg.AccessTTL)
	access, err := s.signer.Sign(old.UserID, now, exp)
	if err != nil {
		s.log.ErrorContext(ctx, "sign access token", logger.UserID(old.UserID), logger.Error(err))
		return nil, errors.Join(ErrFailedToSignToken, err)
	}

	s.log.DebugContext(ctx, "refresh token rotated", logger.UserID(old.UserID), logger.Event("refresh_token_rotated"))
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		Exp:          exp.Unix(),
	}, nil
}

// Revoke deletes a refresh token. A token that is already gone counts as revoked.
func (s *service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	t, err := s.refreshes.FindRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil
		}
		s.log.ErrorContext(ctx, "load refresh token", logger.Error(err))
		return errors.Join(ErrFailedToLoadToken, err)
	}

	if err := s.refreshes.DeleteRefreshToken(ctx, t.ID); err != nil && !errors.Is(err, ErrTokenNotFound) {
		s.log.ErrorContext(ctx, "revoke refresh token", logger.UserID(t.UserID), logger.Error(err))
		return errors.Join(ErrFailedToDeleteToken, err)
	}

	s.log.InfoContext(ctx, "refresh token revoked", logger.UserID(t.UserID), logger.Event("refresh_token_revoked"))
	return nil
}

func (s *service) randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateToken, err)
	}
	return hex.EncodeToString(buf), nil
}
