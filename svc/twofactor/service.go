package twofactor

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/qrcode"
	"github.com/dmitrymomot/authkit/pkg/totp"
)

// Service is the two-factor enrollment and verification API.
type Service interface {
	GenerateSetup(ctx context.Context, userID, email string) (*Setup, error)
	Enable(ctx context.Context, userID, secret, token string, backupCodes []string) (bool, error)
	Disable(ctx context.Context, userID, token string) (bool, error)
	VerifyToken(ctx context.Context, userID, token string) VerifyResult
	RegenerateBackupCodes(ctx context.Context, userID, token string) ([]string, error)
	GetStatus(ctx context.Context, userID string) Status
}

// Setup is the material shown to the user during enrollment. It is never
// persisted by GenerateSetup.
type Setup struct {
	Secret         string   `json:"secret"`           // Base32, no padding
	QRCodeURL      string   `json:"qr_code_url"`      // data:image/png;base64,...
	ManualEntryKey string   `json:"manual_entry_key"` // Secret in groups of four
	BackupCodes    []string `json:"backup_codes"`
}

// VerifyResult is the outcome of VerifyToken. Error is empty on success.
type VerifyResult struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	BackupCodeUsed bool   `json:"backup_code_used,omitempty"`
}

// Status is the read-only two-factor projection of a user.
type Status struct {
	Enabled          bool       `json:"enabled"`
	VerifiedAt       *time.Time `json:"verified_at"`
	BackupCodesCount int        `json:"backup_codes_count"`
}

type service struct {
	store    Store
	issuer   string
	totpOpts []totp.Option
	sealKey  []byte
	now      func() time.Time
	random   io.Reader
	renderQR func(string) (string, error)
	log      *slog.Logger
}

// NewService creates a Service backed by store.
// Panics if store is nil.
func NewService(store Store, opts ...ServiceOption) Service {
	if store == nil {
		panic("twofactor: Store is required")
	}

	s := &service{
		store:    store,
		issuer:   "AuthKit",
		now:      time.Now,
		random:   rand.Reader,
		renderQR: qrcode.DataURL,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("twofactor"))

	return s
}

// NewServiceFromConfig creates a Service from loaded TOTP configuration.
func NewServiceFromConfig(store Store, cfg totp.Config, opts ...ServiceOption) (Service, error) {
	key, err := totp.DecodeEncryptionKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	base := []ServiceOption{
		WithIssuer(cfg.Issuer),
		WithTOTPOptions(cfg.Options()...),
		WithEncryptionKey(key),
	}
	return NewService(store, append(base, opts...)...), nil
}

func (s *service) GenerateSetup(ctx context.Context, userID, email string) (*Setup, error) {
	raw, err := totp.GenerateSecret(s.random)
	if err != nil {
		s.log.ErrorContext(ctx, "generate two-factor secret", logger.UserID(userID), logger.Error(err))
		return nil, errors.Join(ErrSetupFailed, err)
	}
	secret := totp.EncodeBase32(raw)

	qr, err := s.renderQR(totp.ProvisioningURI(s.issuer, email, secret))
	if err != nil {
		s.log.ErrorContext(ctx, "render two-factor qr code", logger.UserID(userID), logger.Error(err))
		return nil, errors.Join(ErrSetupFailed, err)
	}

	codes, err := totp.GenerateBackupCodes(s.random)
	if err != nil {
		s.log.ErrorContext(ctx, "generate backup codes", logger.UserID(userID), logger.Error(err))
		return nil, errors.Join(ErrSetupFailed, err)
	}

	return &Setup{
		Secret:         secret,
		QRCodeURL:      qr,
		ManualEntryKey: groupKey(secret),
		BackupCodes:    codes,
	}, nil
}

func (s *service) Enable(ctx context.Context, userID, secret, token string, backupCodes []string) (bool, error) {
	if !totp.Verify(totp.DecodeBase32(secret), strings.TrimSpace(token), s.now(), s.totpOpts...) {
		return false, nil
	}

	stored, err := s.seal(secret)
	if err != nil {
		s.log.ErrorContext(ctx, "seal two-factor secret", logger.UserID(userID), logger.Error(err))
		return false, err
	}

	patch := enablePatch(stored, totp.HashBackupCodes(backupCodes), s.now())
	if err := s.store.UpdateSecurityFields(ctx, userID, patch); err != nil {
		s.log.ErrorContext(ctx, "enable two-factor", logger.UserID(userID), logger.Error(err))
		return false, errors.Join(ErrFailedToSaveFields, err)
	}

	s.log.InfoContext(ctx, "two-factor enabled", logger.UserID(userID), logger.Event("two_factor_enabled"))
	return true, nil
}

func (s *service) Disable(ctx context.Context, userID, token string) (bool, error) {
	fields, err := s.store.FindSecurityFields(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "load security fields", logger.UserID(userID), logger.Error(err))
		return false, errors.Join(ErrFailedToLoadFields, err)
	}
	if fields.Secret == "" {
		return false, ErrNotEnabled
	}

	secret, err := s.open(fields.Secret)
	if err != nil {
		s.log.ErrorContext(ctx, "open two-factor secret", logger.UserID(userID), logger.Error(err))
		return false, err
	}

	if !totp.Verify(totp.DecodeBase32(secret), strings.TrimSpace(token), s.now(), s.totpOpts...) {
		return false, nil
	}

	if err := s.store.UpdateSecurityFields(ctx, userID, disablePatch()); err != nil {
		s.log.ErrorContext(ctx, "disable two-factor", logger.UserID(userID), logger.Error(err))
		return false, errors.Join(ErrFailedToSaveFields, err)
	}

	s.log.InfoContext(ctx, "two-factor disabled", logger.UserID(userID), logger.Event("two_factor_disabled"))
	return true, nil
}

// VerifyToken tries the TOTP code first so ordinary logins never burn a
// backup code.
func (s *service) VerifyToken(ctx context.Context, userID, token string) VerifyResult {
	fields, err := s.store.FindSecurityFields(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return VerifyResult{Error: MsgNotEnabled}
		}
		s.log.ErrorContext(ctx, "load security fields", logger.UserID(userID), logger.Error(err))
		return VerifyResult{Error: MsgInvalidToken}
	}
	if !fields.Enabled || fields.Secret == "" {
		return VerifyResult{Error: MsgNotEnabled}
	}

	secret, err := s.open(fields.Secret)
	if err != nil {
		s.log.ErrorContext(ctx, "open two-factor secret", logger.UserID(userID), logger.Error(err))
		return VerifyResult{Error: MsgInvalidToken}
	}

	if totp.Verify(totp.DecodeBase32(secret), strings.TrimSpace(token), s.now(), s.totpOpts...) {
		return VerifyResult{Success: true}
	}

	hash, ok := totp.MatchBackupCode(token, fields.BackupCodes)
	if !ok {
		return VerifyResult{Error: MsgInvalidToken}
	}

	consumed, err := s.store.ConsumeBackupCode(ctx, userID, hash)
	if err != nil {
		s.log.ErrorContext(ctx, "consume backup code", logger.UserID(userID), logger.Error(err))
		return VerifyResult{Error: MsgInvalidToken}
	}
	if !consumed {
		return VerifyResult{Error: MsgInvalidToken}
	}

	s.log.InfoContext(ctx, "backup code used",
		logger.UserID(userID),
		logger.Event("backup_code_used"),
		logger.Remaining(len(fields.BackupCodes)-1),
	)
	return VerifyResult{Success: true, BackupCodeUsed: true}
}

func (s *service) RegenerateBackupCodes(ctx context.Context, userID, token string) ([]string, error) {
	if res := s.VerifyToken(ctx, userID, token); !res.Success {
		return nil, nil
	}

	codes, err := totp.GenerateBackupCodes(s.random)
	if err != nil {
		s.log.ErrorContext(ctx, "generate backup codes", logger.UserID(userID), logger.Error(err))
		return nil, errors.Join(ErrFailedToGenerateSet, err)
	}

	if err := s.store.UpdateSecurityFields(ctx, userID, backupCodesPatch(totp.HashBackupCodes(codes))); err != nil {
		s.log.ErrorContext(ctx, "replace backup codes", logger.UserID(userID), logger.Error(err))
		return nil, errors.Join(ErrFailedToSaveFields, err)
	}

	s.log.InfoContext(ctx, "backup codes regenerated", logger.UserID(userID), logger.Event("backup_codes_regenerated"))
	return codes, nil
}

func (s *service) GetStatus(ctx context.Context, userID string) Status {
	fields, err := s.store.FindSecurityFields(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.WarnContext(ctx, "load two-factor status", logger.UserID(userID), logger.Error(err))
		}
		return Status{}
	}

	return Status{
		Enabled:          fields.Enabled,
		VerifiedAt:       fields.VerifiedAt,
		BackupCodesCount: len(fields.BackupCodes),
	}
}

func (s *service) seal(secret string) (string, error) {
	if len(s.sealKey) == 0 {
		return secret, nil
	}
	sealed, err := totp.SealSecret(secret, s.sealKey)
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}
	return sealed, nil
}

// open returns stored as-is unless it was sealed.
func (s *service) open(stored string) (string, error) {
	if !totp.IsSealed(stored) {
		return stored, nil
	}
	secret, err := totp.OpenSecret(stored, s.sealKey)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}
	return secret, nil
}

func groupKey(secret string) string {
	var b strings.Builder
	for i := 0; i < len(secret); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(secret[i:min(i+4, len(secret))])
	}
	return b.String()
}
