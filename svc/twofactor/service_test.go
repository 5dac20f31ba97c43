package twofactor_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/totp"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

func clock() time.Time { return fixedNow }

func codeFor(secret string, at time.Time) string {
	return totp.Generate(totp.DecodeBase32(secret), at)
}

func newService(t *testing.T, opts ...twofactor.ServiceOption) (twofactor.Service, *twofactor.MemoryStore) {
	t.Helper()
	store := twofactor.NewMemoryStore()
	store.AddUser("user-1")
	svc := twofactor.NewService(store, append([]twofactor.ServiceOption{
		twofactor.WithClock(clock),
		twofactor.WithIssuer("Acme"),
	}, opts...)...)
	return svc, store
}

// enroll runs setup and enable for user-1 and returns the setup.
func enroll(t *testing.T, svc twofactor.Service) *twofactor.Setup {
	t.Helper()
	ctx := context.Background()

	setup, err := svc.GenerateSetup(ctx, "user-1", "alice@example.com")
	require.NoError(t, err)

	ok, err := svc.Enable(ctx, "user-1", setup.Secret, codeFor(setup.Secret, fixedNow), setup.BackupCodes)
	require.NoError(t, err)
	require.True(t, ok)
	return setup
}

func TestNewService_NilStorePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { twofactor.NewService(nil) })
}

func TestGenerateSetup(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	setup, err := svc.GenerateSetup(ctx, "user-1", "alice@example.com")
	require.NoError(t, err)

	assert.Len(t, totp.DecodeBase32(setup.Secret), totp.DefaultSecretSize)
	assert.True(t, strings.HasPrefix(setup.QRCodeURL, "data:image/png;base64,"))
	assert.Equal(t, setup.Secret, strings.ReplaceAll(setup.ManualEntryKey, " ", ""))
	assert.Equal(t, totp.DecodeBase32(setup.Secret), totp.DecodeBase32(setup.ManualEntryKey))
	assert.Len(t, setup.BackupCodes, totp.DefaultBackupCodeCount)

	status := svc.GetStatus(ctx, "user-1")
	assert.False(t, status.Enabled, "setup must not persist anything")
	assert.Zero(t, status.BackupCodesCount)
}

func TestGenerateSetup_ProvisioningURI(t *testing.T) {
	t.Parallel()

	var rendered string
	svc, _ := newService(t, twofactor.WithQRRenderer(func(text string) (string, error) {
		rendered = text
		return "qr", nil
	}))

	setup, err := svc.GenerateSetup(context.Background(), "user-1", "alice smith@example.com")
	require.NoError(t, err)

	assert.Equal(t, "qr", setup.QRCodeURL)
	assert.Equal(t,
		"otpauth://totp/Acme:alice%20smith@example.com?secret="+setup.Secret+"&issuer=Acme",
		rendered,
	)
}

func TestGenerateSetup_Failures(t *testing.T) {
	t.Parallel()

	t.Run("qr renderer", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t, twofactor.WithQRRenderer(func(string) (string, error) {
			return "", errors.New("render failed")
		}))
		_, err := svc.GenerateSetup(context.Background(), "user-1", "alice@example.com")
		assert.ErrorIs(t, err, twofactor.ErrSetupFailed)
	})

	t.Run("entropy source", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t, twofactor.WithRandom(strings.NewReader("short")))
		_, err := svc.GenerateSetup(context.Background(), "user-1", "alice@example.com")
		assert.ErrorIs(t, err, twofactor.ErrSetupFailed)
		assert.ErrorIs(t, err, totp.ErrFailedToGenerateSecretKey)
	})
}

func TestEnable_RequiresProof(t *testing.T) {
	t.Parallel()

	svc, store := newService(t)
	ctx := context.Background()

	setup, err := svc.GenerateSetup(ctx, "user-1", "alice@example.com")
	require.NoError(t, err)

	wrong := codeFor(setup.Secret, fixedNow.Add(10*time.Minute))
	ok, err := svc.Enable(ctx, "user-1", setup.Secret, wrong, setup.BackupCodes)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, svc.GetStatus(ctx, "user-1").Enabled)
	fields, err := store.FindSecurityFields(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, fields.Secret)
	assert.Empty(t, fields.BackupCodes)
}

func TestEnable(t *testing.T) {
	t.Parallel()

	svc, store := newService(t)
	ctx := context.Background()
	setup := enroll(t, svc)

	status := svc.GetStatus(ctx, "user-1")
	assert.True(t, status.Enabled)
	require.NotNil(t, status.VerifiedAt)
	assert.Equal(t, fixedNow, *status.VerifiedAt)
	assert.Equal(t, totp.DefaultBackupCodeCount, status.BackupCodesCount)

	fields, err := store.FindSecurityFields(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, setup.Secret, fields.Secret)
	for _, code := range setup.BackupCodes {
		assert.NotContains(t, fields.BackupCodes, code, "codes are stored hashed")
		assert.Contains(t, fields.BackupCodes, totp.HashBackupCode(code))
	}
}

func TestEnable_PaddedCode(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	setup, err := svc.GenerateSetup(ctx, "user-1", "alice@example.com")
	require.NoError(t, err)

	padded := " " + codeFor(setup.Secret, fixedNow) + " "
	ok, err := svc.Enable(ctx, "user-1", setup.Secret, padded, setup.BackupCodes)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, svc.VerifyToken(ctx, "user-1", padded).Success)

	ok, err = svc.Disable(ctx, "user-1", "\t"+codeFor(setup.Secret, fixedNow)+"\n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, svc.GetStatus(ctx, "user-1").Enabled)
}

func TestEnable_UnknownUser(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	secret := totp.EncodeBase32([]byte("12345678901234567890"))

	ok, err := svc.Enable(context.Background(), "ghost", secret, codeFor(secret, fixedNow), nil)
	assert.False(t, ok)
	assert.ErrorIs(t, err, twofactor.ErrUserNotFound)
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	assert.Equal(t, twofactor.VerifyResult{Error: twofactor.MsgNotEnabled}, svc.VerifyToken(ctx, "user-1", "123456"))
	assert.Equal(t, twofactor.VerifyResult{Error: twofactor.MsgNotEnabled}, svc.VerifyToken(ctx, "ghost", "123456"))

	setup := enroll(t, svc)

	tests := []struct {
		name  string
		token string
		want  twofactor.VerifyResult
	}{
		{name: "current code", token: codeFor(setup.Secret, fixedNow), want: twofactor.VerifyResult{Success: true}},
		{name: "code within drift", token: codeFor(setup.Secret, fixedNow.Add(-60*time.Second)), want: twofactor.VerifyResult{Success: true}},
		{name: "code outside drift", token: codeFor(setup.Secret, fixedNow.Add(-5*time.Minute)), want: twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}},
		{name: "garbage", token: "not-a-code", want: twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}},
		{name: "empty", token: "", want: twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.VerifyToken(ctx, "user-1", tt.token))
		})
	}

	assert.Equal(t, totp.DefaultBackupCodeCount, svc.GetStatus(ctx, "user-1").BackupCodesCount,
		"TOTP codes must not consume backup codes")
}

func TestVerifyToken_BackupCodeSingleUse(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	setup := enroll(t, svc)

	code := setup.BackupCodes[3]

	res := svc.VerifyToken(ctx, "user-1", strings.ToLower(code))
	assert.Equal(t, twofactor.VerifyResult{Success: true, BackupCodeUsed: true}, res)
	assert.Equal(t, totp.DefaultBackupCodeCount-1, svc.GetStatus(ctx, "user-1").BackupCodesCount)

	res = svc.VerifyToken(ctx, "user-1", code)
	assert.Equal(t, twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}, res)

	res = svc.VerifyToken(ctx, "user-1", setup.BackupCodes[4])
	assert.True(t, res.BackupCodeUsed)
}

func TestVerifyToken_ConcurrentBackupCode(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	setup := enroll(t, svc)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.VerifyToken(ctx, "user-1", setup.BackupCodes[0]).Success {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, totp.DefaultBackupCodeCount-1, svc.GetStatus(ctx, "user-1").BackupCodesCount)
}

func TestDisable(t *testing.T) {
	t.Parallel()

	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Disable(ctx, "user-1", "123456")
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)
	assert.Equal(t, "2FA not enabled", twofactor.ErrNotEnabled.Error())

	setup := enroll(t, svc)

	ok, err := svc.Disable(ctx, "user-1", codeFor(setup.Secret, fixedNow.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, svc.GetStatus(ctx, "user-1").Enabled)

	ok, err = svc.Disable(ctx, "user-1", codeFor(setup.Secret, fixedNow))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, twofactor.Status{}, svc.GetStatus(ctx, "user-1"))
	fields, err := store.FindSecurityFields(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, fields.Secret)
	assert.Empty(t, fields.BackupCodes)
	assert.Nil(t, fields.VerifiedAt)

	_, err = svc.Disable(ctx, "user-1", codeFor(setup.Secret, fixedNow))
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)
}

func TestRegenerateBackupCodes(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	setup := enroll(t, svc)

	codes, err := svc.RegenerateBackupCodes(ctx, "user-1", "000000")
	require.NoError(t, err)
	assert.Nil(t, codes)

	codes, err = svc.RegenerateBackupCodes(ctx, "user-1", codeFor(setup.Secret, fixedNow))
	require.NoError(t, err)
	require.Len(t, codes, totp.DefaultBackupCodeCount)
	assert.NotEqual(t, setup.BackupCodes, codes)

	assert.False(t, svc.VerifyToken(ctx, "user-1", setup.BackupCodes[0]).Success, "old set is replaced")
	assert.True(t, svc.VerifyToken(ctx, "user-1", codes[0]).BackupCodeUsed)
}

func TestRegenerateBackupCodes_NotEnabled(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	codes, err := svc.RegenerateBackupCodes(context.Background(), "user-1", "123456")
	assert.NoError(t, err)
	assert.Nil(t, codes)
}

func TestSealedSecret(t *testing.T) {
	t.Parallel()

	key := make([]byte, totp.AESKeySize)
	key[7] = 42
	svc, store := newService(t, twofactor.WithEncryptionKey(key))
	ctx := context.Background()
	setup := enroll(t, svc)

	fields, err := store.FindSecurityFields(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, totp.IsSealed(fields.Secret))
	assert.NotContains(t, fields.Secret, setup.Secret)

	assert.True(t, svc.VerifyToken(ctx, "user-1", codeFor(setup.Secret, fixedNow)).Success)

	ok, err := svc.Disable(ctx, "user-1", codeFor(setup.Secret, fixedNow))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSealedSecret_PlaintextRowsStayReadable(t *testing.T) {
	t.Parallel()

	key := make([]byte, totp.AESKeySize)
	plainSvc, store := newService(t)
	setup := enroll(t, plainSvc)

	sealedSvc := twofactor.NewService(store, twofactor.WithClock(clock), twofactor.WithEncryptionKey(key))
	assert.True(t, sealedSvc.VerifyToken(context.Background(), "user-1", codeFor(setup.Secret, fixedNow)).Success)
}

func TestNewServiceFromConfig(t *testing.T) {
	t.Parallel()

	store := twofactor.NewMemoryStore()
	_, err := twofactor.NewServiceFromConfig(store, totp.Config{EncryptionKey: "not base64!"})
	assert.ErrorIs(t, err, totp.ErrFailedToLoadEncryptionKey)

	encoded, err := totp.GenerateEncodedEncryptionKey()
	require.NoError(t, err)
	svc, err := twofactor.NewServiceFromConfig(store, totp.Config{
		Issuer:        "Acme",
		Window:        1,
		Step:          30 * time.Second,
		Digits:        6,
		EncryptionKey: encoded,
	}, twofactor.WithClock(clock))
	require.NoError(t, err)

	store.AddUser("user-1")
	setup := enroll(t, svc)

	assert.False(t, svc.VerifyToken(context.Background(), "user-1", codeFor(setup.Secret, fixedNow.Add(-60*time.Second))).Success,
		"window of one step rejects codes two steps old")
}

type failingStore struct {
	fields *twofactor.SecurityFields
	err    error
}

func (f *failingStore) FindSecurityFields(context.Context, string) (*twofactor.SecurityFields, error) {
	if f.fields != nil {
		return f.fields, nil
	}
	return nil, f.err
}

func (f *failingStore) UpdateSecurityFields(context.Context, string, twofactor.SecurityPatch) error {
	return f.err
}

func (f *failingStore) ConsumeBackupCode(context.Context, string, string) (bool, error) {
	return false, f.err
}

func TestStoreFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("connection reset")
	secret := totp.EncodeBase32([]byte("12345678901234567890"))

	t.Run("get status degrades to defaults", func(t *testing.T) {
		t.Parallel()
		svc := twofactor.NewService(&failingStore{err: boom})
		assert.Equal(t, twofactor.Status{}, svc.GetStatus(ctx, "user-1"))
	})

	t.Run("verify reports a uniform message", func(t *testing.T) {
		t.Parallel()
		svc := twofactor.NewService(&failingStore{err: boom})
		assert.Equal(t, twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}, svc.VerifyToken(ctx, "user-1", "123456"))
	})

	t.Run("backup code consumption failure", func(t *testing.T) {
		t.Parallel()
		store := &failingStore{
			fields: &twofactor.SecurityFields{
				Enabled:     true,
				Secret:      secret,
				BackupCodes: totp.HashBackupCodes([]string{"DEAD-BEEF"}),
			},
			err: boom,
		}
		svc := twofactor.NewService(store, twofactor.WithClock(clock))
		assert.Equal(t, twofactor.VerifyResult{Error: twofactor.MsgInvalidToken}, svc.VerifyToken(ctx, "user-1", "DEAD-BEEF"))
	})

	t.Run("enable returns store errors", func(t *testing.T) {
		t.Parallel()
		svc := twofactor.NewService(&failingStore{err: boom}, twofactor.WithClock(clock))
		ok, err := svc.Enable(ctx, "user-1", secret, codeFor(secret, fixedNow), nil)
		assert.False(t, ok)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, twofactor.ErrFailedToSaveFields)
	})

	t.Run("disable returns store errors", func(t *testing.T) {
		t.Parallel()
		svc := twofactor.NewService(&failingStore{err: boom}, twofactor.WithClock(clock))
		_, err := svc.Disable(ctx, "user-1", "123456")
		assert.ErrorIs(t, err, boom)
	})
}
