package pgstore_test

import (
	"context"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/internal/store/pgstore"
	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/pg"
	"github.com/dmitrymomot/authkit/svc/security"
	"github.com/dmitrymomot/authkit/svc/token"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

// newTestStore connects to PGSTORE_TEST_URL and applies migrations.
// Tests are skipped when it is not set.
func newTestStore(t *testing.T) *pgstore.Store {
	t.Helper()

	url := os.Getenv("PGSTORE_TEST_URL")
	if url == "" {
		t.Skip("PGSTORE_TEST_URL not set")
	}

	ctx := context.Background()
	pool, err := pg.Connect(ctx, pg.Config{ConnectionString: url, MaxConns: 10, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, pgstore.Migrations(), logger.Discard()))
	return pgstore.New(pool)
}

func createUser(t *testing.T, s *pgstore.Store, u pgstore.NewUser) string {
	t.Helper()
	if u.Email == "" {
		u.Email = uuid.NewString() + "@example.com"
	}
	id, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	return id
}

func TestMigrations_Embedded(t *testing.T) {
	t.Parallel()

	entries, err := fsReadDir(pgstore.Migrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users.sql", "00002_tokens.sql", "00003_audit_events.sql"}, entries)
}

func TestStore_SecurityFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := createUser(t, s, pgstore.NewUser{})

	f, err := s.FindSecurityFields(ctx, id)
	require.NoError(t, err)
	assert.False(t, f.Enabled)
	assert.Empty(t, f.Secret)
	assert.Empty(t, f.BackupCodes)
	assert.Nil(t, f.VerifiedAt)

	enabled := true
	secret := "sealed-secret"
	codes := []string{"h1", "h2", "h3"}
	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.UpdateSecurityFields(ctx, id, twofactor.SecurityPatch{
		Enabled: &enabled, Secret: &secret, BackupCodes: &codes, VerifiedAt: &at,
	}))

	f, err = s.FindSecurityFields(ctx, id)
	require.NoError(t, err)
	assert.True(t, f.Enabled)
	assert.Equal(t, secret, f.Secret)
	assert.Equal(t, codes, f.BackupCodes)
	require.NotNil(t, f.VerifiedAt)
	assert.True(t, at.Equal(*f.VerifiedAt))

	ok, err := s.ConsumeBackupCode(ctx, id, "h2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ConsumeBackupCode(ctx, id, "h2")
	require.NoError(t, err)
	assert.False(t, ok)

	f, err = s.FindSecurityFields(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h3"}, f.BackupCodes)

	disabled := false
	empty := ""
	none := []string{}
	require.NoError(t, s.UpdateSecurityFields(ctx, id, twofactor.SecurityPatch{
		Enabled: &disabled, Secret: &empty, BackupCodes: &none, VerifiedAt: &time.Time{},
	}))
	f, err = s.FindSecurityFields(ctx, id)
	require.NoError(t, err)
	assert.False(t, f.Enabled)
	assert.Empty(t, f.Secret)
	assert.Empty(t, f.BackupCodes)
	assert.Nil(t, f.VerifiedAt)
}

func TestStore_SecurityFields_UnknownUser(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := s.FindSecurityFields(ctx, id)
		assert.ErrorIs(t, err, twofactor.ErrUserNotFound)

		err = s.UpdateSecurityFields(ctx, id, twofactor.SecurityPatch{})
		assert.ErrorIs(t, err, twofactor.ErrUserNotFound)
	}
}

func TestStore_ConsumeBackupCode_Concurrent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	id := createUser(t, s, pgstore.NewUser{})

	codes := []string{"only"}
	require.NoError(t, s.UpdateSecurityFields(ctx, id, twofactor.SecurityPatch{BackupCodes: &codes}))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ConsumeBackupCode(ctx, id, "only")
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestStore_VerificationTokens(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	ident := uuid.NewString() + "@example.com"
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)

	first := token.VerificationToken{Identifier: ident, Token: uuid.NewString(), Expires: exp}
	require.NoError(t, s.CreateVerificationToken(ctx, first))

	got, err := s.FindVerificationToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.Identifier, got.Identifier)
	assert.True(t, exp.Equal(got.Expires))

	second := token.VerificationToken{Identifier: ident, Token: uuid.NewString(), Expires: exp}
	require.NoError(t, s.ReplaceVerificationToken(ctx, second))

	_, err = s.FindVerificationToken(ctx, first.Token)
	assert.ErrorIs(t, err, token.ErrTokenNotFound)

	require.NoError(t, s.DeleteVerificationToken(ctx, second.Token))
	assert.ErrorIs(t, s.DeleteVerificationToken(ctx, second.Token), token.ErrTokenNotFound)

	require.NoError(t, s.DeleteVerificationTokensByIdentifier(ctx, ident))
}

func TestStore_RefreshTokens(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	userID := createUser(t, s, pgstore.NewUser{})

	rt := token.RefreshToken{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    userID,
		Expires:   time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.CreateRefreshToken(ctx, rt))

	got, err := s.FindRefreshToken(ctx, rt.Token)
	require.NoError(t, err)
	assert.Equal(t, rt.ID, got.ID)
	assert.Equal(t, userID, got.UserID)

	require.NoError(t, s.DeleteRefreshToken(ctx, rt.ID))
	assert.ErrorIs(t, s.DeleteRefreshToken(ctx, rt.ID), token.ErrTokenNotFound)

	_, err = s.FindRefreshToken(ctx, rt.Token)
	assert.ErrorIs(t, err, token.ErrTokenNotFound)
}

func TestStore_StatusSource(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id := createUser(t, s, pgstore.NewUser{EmailVerified: true, PasswordHash: "$2a$12$abc"})

	_, err := s.CreateSession(ctx, id, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, id, now.Add(-time.Hour))
	require.NoError(t, err)
	revoked, err := s.CreateSession(ctx, id, now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.RevokeSession(ctx, revoked))

	require.NoError(t, s.RecordLoginAttempt(ctx, id, false, now.Add(-time.Hour)))
	require.NoError(t, s.RecordLoginAttempt(ctx, id, true, now.Add(-48*time.Hour)))

	p, err := s.FindAccountProfile(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.EmailVerified)
	assert.True(t, p.HasPassword)
	assert.NotNil(t, p.PasswordChangedAt)

	sessions, err := s.CountActiveSessions(ctx, id, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)

	attempts, err := s.CountRecentLoginAttempts(ctx, id, now.Add(-security.RecentLoginWindow))
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	_, err = s.FindAccountProfile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, security.ErrUserNotFound)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	email := uuid.NewString() + "@example.com"
	createUser(t, s, pgstore.NewUser{Email: email})
	_, err := s.CreateUser(context.Background(), pgstore.NewUser{Email: email})
	assert.ErrorIs(t, err, pgstore.ErrEmailTaken)
}

func fsReadDir(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func TestStore_AuditEvents(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	userID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, s.Store(ctx, audit.Event{
		ID: uuid.NewString(), UserID: userID, Action: "2fa.enable", Result: audit.ResultSuccess,
		CreatedAt: base.Add(-time.Hour),
	}))
	require.NoError(t, s.StoreBatch(ctx, []audit.Event{
		{ID: uuid.NewString(), UserID: userID, Action: "2fa.verify", Result: audit.ResultFailure, Reason: "Invalid token", IP: "192.0.2.1", CreatedAt: base.Add(-time.Minute)},
		{ID: uuid.NewString(), UserID: userID, Action: "2fa.verify", Result: audit.ResultSuccess, Metadata: map[string]any{"backup_code_used": true}, CreatedAt: base},
	}))
	require.NoError(t, s.StoreBatch(ctx, nil))

	events, err := s.FindEvents(ctx, audit.Criteria{UserID: userID})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, base, events[0].CreatedAt)
	assert.Equal(t, map[string]any{"backup_code_used": true}, events[0].Metadata)
	assert.Equal(t, "Invalid token", events[1].Reason)
	assert.Equal(t, "192.0.2.1", events[1].IP)
	assert.Nil(t, events[2].Metadata)

	events, err = s.FindEvents(ctx, audit.Criteria{UserID: userID, Action: "2fa.verify", Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ResultSuccess, events[0].Result)

	events, err = s.FindEvents(ctx, audit.Criteria{UserID: userID, Since: base.Add(-30 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
