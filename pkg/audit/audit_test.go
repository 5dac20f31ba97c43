package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/audit"
)

type ctxKey string

func fromCtx(key ctxKey) audit.Extractor {
	return func(ctx context.Context) string {
		v, _ := ctx.Value(key).(string)
		return v
	}
}

type failingStorage struct{}

func (failingStorage) Store(context.Context, audit.Event) error { return errors.New("db down") }

func TestLogger(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	store := audit.NewMemoryStorage()
	l := audit.NewLogger(store,
		audit.WithUserIDExtractor(fromCtx("user")),
		audit.WithRequestIDExtractor(fromCtx("rid")),
		audit.WithIPExtractor(fromCtx("ip")),
		audit.WithClock(func() time.Time { return now }),
		audit.WithIDGenerator(func() string { return "evt-1" }),
	)

	ctx := context.WithValue(context.Background(), ctxKey("user"), "user-1")
	ctx = context.WithValue(ctx, ctxKey("rid"), "req-1")
	ctx = context.WithValue(ctx, ctxKey("ip"), "192.0.2.1")

	require.NoError(t, l.Log(ctx, "2fa.enable", audit.WithMetadata("backup_codes", 10)))
	require.NoError(t, l.LogFailure(ctx, "2fa.verify", "Invalid token"))
	require.NoError(t, l.LogError(ctx, "token.refresh", errors.New("boom"), audit.WithUserID("user-2")))

	events, err := store.FindEvents(context.Background(), audit.Criteria{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, audit.Event{
		ID:        "evt-1",
		UserID:    "user-1",
		Action:    "2fa.verify",
		Result:    audit.ResultFailure,
		Reason:    "Invalid token",
		RequestID: "req-1",
		IP:        "192.0.2.1",
		CreatedAt: now.UTC(),
	}, events[0])
	assert.Equal(t, audit.ResultSuccess, events[1].Result)
	assert.Equal(t, map[string]any{"backup_codes": 10}, events[1].Metadata)

	other, err := store.FindEvents(context.Background(), audit.Criteria{UserID: "user-2"})
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, audit.ResultError, other[0].Result)
	assert.Equal(t, "boom", other[0].Reason)
}

func TestLoggerValidation(t *testing.T) {
	t.Parallel()

	l := audit.NewLogger(audit.NewMemoryStorage())
	assert.ErrorIs(t, l.Log(context.Background(), ""), audit.ErrInvalidEvent)

	l = audit.NewLogger(failingStorage{})
	assert.EqualError(t, l.Log(context.Background(), "2fa.enable"), "audit: store 2fa.enable\ndb down")
}

func TestNewLoggerPanicsWithoutStorage(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { audit.NewLogger(nil) })
}

func TestCriteriaNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, want int
	}{
		{0, audit.DefaultLimit},
		{-3, audit.DefaultLimit},
		{5, 5},
		{audit.MaxLimit + 1, audit.MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, audit.Criteria{Limit: tt.limit}.Normalize().Limit)
	}
}

func TestMemoryStorageFilters(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := audit.NewMemoryStorage()
	for i, action := range []string{"a", "b", "a", "a"} {
		require.NoError(t, store.Store(context.Background(), audit.Event{
			ID: string(rune('0' + i)), UserID: "u", Action: action, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	events, err := store.FindEvents(context.Background(), audit.Criteria{UserID: "u", Action: "a", Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[0].ID)
	assert.Equal(t, "2", events[1].ID)

	events, err = store.FindEvents(context.Background(), audit.Criteria{UserID: "u", Since: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
