package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	b, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
	h := ratelimiter.Middleware(b, func(r *http.Request) string { return r.Header.Get("X-Key") })(okHandler())

	do := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do("a")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("a").Code)

	rec = do("a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	for range 5 {
		assert.Equal(t, http.StatusOK, do("").Code, "empty key is not limited")
	}
}

type brokenStore struct{}

func (brokenStore) Take(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func (brokenStore) Reset(context.Context, string) error { return nil }

func TestMiddlewareWithDeniedHandler_StoreError(t *testing.T) {
	t.Parallel()

	b, err := ratelimiter.NewBucket(brokenStore{}, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	var gotErr error
	h := ratelimiter.MiddlewareWithDeniedHandler(b, ratelimiter.Static("k"),
		func(w http.ResponseWriter, _ *http.Request, res *ratelimiter.Result, err error) {
			assert.Nil(t, res)
			gotErr = err
			w.WriteHeader(http.StatusTeapot)
		},
	)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, errors.Is(gotErr, ratelimiter.ErrStoreUnavailable))
}

func TestComposite(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	empty := func(*http.Request) string { return "" }
	long := func(*http.Request) string { return strings.Repeat("x", 100) }

	assert.Equal(t, "", ratelimiter.Composite(empty)(req))
	assert.Equal(t, "verify:1.2.3.4", ratelimiter.Composite(ratelimiter.Static("verify"), empty, ratelimiter.Static("1.2.3.4"))(req))

	hashed := ratelimiter.Composite(ratelimiter.Static("verify"), long)(req)
	assert.LessOrEqual(t, len(hashed), 13)
	assert.Equal(t, hashed, ratelimiter.Composite(ratelimiter.Static("verify"), long)(req))
}
