package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authkit/handler"
	"github.com/dmitrymomot/authkit/pkg/jwt"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
)

// ServiceKeyHeader carries the shared secret of trusted backends.
const ServiceKeyHeader = "X-Service-Key"

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func requireServiceKey(key string, a *api) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(ServiceKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				a.writeError(w, r, errInvalidServiceKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func throttle(b *ratelimiter.Bucket, route string, key ratelimiter.KeyFunc, a *api) func(http.Handler) http.Handler {
	if b == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	composite := ratelimiter.Composite(ratelimiter.Static(route), key)
	keyFunc := func(r *http.Request) string {
		if key(r) == "" {
			return ""
		}
		return composite(r)
	}
	return ratelimiter.MiddlewareWithDeniedHandler(b, keyFunc,
		func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result, err error) {
			if err != nil {
				a.log.ErrorContext(r.Context(), "rate limiter unavailable", logger.Error(err))
				a.writeError(w, r, errLimiterUnavailable)
				return
			}
			a.writeError(w, r, errRateLimited)
		},
	)
}

// userID returns the authenticated subject. Routes using it sit behind the
// jwt middleware, so a missing subject is a wiring bug.
func userID(r *http.Request) string {
	id, _ := jwt.UserIDFromContext(r.Context())
	return id
}

func (a *api) authError(w http.ResponseWriter, r *http.Request, err error) {
	a.writeError(w, r, err)
}

func (a *api) notFound(w http.ResponseWriter, r *http.Request) {
	_ = handler.ErrorJSON(handler.HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "Not found"}).Render(w, r)
}

func (a *api) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = handler.ErrorJSON(handler.HTTPError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Message: "Method not allowed"}).Render(w, r)
}
