package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/environment"
	"github.com/dmitrymomot/authkit/pkg/httpserver"
	"github.com/dmitrymomot/authkit/pkg/jwt"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
	"github.com/dmitrymomot/authkit/pkg/requestid"
	"github.com/dmitrymomot/authkit/svc/security"
	"github.com/dmitrymomot/authkit/svc/token"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

type Config struct {
	ServiceKey    string        `env:"API_SERVICE_KEY,required"`
	HealthTimeout time.Duration `env:"API_HEALTH_TIMEOUT" envDefault:"2s"`
}

// Services are the domain services behind the routes. All are required.
type Services struct {
	TwoFactor twofactor.Service
	Tokens    token.Service
	Security  security.Service
	JWT       *jwt.Service
}

type options struct {
	log           *slog.Logger
	env           environment.Environment
	limiter       *ratelimiter.Bucket
	audit         *audit.Logger
	events        audit.Reader
	probes        map[string]httpserver.Probe
	serviceKey    string
	healthTimeout time.Duration
}

// Option configures the router.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithEnvironment(env environment.Environment) Option {
	return func(o *options) { o.env = env }
}

// WithLimiter throttles the endpoints that accept guessable codes.
func WithLimiter(b *ratelimiter.Bucket) Option {
	return func(o *options) { o.limiter = b }
}

// WithAudit records two-factor changes through l. When r is not nil the
// caller's history is served at GET /v1/security/events.
func WithAudit(l *audit.Logger, r audit.Reader) Option {
	return func(o *options) {
		o.audit = l
		o.events = r
	}
}

// WithProbes registers readiness probes served at /healthz.
func WithProbes(probes map[string]httpserver.Probe) Option {
	return func(o *options) { o.probes = probes }
}

// WithConfig applies cfg.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.serviceKey = cfg.ServiceKey
		if cfg.HealthTimeout > 0 {
			o.healthTimeout = cfg.HealthTimeout
		}
	}
}

type api struct {
	svc    Services
	log    *slog.Logger
	audit  *audit.Logger
	events audit.Reader
}

// NewRouter builds the HTTP handler. It panics when a service is missing.
func NewRouter(svc Services, opts ...Option) http.Handler {
	if svc.TwoFactor == nil || svc.Tokens == nil || svc.Security == nil || svc.JWT == nil {
		panic("api: all services are required")
	}

	o := options{env: environment.Development, healthTimeout: 2 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrDiscard(o.log).With(logger.Component("api"))
	a := &api{svc: svc, log: log, audit: o.audit, events: o.events}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware,
		environment.Middleware(o.env),
		middleware.Recoverer,
		accessLog(log),
	)
	r.NotFound(a.notFound)
	r.MethodNotAllowed(a.methodNotAllowed)

	r.Get("/healthz", httpserver.HealthHandler(log, o.healthTimeout, o.probes))

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwt.MiddlewareWithErrorHandler(svc.JWT, a.authError))

			r.Route("/2fa", func(r chi.Router) {
				r.Get("/status", a.twoFactorStatus())
				r.Post("/setup", a.twoFactorSetup())
				r.With(throttle(o.limiter, "2fa-enable", userID, a)).Post("/enable", a.twoFactorEnable())
				r.With(throttle(o.limiter, "2fa-disable", userID, a)).Post("/disable", a.twoFactorDisable())
				r.With(throttle(o.limiter, "2fa-verify", userID, a)).Post("/verify", a.twoFactorVerify())
				r.With(throttle(o.limiter, "2fa-backup", userID, a)).Post("/backup-codes", a.twoFactorBackupCodes())
			})

			r.Get("/security/status", a.securityStatus())
			if a.events != nil {
				r.Get("/security/events", a.securityEvents())
			}
		})

		r.Route("/tokens", func(r chi.Router) {
			r.With(throttle(o.limiter, "token-verify", clientip.Key, a)).Post("/verify", a.tokenVerify())
			r.With(throttle(o.limiter, "token-refresh", clientip.Key, a)).Post("/refresh", a.tokenRefresh())
			r.Post("/revoke", a.tokenRevoke())

			r.Group(func(r chi.Router) {
				r.Use(requireServiceKey(o.serviceKey, a))
				r.Post("/verification", a.issueVerification())
				r.Post("/password-reset", a.issuePasswordReset())
				r.Post("/refresh-tokens", a.issueRefreshToken())
			})
		})
	})

	return r
}
