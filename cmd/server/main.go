// Command server runs the authkit HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/authkit/internal/api"
	"github.com/dmitrymomot/authkit/internal/store/mongostore"
	"github.com/dmitrymomot/authkit/internal/store/pgstore"
	"github.com/dmitrymomot/authkit/internal/store/redisstore"
	"github.com/dmitrymomot/authkit/pkg/audit"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/config"
	"github.com/dmitrymomot/authkit/pkg/environment"
	"github.com/dmitrymomot/authkit/pkg/httpserver"
	"github.com/dmitrymomot/authkit/pkg/jwt"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/mongo"
	"github.com/dmitrymomot/authkit/pkg/pg"
	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
	redisconn "github.com/dmitrymomot/authkit/pkg/redis"
	"github.com/dmitrymomot/authkit/pkg/requestid"
	"github.com/dmitrymomot/authkit/pkg/totp"
	"github.com/dmitrymomot/authkit/svc/security"
	"github.com/dmitrymomot/authkit/svc/token"
	"github.com/dmitrymomot/authkit/svc/twofactor"
)

const (
	serviceName       = "authkit"
	auditFlushTimeout = 10 * time.Second
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"` // postgres or mongo
	TokenStore  string `env:"TOKEN_STORE" envDefault:"redis"`     // redis or primary
}

// primaryStore is what both database backends provide.
type primaryStore interface {
	twofactor.Store
	security.StatusSource
	token.VerificationStore
	token.RefreshStore
	audit.BatchStorage
	audit.Reader
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	appCfg, err := config.Load[appConfig](config.WithEnvFiles(".env"))
	if err != nil {
		return err
	}
	env := environment.Parse(appCfg.Env)

	logCfg, err := config.Load[logger.Config]()
	if err != nil {
		return err
	}
	log := logger.New(append([]logger.Option{
		logger.WithEnvironment(env, serviceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	}, logCfg.Options()...)...)
	slog.SetDefault(log)

	probes := map[string]httpserver.Probe{}

	var primary primaryStore
	switch appCfg.StoreDriver {
	case "postgres":
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, pgstore.Migrations(), log); err != nil {
			return err
		}
		primary = pgstore.New(pool)
		probes["postgres"] = pg.Healthcheck(pool)
	case "mongo":
		mongoCfg, err := config.Load[mongo.Config]()
		if err != nil {
			return err
		}
		db, err := mongo.Database(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()
		store := mongostore.New(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		primary = store
		probes["mongo"] = mongo.Healthcheck(db.Client())
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", appCfg.StoreDriver)
	}

	var (
		verifications token.VerificationStore = primary
		refreshes     token.RefreshStore      = primary
		limiterStore  ratelimiter.Store
	)
	switch appCfg.TokenStore {
	case "redis":
		redisCfg, err := config.Load[redisconn.Config]()
		if err != nil {
			return err
		}
		client, err := redisconn.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		rs := redisstore.New(client, redisCfg.KeyPrefix)
		verifications, refreshes = rs, rs
		limiterStore = ratelimiter.NewRedisStore(client, redisCfg.KeyPrefix)
		probes["redis"] = redisconn.Healthcheck(client)
	case "primary":
		mem := ratelimiter.NewMemoryStore()
		defer mem.Close()
		limiterStore = mem
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", appCfg.TokenStore)
	}

	jwtCfg, err := config.Load[jwt.Config]()
	if err != nil {
		return err
	}
	jwtSvc, err := jwt.NewFromConfig(jwtCfg)
	if err != nil {
		return err
	}

	totpCfg, err := config.Load[totp.Config]()
	if err != nil {
		return err
	}
	twoFactor, err := twofactor.NewServiceFromConfig(primary, totpCfg, twofactor.WithLogger(log))
	if err != nil {
		return err
	}

	tokenCfg, err := config.Load[token.Config]()
	if err != nil {
		return err
	}
	tokens := token.NewService(verifications, refreshes, jwtSvc,
		token.WithConfig(tokenCfg),
		token.WithLogger(log),
	)

	limitCfg, err := config.Load[ratelimiter.Config]()
	if err != nil {
		return err
	}
	limiter, err := ratelimiter.NewBucket(limiterStore, limitCfg)
	if err != nil {
		return err
	}

	auditCfg, err := config.Load[audit.AsyncOptions]()
	if err != nil {
		return err
	}
	auditWriter := audit.NewAsyncWriter(primary, auditCfg, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditFlushTimeout)
		defer cancel()
		if err := auditWriter.Close(ctx); err != nil {
			log.Error("failed to flush audit events", logger.Error(err))
		}
	}()
	auditLog := audit.NewLogger(auditWriter,
		audit.WithRequestIDExtractor(requestid.FromContext),
		audit.WithIPExtractor(clientip.FromContext),
	)

	apiCfg, err := config.Load[api.Config]()
	if err != nil {
		return err
	}
	router := api.NewRouter(api.Services{
		TwoFactor: twoFactor,
		Tokens:    tokens,
		Security:  security.NewService(primary, security.WithLogger(log)),
		JWT:       jwtSvc,
	},
		api.WithConfig(apiCfg),
		api.WithLogger(log),
		api.WithEnvironment(env),
		api.WithLimiter(limiter),
		api.WithProbes(probes),
		api.WithAudit(auditLog, primary),
	)

	httpCfg, err := config.Load[httpserver.Config]()
	if err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
