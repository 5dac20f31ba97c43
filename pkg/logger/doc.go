// Package logger builds log/slog loggers for authkit services.
//
// New applies functional options over JSON-at-info defaults. WithEnvironment
// switches to text-at-debug outside production. Context extractors add
// request-scoped attributes (environment, request ID) at log time:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(cfg.Env), "authkit"),
//		logger.WithContextExtractors(environment.LoggerExtractor()),
//	)
//	log.ErrorContext(ctx, "enable two-factor", logger.UserID(userID), logger.Error(err))
//
// The attribute helpers in attr.go keep key names consistent across services.
package logger
