package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler runs every probe with timeout and answers 200 when all pass,
// 503 otherwise. Without probes it is a plain liveness check.
func HealthHandler(log *slog.Logger, timeout time.Duration, probes map[string]Probe) http.HandlerFunc {
	log = logger.OrDiscard(log)
	names := slices.Sorted(maps.Keys(probes))

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		resp := healthResponse{Status: "ok"}
		code := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := probes[name](ctx); err != nil {
				log.ErrorContext(ctx, "health probe failed", slog.String("probe", name), logger.Error(err))
				resp.Checks[name] = "fail"
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
