package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kiranshivaraju/codereview/internal/api/response"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is implemented by the database store and the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler reports database and cache connectivity.
func NewHealthHandler(db, cache Pinger, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		checks := map[string]string{
			"database": check(ctx, "database", db),
			"cache":    check(ctx, "cache", cache),
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more dependencies are unavailable", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":      "ok",
			"checks":      checks,
			"ai_provider": provider,
		})
	}
}

func check(ctx context.Context, name string, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
		return "unavailable"
	}
	return "ok"
}
