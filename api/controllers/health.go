package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/brightideas/dispatch-backend/api/responses"
	"github.com/brightideas/dispatch-backend/pkg/config"
	"github.com/brightideas/dispatch-backend/pkg/db"
	"github.com/brightideas/dispatch-backend/pkg/logger"
	"github.com/brightideas/dispatch-backend/pkg/redis"
	"github.com/brightideas/dispatch-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dispatch-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency; any failure flips the whole
// response to 503 while still reporting per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dispatch-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		ready := true

		check := func(name string, ping func(context.Context) error) {
			if err := ping(ctx); err != nil {
				checks[name] = "down"
				ready = false
				if logg != nil {
					logg.Error(r.Context(), "readiness check failed: "+name, err)
				}
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			check("database", dbP.Ping)
		} else {
			checks["database"] = "skipped"
		}
		if redisP != nil {
			check("redis", redisP.Ping)
		} else {
			checks["redis"] = "skipped"
		}
		if gcsP != nil {
			check("gcs", gcsP.Ping)
		} else {
			checks["gcs"] = "skipped"
		}

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, code, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
