package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/salesdesk-backend/api/responses"
	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/salesdesk-backend/pkg/errors"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
)

const envHeader = "X-Salesdesk-Env"

// Pinger is a dependency that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

// HealthLive reports process liveness with the uptime in seconds.
func HealthLive(cfg *config.Config, started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		now := time.Now()
		responses.WriteJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: now.UTC(),
			Uptime:    now.Sub(started).Seconds(),
		})
	}
}

// HealthReady pings every named dependency. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var firstErr error
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			checks[name] = "ok"
		}

		if firstErr != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependency check failed").
				WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
