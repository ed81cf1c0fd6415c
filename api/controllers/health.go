package controllers

import (
	"context"
	"net/http"

	"github.com/spicepalace/spicepalace-backend/api/responses"
	"github.com/spicepalace/spicepalace-backend/pkg/config"
	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
	"github.com/spicepalace/spicepalace-backend/pkg/logger"
)

// Pinger is any dependency the readiness probe should verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SpicePalace-Env", cfg.App.Env)
		responses.WriteSuccess(w, "", map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SpicePalace-Env", cfg.App.Env)

		statuses := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "readiness check failed", err)
				}
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
			statuses[name] = "ok"
		}

		responses.WriteSuccess(w, "", map[string]any{"status": "ready", "dependencies": statuses})
	}
}
