package controllers

import (
	"context"
	"net/http"

	"github.com/hngo-dev/meshmart-backend/api/responses"
	"github.com/hngo-dev/meshmart-backend/pkg/config"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

const envHeader = "X-MeshMart-Env"

// Pinger is the connectivity probe the readiness endpoint runs per dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency connectivity. Any failing probe flips
// the response to 503 so orchestrators stop routing traffic here.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = "unavailable"
				healthy = false
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "readiness probe failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
