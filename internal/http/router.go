// Package httpapi assembles the public HTTP surface. Handlers register their
// own routes; this package owns the shared middleware chain and the
// operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profiling/internal/platform/middleware"
)

// Registrar is anything that can wire its routes into the router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing resource is reachable.
type HealthCheck func(ctx context.Context) error

// New builds the service router: platform middleware, operational endpoints,
// then the domain handlers.
func New(logger *slog.Logger, health HealthCheck, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
