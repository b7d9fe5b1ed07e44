// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/pkg/billing"
	"github.com/nexus-app/workspace-service/pkg/metrics"
	"github.com/nexus-app/workspace-service/pkg/status"
	"github.com/nexus-app/workspace-service/pkg/webhooks"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

// AuthenticatorInterface resolves the bearer credential into an identity.
type AuthenticatorInterface interface {
	Authenticate() func(http.Handler) http.Handler
}

type RouterConfig struct {
	AllowedOrigins []string

	DB            db.DBClientInterface
	Authenticator AuthenticatorInterface

	Workspaces *workspace.API
	Billing    *billing.API
	Webhooks   *webhooks.API
}

func NewRouter(cfg RouterConfig, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(cfg.AllowedOrigins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(cfg.DB, tracer, monitor, logger).RegisterEndpoints(router)

	router.Route("/api", func(r chi.Router) {
		r.Use(db.TransactionMiddleware(cfg.DB, logger))

		// signed by their senders, not by a bearer token
		cfg.Billing.RegisterWebhook(r)
		cfg.Webhooks.RegisterEndpoints(r)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticator.Authenticate())

			cfg.Workspaces.RegisterEndpoints(r)
			cfg.Billing.RegisterEndpoints(r)
		})
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(
		cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-Id"},
			ExposedHeaders:   []string{"Link", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		},
	)
}
