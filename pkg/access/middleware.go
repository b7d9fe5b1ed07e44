// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/nexus-app/workspace-service/internal/http/types"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

const WorkspaceIDParam = "id"

// Middleware guards workspace scoped routes. It must run after authentication.
type Middleware struct {
	guard GuardInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *Middleware) RequireMember() func(http.Handler) http.Handler {
	return m.require(types.RoleMember)
}

func (m *Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.require(types.RoleAdmin)
}

func (m *Middleware) RequireOwner() func(http.Handler) http.Handler {
	return m.require(types.RoleOwner)
}

func (m *Middleware) require(minRole types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "access.Middleware.require")
			defer span.End()

			identity, ok := authentication.IdentityFromContext(ctx)
			if !ok {
				httptypes.WriteError(w, types.ErrUnauthenticated)
				return
			}

			workspaceID := chi.URLParam(r, WorkspaceIDParam)

			p, err := m.guard.Authorize(ctx, identity, workspaceID, minRole)
			if err != nil {
				if errors.Is(err, types.ErrForbidden) {
					m.logger.Security().AuthzFailure(
						identity.ID,
						"workspace:"+workspaceID,
						logging.WithRequest(r.Method, r.URL.Path, r.RemoteAddr),
						logging.WithLabel("required_role", string(minRole)),
					)
				} else {
					m.logger.Errorf("failed to authorize %s on workspace %s: %v", identity.ID, workspaceID, err)
				}

				httptypes.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

func NewMiddleware(guard GuardInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	m := new(Middleware)

	m.guard = guard
	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
