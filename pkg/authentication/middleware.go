// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"

	"github.com/nexus-app/workspace-service/internal/http/types"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	dtypes "github.com/nexus-app/workspace-service/internal/types"
)

type Middleware struct {
	verifier TokenVerifierInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate rejects requests without a valid bearer credential with a 401
// and stores the resolved Identity in the request context otherwise.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			token, found := m.getBearerToken(r.Header)
			if !found {
				m.unauthorized(w, r, "missing bearer token")
				return
			}

			identity, err := m.verifier.VerifyToken(ctx, token)
			if err != nil {
				m.logger.Debugf("token verification failed: %v", err)
				m.unauthorized(w, r, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

// getBearerToken reads an RFC 6750 credential; the scheme is matched case insensitively.
func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(headers.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != "" && !strings.ContainsAny(token, " \t")
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.Security().AuthnFailure(reason, logging.WithRequest(r.Method, r.URL.Path, r.RemoteAddr))
	types.WriteError(w, dtypes.ErrUnauthenticated)
}

func NewMiddleware(verifier TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		verifier: verifier,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
