// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ory/hydra/v2/oauth2"

	httptypes "github.com/nexus-app/workspace-service/internal/http/types"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

// APIKeyHeader carries the shared secret Kratos and Hydra send with every hook call.
const APIKeyHeader = "Authorization"

type API struct {
	service ServiceInterface
	apiKey  []byte

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(a.requireAPIKey)

		r.Post("/v0/webhooks/registration", a.registration)
		r.Post("/v0/webhooks/token", a.tokenHook)
	})
}

// requireAPIKey rejects hook calls that do not present the configured key.
// An unset key rejects everything.
func (a *API) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(APIKeyHeader)

		switch {
		case len(a.apiKey) == 0:
			a.unauthorized(w, r, "identity webhook api key not configured")
			return
		case presented == "":
			a.unauthorized(w, r, "missing identity webhook api key")
			return
		case subtle.ConstantTimeCompare([]byte(presented), a.apiKey) != 1:
			a.unauthorized(w, r, "invalid identity webhook api key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	a.logger.Security().AuthnFailure(reason, logging.WithRequest(r.Method, r.URL.Path, r.RemoteAddr))
	httptypes.WriteError(w, types.ErrUnauthenticated)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "webhooks.API.registration")
	defer span.End()

	var identity KratosIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		a.logger.Errorf("failed to decode registration payload: %v", err)
		httptypes.WriteErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	workspace, err := a.service.HandleRegistration(ctx, identity.ID, identity.Traits.Email)
	if err != nil {
		a.logger.Errorf("failed to provision workspace for identity %s: %v", identity.ID, err)
		httptypes.WriteError(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, RegistrationResponse{WorkspaceID: workspace.ID})
}

func (a *API) tokenHook(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "webhooks.API.tokenHook")
	defer span.End()

	req := new(oauth2.TokenHookRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.logger.Errorf("failed to decode token hook payload: %v", err)
		httptypes.WriteErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := a.service.HandleTokenHook(ctx, req)
	if err != nil {
		a.logger.Errorf("token hook failed: %v", err)
		httptypes.WriteError(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, resp)
}

func NewAPI(service ServiceInterface, apiKey string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service
	a.apiKey = []byte(apiKey)
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
