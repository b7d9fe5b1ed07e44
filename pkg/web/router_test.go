// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/pkg/billing"
	"github.com/nexus-app/workspace-service/pkg/webhooks"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

// denyAll rejects every request as unauthenticated.
type denyAll struct{}

func (denyAll) Authenticate() func(http.Handler) http.Handler {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		})
	}
}

func newTestRouter(t *testing.T) (http.Handler, *db.MockDBClientInterface) {
	ctrl := gomock.NewController(t)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	dbClient := db.NewMockDBClientInterface(ctrl)
	dbClient.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	passthrough := func(next http.Handler) http.Handler { return next }

	guard := workspace.NewMockGuardInterface(ctrl)
	guard.EXPECT().RequireMember().Return(passthrough).AnyTimes()
	guard.EXPECT().RequireAdmin().Return(passthrough).AnyTimes()
	guard.EXPECT().RequireOwner().Return(passthrough).AnyTimes()

	plans := billing.NewPlanCatalog(map[string]string{"pro": "price_pro"}, "pro")

	cfg := RouterConfig{
		DB:            dbClient,
		Authenticator: denyAll{},
		Workspaces:    workspace.NewAPI(workspace.NewMockServiceInterface(ctrl), guard, tracer, monitor, logger),
		Billing: billing.NewAPI(
			billing.NewVerifier("whsec_test"),
			billing.NewMockReconcilerInterface(ctrl),
			billing.NewMockStripeClientInterface(ctrl),
			billing.NewMockGuardInterface(ctrl),
			plans,
			tracer, monitor, logger,
		),
		Webhooks: webhooks.NewAPI(webhooks.NewMockServiceInterface(ctrl), "hook-secret", tracer, monitor, logger),
	}

	return NewRouter(cfg, tracer, monitor, logger), dbClient
}

func TestRouterAuthentication(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{name: "workspace list requires a bearer", method: http.MethodGet, path: "/api/workspaces", expectedStatus: http.StatusUnauthorized},
		{name: "workspace routes require a bearer", method: http.MethodDelete, path: "/api/workspaces/ws-1/members/u-1", expectedStatus: http.StatusUnauthorized},
		{name: "invitation accept requires a bearer", method: http.MethodPost, path: "/api/invitations/accept", body: `{"token":"x"}`, expectedStatus: http.StatusUnauthorized},
		{name: "checkout requires a bearer", method: http.MethodPost, path: "/api/billing/create-checkout-session", body: `{}`, expectedStatus: http.StatusUnauthorized},
		{name: "stripe webhook is checked by signature only", method: http.MethodPost, path: "/api/webhooks/stripe", body: `{}`, expectedStatus: http.StatusBadRequest},
		{name: "registration hook requires the api key", method: http.MethodPost, path: "/api/v0/webhooks/registration", body: `{"id":"u-1"}`, expectedStatus: http.StatusUnauthorized},
		{name: "token hook requires the api key", method: http.MethodPost, path: "/api/v0/webhooks/token", body: `{}`, expectedStatus: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/api/nothing-here", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouterStatus(t *testing.T) {
	router, dbClient := newTestRouter(t)
	dbClient.EXPECT().Ping(gomock.Any()).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestMiddlewareCORS(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/workspaces", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
