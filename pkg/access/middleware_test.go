// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

func TestMiddleware_Require(t *testing.T) {
	identity := &types.Identity{ID: "user-1"}

	tests := []struct {
		name               string
		identity           *types.Identity
		route              func(*Middleware) func(http.Handler) http.Handler
		minRole            types.Role
		principal          *Principal
		guardErr           error
		expectedStatusCode int
		expectAuthzFailure bool
		expectErrorLog     bool
	}{
		{
			name:               "member allowed",
			identity:           identity,
			route:              (*Middleware).RequireMember,
			minRole:            types.RoleMember,
			principal:          &Principal{Identity: identity, WorkspaceID: workspaceID, Role: types.RoleMember},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "admin route forbidden",
			identity:           identity,
			route:              (*Middleware).RequireAdmin,
			minRole:            types.RoleAdmin,
			guardErr:           types.ErrForbidden,
			expectedStatusCode: http.StatusForbidden,
			expectAuthzFailure: true,
		},
		{
			name:               "owner route forbidden",
			identity:           identity,
			route:              (*Middleware).RequireOwner,
			minRole:            types.RoleOwner,
			guardErr:           types.ErrForbidden,
			expectedStatusCode: http.StatusForbidden,
			expectAuthzFailure: true,
		},
		{
			name:               "store failure",
			identity:           identity,
			route:              (*Middleware).RequireMember,
			minRole:            types.RoleMember,
			guardErr:           errors.New("db down"),
			expectedStatusCode: http.StatusInternalServerError,
			expectErrorLog:     true,
		},
		{
			name:               "unauthenticated",
			route:              (*Middleware).RequireMember,
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockGuard := NewMockGuardInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			if tt.identity != nil {
				mockGuard.EXPECT().Authorize(gomock.Any(), tt.identity, workspaceID, tt.minRole).Return(tt.principal, tt.guardErr)
			}

			if tt.expectAuthzFailure {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(tt.identity.ID, "workspace:"+workspaceID, gomock.Any(), gomock.Any())
			}

			if tt.expectErrorLog {
				mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			}

			m := NewMiddleware(mockGuard, passthroughTracer(ctrl), mockMonitor, mockLogger)

			called := false
			r := chi.NewRouter()
			r.With(tt.route(m)).Get("/workspaces/{id}", func(w http.ResponseWriter, r *http.Request) {
				called = true

				p, ok := PrincipalFromContext(r.Context())
				if !ok || p != tt.principal {
					t.Errorf("expected principal in context")
				}

				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/workspaces/"+workspaceID, nil)
			if tt.identity != nil {
				req = req.WithContext(authentication.WithIdentity(context.Background(), tt.identity))
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d", tt.expectedStatusCode, rec.Code)
			}

			if called != (tt.expectedStatusCode == http.StatusOK) {
				t.Errorf("unexpected downstream execution: %v", called)
			}
		})
	}
}
