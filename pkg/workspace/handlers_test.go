// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

// withPrincipal stands in for the access guard.
func withPrincipal(p *access.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
		})
	}
}

func newTestRouter(t *testing.T, p *access.Principal) (http.Handler, *MockServiceInterface, *MockLoggerInterface) {
	ctrl := gomock.NewController(t)

	svc := NewMockServiceInterface(ctrl)
	logger := NewMockLoggerInterface(ctrl)
	guard := NewMockGuardInterface(ctrl)
	tracer := NewMockTracingInterface(ctrl)

	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()

	guard.EXPECT().RequireMember().Return(withPrincipal(p)).AnyTimes()
	guard.EXPECT().RequireAdmin().Return(withPrincipal(p)).AnyTimes()
	guard.EXPECT().RequireOwner().Return(withPrincipal(p)).AnyTimes()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authentication.WithIdentity(r.Context(), p.Identity)))
		})
	})

	NewAPI(svc, guard, tracer, NewMockMonitorInterface(ctrl), logger).RegisterEndpoints(r)

	return r, svc, logger
}

func TestAPI_Routes(t *testing.T) {
	owner := principal(ownerID, types.RoleOwner)
	admin := principal(adminID, types.RoleAdmin)

	tests := []struct {
		name           string
		actor          *access.Principal
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface, *MockLoggerInterface)
		expectedStatus int
		expectedError  string
	}{
		{
			name:   "list workspaces",
			method: http.MethodGet,
			path:   "/workspaces",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().ListWorkspaces(gomock.Any(), owner.Identity).Return([]*types.WorkspaceWithRole{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "create workspace",
			method: http.MethodPost,
			path:   "/workspaces",
			body:   `{"name":"Acme"}`,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().CreateWorkspace(gomock.Any(), owner.Identity, "Acme").
					Return(&types.WorkspaceWithRole{Workspace: types.Workspace{ID: workspaceID}, Role: types.RoleOwner}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create workspace without name",
			method:         http.MethodPost,
			path:           "/workspaces",
			body:           `{}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "get workspace",
			method: http.MethodGet,
			path:   "/workspaces/" + workspaceID,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().GetWorkspace(gomock.Any(), owner).Return(&types.WorkspaceWithRole{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "rename workspace",
			method: http.MethodPatch,
			path:   "/workspaces/" + workspaceID,
			body:   `{"name":"Renamed"}`,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().RenameWorkspace(gomock.Any(), owner, "Renamed").Return(&types.WorkspaceWithRole{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete workspace",
			method: http.MethodDelete,
			path:   "/workspaces/" + workspaceID,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().DeleteWorkspace(gomock.Any(), owner).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "list members",
			method: http.MethodGet,
			path:   "/workspaces/" + workspaceID + "/members",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().ListMembers(gomock.Any(), owner).Return([]*types.Membership{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "update member role",
			method: http.MethodPatch,
			path:   "/workspaces/" + workspaceID + "/members/" + memberID,
			body:   `{"role":"admin"}`,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().UpdateMemberRole(gomock.Any(), owner, memberID, types.RoleAdmin).
					Return(&types.Membership{UserID: memberID, Role: types.RoleAdmin}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "update member with owner role",
			method:         http.MethodPatch,
			path:           "/workspaces/" + workspaceID + "/members/" + memberID,
			body:           `{"role":"owner"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "update owner is forbidden",
			method:         http.MethodPatch,
			path:           "/workspaces/" + workspaceID + "/members/" + ownerID,
			body:           `{"role":"member"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
		{
			name:           "admin promoting owner to owner is forbidden",
			actor:          admin,
			method:         http.MethodPatch,
			path:           "/workspaces/" + workspaceID + "/members/" + ownerID,
			body:           `{"role":"owner"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
		{
			name:           "admin updating owner with empty body is forbidden",
			actor:          admin,
			method:         http.MethodPatch,
			path:           "/workspaces/" + workspaceID + "/members/" + ownerID,
			body:           `{}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
		{
			name:           "admin updating owner with malformed body is forbidden",
			actor:          admin,
			method:         http.MethodPatch,
			path:           "/workspaces/" + workspaceID + "/members/" + ownerID,
			body:           `{"role":`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
		{
			name:           "admin removing owner is forbidden",
			actor:          admin,
			method:         http.MethodDelete,
			path:           "/workspaces/" + workspaceID + "/members/" + ownerID,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Forbidden",
		},
		{
			name:   "remove unknown member",
			method: http.MethodDelete,
			path:   "/workspaces/" + workspaceID + "/members/ghost",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().RemoveMember(gomock.Any(), owner, "ghost").Return(storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "invite member",
			method: http.MethodPost,
			path:   "/workspaces/" + workspaceID + "/invite",
			body:   `{"email":"new@example.com","role":"member"}`,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().InviteMember(gomock.Any(), owner, "new@example.com", types.RoleMember).
					Return(&types.Invitation{ID: "inv-1", Token: "tok"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invite with invalid email",
			method:         http.MethodPost,
			path:           "/workspaces/" + workspaceID + "/invite",
			body:           `{"email":"nope"}`,
			setupMocks:     func(*MockServiceInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "list invitations",
			method: http.MethodGet,
			path:   "/workspaces/" + workspaceID + "/invitations",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().ListInvitations(gomock.Any(), owner).Return([]*InvitationView{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "cancel invitation",
			method: http.MethodDelete,
			path:   "/workspaces/" + workspaceID + "/invitations/inv-1",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().CancelInvitation(gomock.Any(), owner, "inv-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "accept expired invitation",
			method: http.MethodPost,
			path:   "/invitations/accept",
			body:   `{"token":"tok"}`,
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().AcceptInvitation(gomock.Any(), owner.Identity, "tok").Return(nil, types.ErrInvitationExpired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invitation has expired",
		},
		{
			name:   "get missing subscription",
			method: http.MethodGet,
			path:   "/workspaces/" + workspaceID + "/subscription",
			setupMocks: func(svc *MockServiceInterface, _ *MockLoggerInterface) {
				svc.EXPECT().GetSubscription(gomock.Any(), owner).Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "internal errors are hidden",
			method: http.MethodGet,
			path:   "/workspaces/" + workspaceID + "/subscription",
			setupMocks: func(svc *MockServiceInterface, logger *MockLoggerInterface) {
				svc.EXPECT().GetSubscription(gomock.Any(), owner).Return(nil, errors.New("pq: connection refused"))
				logger.EXPECT().Errorf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := tt.actor
			if actor == nil {
				actor = owner
			}

			router, svc, logger := newTestRouter(t, actor)
			tt.setupMocks(svc, logger)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}

			if tt.expectedError != "" {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body["error"] != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, body["error"])
				}
			}
		})
	}
}
