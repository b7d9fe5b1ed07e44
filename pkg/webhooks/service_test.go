// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ory/hydra/v2/oauth2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_webhooks.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()

	return tracer
}

func TestService_HandleRegistration(t *testing.T) {
	identityID := "identity-123"
	created := &types.Workspace{ID: "ws-123", Name: "user's workspace", OwnerID: identityID}

	testCases := []struct {
		name       string
		identityID string
		email      string
		setupMocks func(*MockStorageInterface, *MockAuthorizerInterface, *MockLoggerInterface)
		expectedID string
		expectErr  bool
	}{
		{
			name:       "creates a personal workspace",
			identityID: identityID,
			email:      "user@example.com",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
				s.EXPECT().ListWorkspacesByUserID(gomock.Any(), identityID).Return(nil, nil)
				s.EXPECT().CreateWorkspace(gomock.Any(), &types.Workspace{Name: "user's workspace", OwnerID: identityID}).Return(created, nil)
				a.EXPECT().AssignWorkspaceOwner(gomock.Any(), created.ID, identityID).Return(nil)
				l.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedID: created.ID,
		},
		{
			name:       "empty email falls back to a generic name",
			identityID: identityID,
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
				s.EXPECT().ListWorkspacesByUserID(gomock.Any(), identityID).Return(nil, nil)
				s.EXPECT().CreateWorkspace(gomock.Any(), &types.Workspace{Name: "Personal", OwnerID: identityID}).Return(created, nil)
				a.EXPECT().AssignWorkspaceOwner(gomock.Any(), created.ID, identityID).Return(nil)
				l.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedID: created.ID,
		},
		{
			name:       "redelivery returns the owned workspace",
			identityID: identityID,
			email:      "user@example.com",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
				s.EXPECT().ListWorkspacesByUserID(gomock.Any(), identityID).Return([]*types.WorkspaceWithRole{
					{Workspace: types.Workspace{ID: "ws-shared"}, Role: types.RoleMember},
					{Workspace: types.Workspace{ID: "ws-owned"}, Role: types.RoleOwner},
				}, nil)
			},
			expectedID: "ws-owned",
		},
		{
			name:       "empty identity id",
			identityID: "",
			email:      "user@example.com",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectErr: true,
		},
		{
			name:       "storage failure",
			identityID: identityID,
			email:      "user@example.com",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
				s.EXPECT().ListWorkspacesByUserID(gomock.Any(), identityID).Return(nil, nil)
				s.EXPECT().CreateWorkspace(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectErr: true,
		},
		{
			name:       "authz failure",
			identityID: identityID,
			email:      "user@example.com",
			setupMocks: func(s *MockStorageInterface, a *MockAuthorizerInterface, l *MockLoggerInterface) {
				l.EXPECT().Debugf(gomock.Any(), gomock.Any())
				s.EXPECT().ListWorkspacesByUserID(gomock.Any(), identityID).Return(nil, nil)
				s.EXPECT().CreateWorkspace(gomock.Any(), gomock.Any()).Return(created, nil)
				a.EXPECT().AssignWorkspaceOwner(gomock.Any(), created.ID, identityID).Return(errors.New("fga down"))
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAuthz := NewMockAuthorizerInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			tc.setupMocks(mockStorage, mockAuthz, mockLogger)

			svc := NewService(mockStorage, mockAuthz, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger)

			w, err := svc.HandleRegistration(context.Background(), tc.identityID, tc.email)

			if tc.expectErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if w.ID != tc.expectedID {
				t.Errorf("expected workspace %s, got %s", tc.expectedID, w.ID)
			}
		})
	}
}

func TestService_HandleTokenHook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	svc := NewService(mockStorage, NewMockAuthorizerInterface(ctrl), passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	mockStorage.EXPECT().ListWorkspacesByUserID(gomock.Any(), "user-1").Return([]*types.WorkspaceWithRole{
		{Workspace: types.Workspace{ID: "ws-1"}, Role: types.RoleOwner},
		{Workspace: types.Workspace{ID: "ws-2"}, Role: types.RoleMember},
	}, nil)

	resp, err := svc.HandleTokenHook(context.Background(), &oauth2.TokenHookRequest{Session: oauth2.NewSession("user-1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"ws-1", "ws-2"}
	if !reflect.DeepEqual(resp.Session.AccessToken[WorkspacesClaim], expected) {
		t.Errorf("expected access token claim %v, got %v", expected, resp.Session.AccessToken[WorkspacesClaim])
	}
	if !reflect.DeepEqual(resp.Session.IDToken[WorkspacesClaim], expected) {
		t.Errorf("expected id token claim %v, got %v", expected, resp.Session.IDToken[WorkspacesClaim])
	}

	if _, err := svc.HandleTokenHook(context.Background(), &oauth2.TokenHookRequest{}); !errors.Is(err, types.ErrValidation) {
		t.Errorf("expected validation error for a session without subject, got %v", err)
	}
}
