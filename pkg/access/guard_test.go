// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_interfaces.go -source=./interfaces.go

const workspaceID = "0195f3a2-7c4e-7d1a-9b52-3f0c6b1e8a10"

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()

	return tracer
}

func TestGuard_Authorize(t *testing.T) {
	owner := &types.Identity{ID: "owner"}
	admin := &types.Identity{ID: "admin"}
	member := &types.Identity{ID: "member"}
	stranger := &types.Identity{ID: "stranger"}

	access := func(userID string, role types.Role) *types.WorkspaceAccess {
		return &types.WorkspaceAccess{WorkspaceID: workspaceID, OwnerID: owner.ID, UserID: userID, Role: role}
	}

	tests := []struct {
		name         string
		identity     *types.Identity
		minRole      types.Role
		access       *types.WorkspaceAccess
		storeErr     error
		expectedErr  error
		expectedRole types.Role
		expectStore  bool
	}{
		{
			name:         "member reads",
			identity:     member,
			minRole:      types.RoleMember,
			access:       access(member.ID, types.RoleMember),
			expectedRole: types.RoleMember,
			expectStore:  true,
		},
		{
			name:        "member cannot act as admin",
			identity:    member,
			minRole:     types.RoleAdmin,
			access:      access(member.ID, types.RoleMember),
			expectedErr: types.ErrForbidden,
			expectStore: true,
		},
		{
			name:         "admin acts as admin",
			identity:     admin,
			minRole:      types.RoleAdmin,
			access:       access(admin.ID, types.RoleAdmin),
			expectedRole: types.RoleAdmin,
			expectStore:  true,
		},
		{
			name:        "admin is not owner",
			identity:    admin,
			minRole:     types.RoleOwner,
			access:      access(admin.ID, types.RoleAdmin),
			expectedErr: types.ErrForbidden,
			expectStore: true,
		},
		{
			name:         "owner satisfies every role",
			identity:     owner,
			minRole:      types.RoleOwner,
			access:       access(owner.ID, types.RoleOwner),
			expectedRole: types.RoleOwner,
			expectStore:  true,
		},
		{
			name:        "non member is forbidden",
			identity:    stranger,
			minRole:     types.RoleMember,
			access:      access(stranger.ID, ""),
			expectedErr: types.ErrForbidden,
			expectStore: true,
		},
		{
			name:        "missing workspace is forbidden",
			identity:    member,
			minRole:     types.RoleMember,
			storeErr:    storage.ErrNotFound,
			expectedErr: types.ErrForbidden,
			expectStore: true,
		},
		{
			name:        "store failure is not forbidden",
			identity:    member,
			minRole:     types.RoleMember,
			storeErr:    errors.New("connection reset"),
			expectStore: true,
		},
		{
			name:        "missing identity",
			identity:    nil,
			minRole:     types.RoleMember,
			expectedErr: types.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStore := NewMockAccessStoreInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			if tt.expectStore {
				mockStore.EXPECT().GetWorkspaceAccess(gomock.Any(), workspaceID, tt.identity.ID).Return(tt.access, tt.storeErr)
			}

			g := NewGuard(mockStore, passthroughTracer(ctrl), mockMonitor, mockLogger)

			p, err := g.Authorize(context.Background(), tt.identity, workspaceID, tt.minRole)

			switch {
			case tt.expectedErr != nil:
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("expected error %v, got %v", tt.expectedErr, err)
				}
				if p != nil {
					t.Errorf("expected no principal, got %+v", p)
				}
			case tt.storeErr != nil:
				if err == nil || errors.Is(err, types.ErrForbidden) {
					t.Errorf("expected internal error, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if p.Role != tt.expectedRole {
					t.Errorf("expected role %s, got %s", tt.expectedRole, p.Role)
				}
				if p.WorkspaceID != workspaceID || p.OwnerID != owner.ID {
					t.Errorf("unexpected principal %+v", p)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	roles := []types.Role{types.RoleMember, types.RoleAdmin, types.RoleOwner}

	for _, have := range roles {
		for _, want := range roles {
			t.Run(fmt.Sprintf("%s requires %s", have, want), func(t *testing.T) {
				err := RequireRole(&Principal{Role: have}, want)

				allowed := have.Rank() >= want.Rank()
				if allowed && err != nil {
					t.Errorf("expected %s to satisfy %s, got %v", have, want, err)
				}
				if !allowed && !errors.Is(err, types.ErrForbidden) {
					t.Errorf("expected forbidden, got %v", err)
				}
			})
		}
	}

	if err := RequireRole(&Principal{Role: ""}, types.RoleMember); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("expected empty role to be forbidden, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		allowed   bool
	}{
		{"owner", &Principal{Identity: &types.Identity{ID: "o"}, OwnerID: "o", Role: types.RoleOwner}, true},
		{"admin role without ownership", &Principal{Identity: &types.Identity{ID: "a"}, OwnerID: "o", Role: types.RoleOwner}, false},
		{"nil principal", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwner(tt.principal)
			if tt.allowed != (err == nil) {
				t.Errorf("expected allowed=%v, got %v", tt.allowed, err)
			}
		})
	}
}

func TestProtectOwner(t *testing.T) {
	p := &Principal{Identity: &types.Identity{ID: "owner"}, OwnerID: "owner", Role: types.RoleOwner}

	if err := ProtectOwner(p, "owner"); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("expected owner acting on self to be forbidden, got %v", err)
	}

	admin := &Principal{Identity: &types.Identity{ID: "admin"}, OwnerID: "owner", Role: types.RoleAdmin}
	if err := ProtectOwner(admin, "owner"); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("expected admin acting on owner to be forbidden, got %v", err)
	}

	if err := ProtectOwner(admin, "member"); err != nil {
		t.Errorf("expected admin acting on member to be allowed, got %v", err)
	}
}
