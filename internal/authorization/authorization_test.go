// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"testing"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_logger.go -source=../logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_monitor.go -source=../monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_tracer.go -source=../tracing/interfaces.go

type authorizerMocks struct {
	client  *MockAuthzClientInterface
	tracer  *MockTracingInterface
	monitor *MockMonitorInterface
	logger  *MockLoggerInterface
}

func setupAuthorizer(t *testing.T) (*Authorizer, *authorizerMocks) {
	ctrl := gomock.NewController(t)

	m := &authorizerMocks{
		client:  NewMockAuthzClientInterface(ctrl),
		tracer:  NewMockTracingInterface(ctrl),
		monitor: NewMockMonitorInterface(ctrl),
		logger:  NewMockLoggerInterface(ctrl),
	}

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()

	return NewAuthorizer(m.client, m.tracer, m.monitor, m.logger), m
}

func TestAuthorizer_Check(t *testing.T) {
	user := "user:123"
	relation := "member"
	object := "workspace:456"
	contextualTuples := []openfga.Tuple{*openfga.NewTuple("user:789", "owner", "workspace:456")}

	testCases := []struct {
		name           string
		setupMocks     func(*MockAuthzClientInterface)
		expectedResult bool
		expectedErr    bool
	}{
		{
			name: "success - allowed",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), user, relation, object, contextualTuples).Return(true, nil)
			},
			expectedResult: true,
		},
		{
			name: "success - not allowed",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), user, relation, object, contextualTuples).Return(false, nil)
			},
		},
		{
			name: "error - client error",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().Check(gomock.Any(), user, relation, object, contextualTuples).Return(false, errors.New("client error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockAuthzClientInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			a := NewAuthorizer(mockClient, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.Check").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockClient)

			result, err := a.Check(context.Background(), user, relation, object, contextualTuples...)

			if tc.expectedErr && err == nil {
				t.Errorf("expected error but got nil")
			}
			if !tc.expectedErr && err != nil {
				t.Errorf("expected no error but got %v", err)
			}
			if result != tc.expectedResult {
				t.Errorf("expected result %v but got %v", tc.expectedResult, result)
			}
		})
	}
}

func TestAuthorizer_ValidateModel(t *testing.T) {
	testCases := []struct {
		name        string
		equal       bool
		compareErr  error
		expectedErr error
	}{
		{name: "model matches", equal: true},
		{name: "model differs", equal: false, expectedErr: ErrInvalidAuthModel},
		{name: "compare fails", compareErr: errors.New("unreachable")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, m := setupAuthorizer(t)

			m.client.EXPECT().CompareModel(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, model fga.AuthorizationModel) (bool, error) {
					if len(model.TypeDefinitions) != 2 {
						t.Errorf("expected 2 type definitions, got %d", len(model.TypeDefinitions))
					}
					return tc.equal, tc.compareErr
				})

			err := a.ValidateModel(context.Background())

			switch {
			case tc.compareErr != nil:
				if !errors.Is(err, tc.compareErr) {
					t.Errorf("expected %v, got %v", tc.compareErr, err)
				}
			case tc.expectedErr != nil:
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected %v, got %v", tc.expectedErr, err)
				}
			case err != nil:
				t.Errorf("expected no error but got %v", err)
			}
		})
	}
}

func TestAuthorizer_AssignWorkspaceRole(t *testing.T) {
	testCases := []struct {
		role     types.Role
		relation string
	}{
		{role: types.RoleMember, relation: MEMBER_RELATION},
		{role: types.RoleAdmin, relation: ADMIN_RELATION},
	}

	for _, tc := range testCases {
		t.Run(string(tc.role), func(t *testing.T) {
			a, m := setupAuthorizer(t)

			m.client.EXPECT().WriteTuple(gomock.Any(), "user:u1", tc.relation, "workspace:w1").Return(nil)

			if err := a.AssignWorkspaceRole(context.Background(), "w1", "u1", tc.role); err != nil {
				t.Errorf("expected no error but got %v", err)
			}
		})
	}
}

func TestAuthorizer_AssignWorkspaceOwner(t *testing.T) {
	a, m := setupAuthorizer(t)

	m.client.EXPECT().WriteTuple(gomock.Any(), "user:u1", OWNER_RELATION, "workspace:w1").Return(nil)

	if err := a.AssignWorkspaceOwner(context.Background(), "w1", "u1"); err != nil {
		t.Errorf("expected no error but got %v", err)
	}
}

func TestAuthorizer_ChangeWorkspaceRole(t *testing.T) {
	t.Run("swaps relations", func(t *testing.T) {
		a, m := setupAuthorizer(t)

		gomock.InOrder(
			m.client.EXPECT().DeleteTuple(gomock.Any(), "user:u1", MEMBER_RELATION, "workspace:w1").Return(nil),
			m.client.EXPECT().WriteTuple(gomock.Any(), "user:u1", ADMIN_RELATION, "workspace:w1").Return(nil),
		)

		if err := a.ChangeWorkspaceRole(context.Background(), "w1", "u1", types.RoleMember, types.RoleAdmin); err != nil {
			t.Errorf("expected no error but got %v", err)
		}
	})

	t.Run("same role is a noop", func(t *testing.T) {
		a, _ := setupAuthorizer(t)

		if err := a.ChangeWorkspaceRole(context.Background(), "w1", "u1", types.RoleAdmin, types.RoleAdmin); err != nil {
			t.Errorf("expected no error but got %v", err)
		}
	})

	t.Run("delete failure stops the swap", func(t *testing.T) {
		a, m := setupAuthorizer(t)

		m.client.EXPECT().DeleteTuple(gomock.Any(), "user:u1", ADMIN_RELATION, "workspace:w1").Return(errors.New("boom"))

		if err := a.ChangeWorkspaceRole(context.Background(), "w1", "u1", types.RoleAdmin, types.RoleMember); err == nil {
			t.Errorf("expected error but got nil")
		}
	})
}

func TestAuthorizer_RemoveWorkspaceMember(t *testing.T) {
	a, m := setupAuthorizer(t)

	m.client.EXPECT().DeleteTuple(gomock.Any(), "user:u1", ADMIN_RELATION, "workspace:w1").Return(nil)

	if err := a.RemoveWorkspaceMember(context.Background(), "w1", "u1", types.RoleAdmin); err != nil {
		t.Errorf("expected no error but got %v", err)
	}
}

func TestAuthorizer_CheckWorkspaceAccess(t *testing.T) {
	a, m := setupAuthorizer(t)

	m.client.EXPECT().Check(gomock.Any(), "user:u1", OWNER_RELATION, "workspace:w1").Return(true, nil)

	allowed, err := a.CheckWorkspaceAccess(context.Background(), "w1", "u1", types.RoleOwner)
	if err != nil {
		t.Errorf("expected no error but got %v", err)
	}
	if !allowed {
		t.Errorf("expected access to be allowed")
	}
}

func TestAuthorizer_DeleteWorkspace(t *testing.T) {
	object := "workspace:w1"

	page := func(token string, keys ...fga.TupleKey) *client.ClientReadResponse {
		r := new(client.ClientReadResponse)
		for _, k := range keys {
			r.Tuples = append(r.Tuples, fga.Tuple{Key: k})
		}
		r.ContinuationToken = token
		return r
	}

	t.Run("deletes every page", func(t *testing.T) {
		a, m := setupAuthorizer(t)

		gomock.InOrder(
			m.client.EXPECT().ReadTuples(gomock.Any(), "", "", object, "").
				Return(page("next", fga.TupleKey{User: "user:u1", Relation: "owner", Object: object}), nil),
			m.client.EXPECT().DeleteTuples(gomock.Any(), *openfga.NewTuple("user:u1", "owner", object)).Return(nil),
			m.client.EXPECT().ReadTuples(gomock.Any(), "", "", object, "next").
				Return(page("", fga.TupleKey{User: "user:u2", Relation: "member", Object: object}), nil),
			m.client.EXPECT().DeleteTuples(gomock.Any(), *openfga.NewTuple("user:u2", "member", object)).Return(nil),
		)

		if err := a.DeleteWorkspace(context.Background(), "w1"); err != nil {
			t.Errorf("expected no error but got %v", err)
		}
	})

	t.Run("read failure is logged and returned", func(t *testing.T) {
		a, m := setupAuthorizer(t)

		m.client.EXPECT().ReadTuples(gomock.Any(), "", "", object, "").Return(nil, errors.New("boom"))
		m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any())

		if err := a.DeleteWorkspace(context.Background(), "w1"); err == nil {
			t.Errorf("expected error but got nil")
		}
	})
}

func TestAuthorizationModelProvider(t *testing.T) {
	model, err := NewAuthorizationModelProvider("v0").GetModel()
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}

	if model.SchemaVersion != "1.1" {
		t.Errorf("expected schema 1.1, got %s", model.SchemaVersion)
	}

	if _, err := NewAuthorizationModelProvider("v9").GetModel(); err == nil {
		t.Errorf("expected error for unknown version")
	}
}
