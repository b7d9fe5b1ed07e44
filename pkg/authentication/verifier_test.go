// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

func TestJWTVerifierPolicy(t *testing.T) {
	tests := []struct {
		name            string
		allowedSubjects []string
		requiredScope   string
		claims          jwtClaims
		expected        bool
	}{
		{name: "no policy accepts every subject", claims: jwtClaims{Subject: "u1"}, expected: true},
		{name: "allowed subject", allowedSubjects: []string{"svc"}, claims: jwtClaims{Subject: "svc"}, expected: true},
		{name: "subject not allowed", allowedSubjects: []string{"svc"}, claims: jwtClaims{Subject: "u1"}, expected: false},
		{name: "space separated scope", requiredScope: "workspaces", claims: jwtClaims{Subject: "u1", Scope: "openid workspaces"}, expected: true},
		{name: "scp array scope", requiredScope: "workspaces", claims: jwtClaims{Subject: "u1", Scopes: []string{"workspaces"}}, expected: true},
		{name: "missing scope", requiredScope: "workspaces", claims: jwtClaims{Subject: "u1", Scope: "openid"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTVerifierDirect(nil, tt.allowedSubjects, tt.requiredScope, nil, nil, nil)

			if got := v.allowed(&tt.claims); got != tt.expected {
				t.Errorf("allowed() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNoopVerifier(t *testing.T) {
	v := NewNoopVerifier()

	identity, err := v.VerifyToken(context.Background(), "user-1:User@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "user-1" || identity.Email != "user@example.com" {
		t.Errorf("unexpected identity %+v", identity)
	}

	if _, err := v.VerifyToken(context.Background(), " "); !errors.Is(err, types.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated error, got %v", err)
	}
}

func TestKratosVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := logging.NewNoopLogger()
	sessions := NewMockSessionResolverInterface(ctrl)

	sessions.EXPECT().ResolveSession(gomock.Any(), "good").Return(&types.Identity{ID: "kratos-id"}, nil)
	sessions.EXPECT().ResolveSession(gomock.Any(), "bad").Return(nil, errors.New("401 Unauthorized"))

	v := NewKratosVerifier(sessions, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	identity, err := v.VerifyToken(context.Background(), "good")
	if err != nil || identity.ID != "kratos-id" {
		t.Errorf("unexpected result %+v, %v", identity, err)
	}

	if _, err := v.VerifyToken(context.Background(), "bad"); !errors.Is(err, types.ErrUnauthenticated) {
		t.Errorf("expected unauthenticated error, got %v", err)
	}
}

func TestNewAuthenticatorUnknownProvider(t *testing.T) {
	logger := logging.NewNoopLogger()

	_, err := NewAuthenticator(
		context.Background(),
		Config{Provider: "saml"},
		nil,
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test", logger),
		logger,
	)
	if err == nil {
		t.Errorf("expected error for unknown provider")
	}
}

func TestNewAuthenticatorKratosRequiresResolver(t *testing.T) {
	logger := logging.NewNoopLogger()

	if _, err := NewAuthenticator(context.Background(), Config{Provider: ProviderKratos}, nil, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger); err == nil {
		t.Errorf("expected error without a session resolver")
	}
}
