// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

// Guard decides whether an identity may act inside a workspace.
// It never writes and never caches: every call reads the current membership.
type Guard struct {
	store AccessStoreInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// AuthorizeTenantAccess resolves the membership of identity in workspaceID.
// A missing workspace and a missing membership are indistinguishable to the caller.
func (g *Guard) AuthorizeTenantAccess(ctx context.Context, identity *types.Identity, workspaceID string) (*Principal, error) {
	ctx, span := g.tracer.Start(ctx, "access.Guard.AuthorizeTenantAccess")
	defer span.End()

	if identity == nil || identity.ID == "" {
		return nil, types.ErrUnauthenticated
	}

	a, err := g.store.GetWorkspaceAccess(ctx, workspaceID, identity.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}

	if !a.IsMember() {
		return nil, types.ErrForbidden
	}

	return &Principal{
		Identity:    identity,
		WorkspaceID: a.WorkspaceID,
		OwnerID:     a.OwnerID,
		Role:        a.Role,
	}, nil
}

// Authorize is the single entry point combining membership and role checks.
func (g *Guard) Authorize(ctx context.Context, identity *types.Identity, workspaceID string, minRole types.Role) (*Principal, error) {
	ctx, span := g.tracer.Start(ctx, "access.Guard.Authorize")
	defer span.End()

	p, err := g.AuthorizeTenantAccess(ctx, identity, workspaceID)
	if err != nil {
		return nil, err
	}

	if minRole == types.RoleOwner {
		err = RequireOwner(p)
	} else {
		err = RequireRole(p, minRole)
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

// RequireRole fails when the effective role of p ranks below minRole.
func RequireRole(p *Principal, minRole types.Role) error {
	if p == nil || !p.Role.AtLeast(minRole) {
		return types.ErrForbidden
	}

	return nil
}

// RequireOwner accepts only the identity recorded as the workspace owner.
func RequireOwner(p *Principal) error {
	if p == nil || !p.IsOwner() {
		return types.ErrForbidden
	}

	return nil
}

// ProtectOwner rejects any role change or removal targeting the workspace owner,
// whoever the actor is.
func ProtectOwner(p *Principal, targetUserID string) error {
	if p == nil || targetUserID == "" || targetUserID == p.OwnerID {
		return types.ErrForbidden
	}

	return nil
}

func NewGuard(store AccessStoreInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Guard {
	g := new(Guard)

	g.store = store
	g.tracer = tracer
	g.monitor = monitor
	g.logger = logger

	return g
}
