// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"

	"github.com/nexus-app/workspace-service/internal/types"
)

// AccessStoreInterface is the single read the guard needs from the store.
type AccessStoreInterface interface {
	GetWorkspaceAccess(ctx context.Context, workspaceID, userID string) (*types.WorkspaceAccess, error)
}

type GuardInterface interface {
	AuthorizeTenantAccess(ctx context.Context, identity *types.Identity, workspaceID string) (*Principal, error)
	Authorize(ctx context.Context, identity *types.Identity, workspaceID string, minRole types.Role) (*Principal, error)
}
