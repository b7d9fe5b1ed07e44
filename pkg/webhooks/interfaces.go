// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/nexus-app/workspace-service/internal/types"
)

// StorageInterface is the subset of internal/storage used by the identity webhooks.
type StorageInterface interface {
	CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error)
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
}

// AuthorizerInterface is the subset of internal/authorization used by the identity webhooks.
type AuthorizerInterface interface {
	AssignWorkspaceOwner(ctx context.Context, workspaceID, userID string) error
}

type ServiceInterface interface {
	HandleRegistration(ctx context.Context, identityID, email string) (*types.Workspace, error)
	HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error)
}
