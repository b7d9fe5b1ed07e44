// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/nexus-app/workspace-service/internal/types"
)

type StorageInterface interface {
	CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*types.Workspace, error)
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
	UpdateWorkspaceName(ctx context.Context, id, name string) (*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error

	GetWorkspaceAccess(ctx context.Context, workspaceID, userID string) (*types.WorkspaceAccess, error)
	ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	GetMember(ctx context.Context, workspaceID, userID string) (*types.Membership, error)
	AddMember(ctx context.Context, workspaceID, userID string, role types.Role) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID string, role types.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error

	UpsertInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	ListInvitations(ctx context.Context, workspaceID string) ([]*types.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error)
	DeleteInvitation(ctx context.Context, workspaceID, invitationID string) error
	AcceptInvitation(ctx context.Context, inv *types.Invitation, userID string) (*types.Membership, error)

	GetSubscription(ctx context.Context, workspaceID string) (*types.Subscription, error)
	UpsertSubscription(ctx context.Context, sub *types.Subscription) (*types.Subscription, error)
	UpdateSubscriptionByStripeID(ctx context.Context, sub *types.Subscription) error
	SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus, keepCanceled bool) error
}
