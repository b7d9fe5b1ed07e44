// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"net/http"

	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
)

type ServiceInterface interface {
	ListWorkspaces(ctx context.Context, identity *types.Identity) ([]*types.WorkspaceWithRole, error)
	CreateWorkspace(ctx context.Context, identity *types.Identity, name string) (*types.WorkspaceWithRole, error)
	GetWorkspace(ctx context.Context, p *access.Principal) (*types.WorkspaceWithRole, error)
	RenameWorkspace(ctx context.Context, p *access.Principal, name string) (*types.WorkspaceWithRole, error)
	DeleteWorkspace(ctx context.Context, p *access.Principal) error

	ListMembers(ctx context.Context, p *access.Principal) ([]*types.Membership, error)
	UpdateMemberRole(ctx context.Context, p *access.Principal, userID string, role types.Role) (*types.Membership, error)
	RemoveMember(ctx context.Context, p *access.Principal, userID string) error

	InviteMember(ctx context.Context, p *access.Principal, email string, role types.Role) (*types.Invitation, error)
	ListInvitations(ctx context.Context, p *access.Principal) ([]*InvitationView, error)
	CancelInvitation(ctx context.Context, p *access.Principal, invitationID string) error
	AcceptInvitation(ctx context.Context, identity *types.Identity, token string) (*types.Membership, error)

	GetSubscription(ctx context.Context, p *access.Principal) (*types.Subscription, error)
}

// StorageInterface is the subset of internal/storage used by the workspace service.
type StorageInterface interface {
	CreateWorkspace(ctx context.Context, w *types.Workspace) (*types.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*types.Workspace, error)
	ListWorkspacesByUserID(ctx context.Context, userID string) ([]*types.WorkspaceWithRole, error)
	UpdateWorkspaceName(ctx context.Context, id, name string) (*types.Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error

	ListMembers(ctx context.Context, workspaceID string) ([]*types.Membership, error)
	GetMember(ctx context.Context, workspaceID, userID string) (*types.Membership, error)
	UpdateMemberRole(ctx context.Context, workspaceID, userID string, role types.Role) error
	RemoveMember(ctx context.Context, workspaceID, userID string) error

	UpsertInvitation(ctx context.Context, inv *types.Invitation) (*types.Invitation, error)
	ListInvitations(ctx context.Context, workspaceID string) ([]*types.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*types.Invitation, error)
	DeleteInvitation(ctx context.Context, workspaceID, invitationID string) error
	AcceptInvitation(ctx context.Context, inv *types.Invitation, userID string) (*types.Membership, error)

	GetSubscription(ctx context.Context, workspaceID string) (*types.Subscription, error)
}

// AuthzInterface mirrors membership changes into the relationship store.
type AuthzInterface interface {
	AssignWorkspaceOwner(ctx context.Context, workspaceID, userID string) error
	AssignWorkspaceRole(ctx context.Context, workspaceID, userID string, role types.Role) error
	ChangeWorkspaceRole(ctx context.Context, workspaceID, userID string, from, to types.Role) error
	RemoveWorkspaceMember(ctx context.Context, workspaceID, userID string, role types.Role) error
	DeleteWorkspace(ctx context.Context, workspaceID string) error
}

type KratosClientInterface interface {
	GetIdentityEmails(ctx context.Context, ids []string) (map[string]string, error)
}

// GuardInterface provides the per route workspace guards.
type GuardInterface interface {
	RequireMember() func(http.Handler) http.Handler
	RequireAdmin() func(http.Handler) http.Handler
	RequireOwner() func(http.Handler) http.Handler
}
