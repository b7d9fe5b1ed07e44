// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"github.com/nexus-app/workspace-service/internal/types"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type UpdateMemberRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin"`
}

type InviteMemberRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role" validate:"omitempty,oneof=member admin"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

// InvitationView is an invitation as listed to workspace admins.
type InvitationView struct {
	types.Invitation

	Expired bool `json:"expired"`
}

type ListWorkspacesResponse struct {
	Workspaces []*types.WorkspaceWithRole `json:"workspaces"`
}

type ListMembersResponse struct {
	Members []*types.Membership `json:"members"`
}

type ListInvitationsResponse struct {
	Invitations []*InvitationView `json:"invitations"`
}
