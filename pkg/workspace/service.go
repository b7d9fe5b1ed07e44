// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
)

type Service struct {
	storage            StorageInterface
	authz              AuthzInterface
	kratos             KratosClientInterface
	invitationLifetime time.Duration
	now                func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	authz AuthzInterface,
	kratos KratosClientInterface,
	invitationLifetime time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:            storage,
		authz:              authz,
		kratos:             kratos,
		invitationLifetime: invitationLifetime,
		now:                time.Now,
		tracer:             tracer,
		monitor:            monitor,
		logger:             logger,
	}
}

func (s *Service) ListWorkspaces(ctx context.Context, identity *types.Identity) ([]*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.ListWorkspaces")
	defer span.End()

	workspaces, err := s.storage.ListWorkspacesByUserID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	return workspaces, nil
}

// CreateWorkspace creates a workspace owned by identity.
func (s *Service) CreateWorkspace(ctx context.Context, identity *types.Identity, name string) (*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.CreateWorkspace")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", types.ErrValidation)
	}

	created, err := s.storage.CreateWorkspace(ctx, &types.Workspace{Name: name, OwnerID: identity.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := s.authz.AssignWorkspaceOwner(ctx, created.ID, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to assign workspace owner: %w", err)
	}

	s.logger.Infof("workspace %s created by %s", created.ID, identity.ID)

	return &types.WorkspaceWithRole{Workspace: *created, Role: types.RoleOwner}, nil
}

func (s *Service) GetWorkspace(ctx context.Context, p *access.Principal) (*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.GetWorkspace")
	defer span.End()

	w, err := s.storage.GetWorkspace(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return &types.WorkspaceWithRole{Workspace: *w, Role: p.Role}, nil
}

func (s *Service) RenameWorkspace(ctx context.Context, p *access.Principal, name string) (*types.WorkspaceWithRole, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.RenameWorkspace")
	defer span.End()

	if err := access.RequireOwner(p); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", types.ErrValidation)
	}

	w, err := s.storage.UpdateWorkspaceName(ctx, p.WorkspaceID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to rename workspace: %w", err)
	}

	return &types.WorkspaceWithRole{Workspace: *w, Role: p.Role}, nil
}

// DeleteWorkspace removes the workspace with its memberships, invitations and subscription.
func (s *Service) DeleteWorkspace(ctx context.Context, p *access.Principal) error {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.DeleteWorkspace")
	defer span.End()

	if err := access.RequireOwner(p); err != nil {
		return err
	}

	if err := s.storage.DeleteWorkspace(ctx, p.WorkspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	if err := s.authz.DeleteWorkspace(ctx, p.WorkspaceID); err != nil {
		// storage is already deleted, only log
		s.logger.Errorf("failed to delete workspace from authz: %v", err)
	}

	s.logger.Security().AdminAction(p.Identity.ID, "delete_workspace", "workspace:"+p.WorkspaceID)

	return nil
}

// ListMembers returns the memberships of the workspace. Emails are filled in
// from the identity provider when it is reachable.
func (s *Service) ListMembers(ctx context.Context, p *access.Principal) ([]*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.ListMembers")
	defer span.End()

	members, err := s.storage.ListMembers(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	emails, err := s.kratos.GetIdentityEmails(ctx, ids)
	if err != nil {
		s.logger.Warnf("failed to resolve member emails: %v", err)
		return members, nil
	}

	for _, m := range members {
		m.Email = emails[m.UserID]
	}

	return members, nil
}

// UpdateMemberRole changes the stored role of a member. The owner can never be targeted.
func (s *Service) UpdateMemberRole(ctx context.Context, p *access.Principal, userID string, role types.Role) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.UpdateMemberRole")
	defer span.End()

	if err := access.RequireRole(p, types.RoleAdmin); err != nil {
		return nil, err
	}

	if err := access.ProtectOwner(p, userID); err != nil {
		return nil, err
	}

	if !role.Assignable() {
		return nil, fmt.Errorf("%w: role must be member or admin", types.ErrValidation)
	}

	current, err := s.storage.GetMember(ctx, p.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if current.Role != role {
		if err := s.storage.UpdateMemberRole(ctx, p.WorkspaceID, userID, role); err != nil {
			return nil, fmt.Errorf("failed to update member: %w", err)
		}

		if err := s.authz.ChangeWorkspaceRole(ctx, p.WorkspaceID, userID, current.Role, role); err != nil {
			return nil, fmt.Errorf("failed to update member relation: %w", err)
		}

		s.logger.Security().AdminAction(p.Identity.ID, "change_role:"+string(role), "workspace:"+p.WorkspaceID+"/user:"+userID)
	}

	current.Role = role

	return current, nil
}

// RemoveMember deletes a membership. The owner can never be targeted.
func (s *Service) RemoveMember(ctx context.Context, p *access.Principal, userID string) error {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.RemoveMember")
	defer span.End()

	if err := access.RequireRole(p, types.RoleAdmin); err != nil {
		return err
	}

	if err := access.ProtectOwner(p, userID); err != nil {
		return err
	}

	current, err := s.storage.GetMember(ctx, p.WorkspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.storage.RemoveMember(ctx, p.WorkspaceID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.authz.RemoveWorkspaceMember(ctx, p.WorkspaceID, userID, current.Role); err != nil {
		return fmt.Errorf("failed to remove member relation: %w", err)
	}

	s.logger.Security().AdminAction(p.Identity.ID, "remove_member", "workspace:"+p.WorkspaceID+"/user:"+userID)

	return nil
}

// InviteMember issues a single use invitation for email, replacing any pending
// invitation for the same address.
func (s *Service) InviteMember(ctx context.Context, p *access.Principal, email string, role types.Role) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.InviteMember")
	defer span.End()

	if err := access.RequireRole(p, types.RoleAdmin); err != nil {
		return nil, err
	}

	if role == "" {
		role = types.RoleMember
	}

	if !role.Assignable() {
		return nil, fmt.Errorf("%w: role must be member or admin", types.ErrValidation)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", types.ErrValidation)
	}

	inv, err := s.storage.UpsertInvitation(ctx, &types.Invitation{
		WorkspaceID: p.WorkspaceID,
		Email:       email,
		Role:        role,
		Token:       uuid.NewString(),
		InvitedBy:   p.Identity.ID,
		ExpiresAt:   s.now().Add(s.invitationLifetime).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.logger.Infof("invitation %s issued for workspace %s", inv.ID, p.WorkspaceID)

	return inv, nil
}

func (s *Service) ListInvitations(ctx context.Context, p *access.Principal) ([]*InvitationView, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.ListInvitations")
	defer span.End()

	if err := access.RequireRole(p, types.RoleAdmin); err != nil {
		return nil, err
	}

	invitations, err := s.storage.ListInvitations(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	now := s.now()
	views := make([]*InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		v := &InvitationView{Invitation: *inv, Expired: inv.Expired(now)}
		v.Token = ""
		views = append(views, v)
	}

	return views, nil
}

func (s *Service) CancelInvitation(ctx context.Context, p *access.Principal, invitationID string) error {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.CancelInvitation")
	defer span.End()

	if err := access.RequireRole(p, types.RoleAdmin); err != nil {
		return err
	}

	if err := s.storage.DeleteInvitation(ctx, p.WorkspaceID, invitationID); err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	return nil
}

// AcceptInvitation consumes token on behalf of identity. Expired invitations are
// rejected without any mutation. An existing membership is returned unchanged.
func (s *Service) AcceptInvitation(ctx context.Context, identity *types.Identity, token string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.AcceptInvitation")
	defer span.End()

	inv, err := s.storage.GetInvitationByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if inv.Expired(s.now()) {
		return nil, types.ErrInvitationExpired
	}

	if identity.Email == "" || !strings.EqualFold(strings.TrimSpace(identity.Email), inv.Email) {
		s.logger.Security().AuthzFailure(identity.ID, "invitation:"+inv.ID)
		return nil, types.ErrForbidden
	}

	existing, err := s.storage.GetMember(ctx, inv.WorkspaceID, identity.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	m, err := s.storage.AcceptInvitation(ctx, inv, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	if existing == nil {
		if err := s.authz.AssignWorkspaceRole(ctx, inv.WorkspaceID, identity.ID, inv.Role); err != nil {
			return nil, fmt.Errorf("failed to assign member relation: %w", err)
		}
	}

	s.logger.Infof("invitation %s accepted by %s", inv.ID, identity.ID)

	return m, nil
}

func (s *Service) GetSubscription(ctx context.Context, p *access.Principal) (*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "workspace.Service.GetSubscription")
	defer span.End()

	sub, err := s.storage.GetSubscription(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}
