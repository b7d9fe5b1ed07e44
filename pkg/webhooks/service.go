// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

const personalWorkspaceName = "Personal"

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// HandleRegistration provisions the personal workspace of a new identity.
// Redelivery of the hook returns the workspace the identity already owns.
func (s *Service) HandleRegistration(ctx context.Context, identityID, email string) (*types.Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	s.logger.Debugf("handling registration for identity %s", identityID)

	if identityID == "" {
		return nil, fmt.Errorf("%w: identity id is empty", types.ErrValidation)
	}

	existing, err := s.storage.ListWorkspacesByUserID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	for _, w := range existing {
		if w.Role == types.RoleOwner {
			return &w.Workspace, nil
		}
	}

	workspace, err := s.storage.CreateWorkspace(ctx, &types.Workspace{
		Name:    workspaceName(email),
		OwnerID: identityID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := s.authz.AssignWorkspaceOwner(ctx, workspace.ID, identityID); err != nil {
		return nil, fmt.Errorf("failed to assign workspace owner in authz: %w", err)
	}

	s.logger.Infof("provisioned workspace %s for identity %s", workspace.ID, identityID)

	return workspace, nil
}

// HandleTokenHook adds the ids of the subject's workspaces to the issued tokens.
func (s *Service) HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleTokenHook")
	defer span.End()

	if req == nil || req.Session == nil || req.Session.DefaultSession == nil || req.Session.DefaultSession.Subject == "" {
		return nil, fmt.Errorf("%w: token hook session has no subject", types.ErrValidation)
	}

	subject := req.Session.DefaultSession.Subject

	workspaces, err := s.storage.ListWorkspacesByUserID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	ids := make([]string, 0, len(workspaces))
	for _, w := range workspaces {
		ids = append(ids, w.ID)
	}

	resp := new(TokenHookResponse)
	resp.Session.IDToken = map[string]interface{}{WorkspacesClaim: ids}
	resp.Session.AccessToken = map[string]interface{}{WorkspacesClaim: ids}

	return resp, nil
}

func workspaceName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return personalWorkspaceName
	}

	return fmt.Sprintf("%s's workspace", local)
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.authz = authz
	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
