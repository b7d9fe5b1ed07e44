// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

var ErrInvalidAuthModel = fmt.Errorf("invalid authorization model schema")

// Authorizer mirrors workspace roles into OpenFGA relations.
type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, user string, relation string, object string, contextualTuples ...openfga.Tuple) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	return a.client.Check(ctx, user, relation, object, contextualTuples...)
}

func (a *Authorizer) ValidateModel(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ValidateModel")
	defer span.End()

	model, err := NewAuthorizationModelProvider("v0").GetModel()
	if err != nil {
		return err
	}

	eq, err := a.client.CompareModel(ctx, *model)
	if err != nil {
		return err
	}
	if !eq {
		return ErrInvalidAuthModel
	}
	return nil
}

func (a *Authorizer) AssignWorkspaceOwner(ctx context.Context, workspaceId, userId string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AssignWorkspaceOwner")
	defer span.End()

	return a.client.WriteTuple(ctx, UserTuple(userId), OWNER_RELATION, WorkspaceTuple(workspaceId))
}

func (a *Authorizer) AssignWorkspaceRole(ctx context.Context, workspaceId, userId string, role types.Role) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AssignWorkspaceRole")
	defer span.End()

	return a.client.WriteTuple(ctx, UserTuple(userId), RoleRelation(role), WorkspaceTuple(workspaceId))
}

// ChangeWorkspaceRole swaps the relation of userId from one role to another.
func (a *Authorizer) ChangeWorkspaceRole(ctx context.Context, workspaceId, userId string, from, to types.Role) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ChangeWorkspaceRole")
	defer span.End()

	if RoleRelation(from) == RoleRelation(to) {
		return nil
	}

	if err := a.client.DeleteTuple(ctx, UserTuple(userId), RoleRelation(from), WorkspaceTuple(workspaceId)); err != nil {
		return err
	}

	return a.client.WriteTuple(ctx, UserTuple(userId), RoleRelation(to), WorkspaceTuple(workspaceId))
}

func (a *Authorizer) RemoveWorkspaceMember(ctx context.Context, workspaceId, userId string, role types.Role) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RemoveWorkspaceMember")
	defer span.End()

	return a.client.DeleteTuple(ctx, UserTuple(userId), RoleRelation(role), WorkspaceTuple(workspaceId))
}

func (a *Authorizer) CheckWorkspaceAccess(ctx context.Context, workspaceId, userId string, role types.Role) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckWorkspaceAccess")
	defer span.End()

	return a.Check(ctx, UserTuple(userId), RoleRelation(role), WorkspaceTuple(workspaceId))
}

// DeleteWorkspace removes every tuple whose object is the workspace, page by page.
func (a *Authorizer) DeleteWorkspace(ctx context.Context, workspaceId string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.DeleteWorkspace")
	defer span.End()

	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, "", "", WorkspaceTuple(workspaceId), cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples: %s", err)
			return err
		}
		if len(r.Tuples) == 0 {
			break
		}
		ts := make([]openfga.Tuple, len(r.Tuples))
		for i, t := range r.Tuples {
			ts[i] = *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object)
		}
		if err := a.client.DeleteTuples(ctx, ts...); err != nil {
			a.logger.Errorf("error when deleting tuples %v: %s", ts, err)
			return err
		}
		if r.ContinuationToken == "" {
			break
		}
		cToken = r.ContinuationToken
	}
	return nil
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.client = client
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
