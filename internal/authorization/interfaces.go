// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/types"
)

type AuthorizerInterface interface {
	Check(context.Context, string, string, string, ...openfga.Tuple) (bool, error)
	ValidateModel(context.Context) error

	AssignWorkspaceOwner(context.Context, string, string) error
	AssignWorkspaceRole(context.Context, string, string, types.Role) error
	ChangeWorkspaceRole(context.Context, string, string, types.Role, types.Role) error
	RemoveWorkspaceMember(context.Context, string, string, types.Role) error

	DeleteWorkspace(context.Context, string) error
	CheckWorkspaceAccess(context.Context, string, string, types.Role) (bool, error)
}

type AuthzClientInterface interface {
	Check(context.Context, string, string, string, ...openfga.Tuple) (bool, error)
	ReadModel(context.Context) (*fga.AuthorizationModel, error)
	CompareModel(context.Context, fga.AuthorizationModel) (bool, error)
	ReadTuples(context.Context, string, string, string, string) (*client.ClientReadResponse, error)
	WriteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuples(context.Context, ...openfga.Tuple) error
}
