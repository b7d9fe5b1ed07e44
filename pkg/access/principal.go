// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"

	"github.com/nexus-app/workspace-service/internal/types"
)

// Principal is the authorized caller of a workspace scoped request.
type Principal struct {
	Identity    *types.Identity
	WorkspaceID string
	OwnerID     string
	Role        types.Role
}

// IsOwner reports whether the caller owns the workspace.
func (p *Principal) IsOwner() bool {
	return p.Identity != nil && p.Identity.ID != "" && p.Identity.ID == p.OwnerID
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by the guard middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
