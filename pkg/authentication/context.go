// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/nexus-app/workspace-service/internal/types"
)

type contextKey struct{}

var identityContextKey = contextKey{}

// WithIdentity returns a copy of ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext returns the caller stored by the authentication middleware.
func IdentityFromContext(ctx context.Context) (*types.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*types.Identity)
	if !ok || identity == nil || identity.ID == "" {
		return nil, false
	}

	return identity, true
}
