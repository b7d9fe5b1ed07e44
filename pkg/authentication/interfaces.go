// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/nexus-app/workspace-service/internal/types"
)

type ProviderInterface interface {
	// Verifier returns the token verifier associated with the specified OIDC issuer
	Verifier(*oidc.Config) *oidc.IDTokenVerifier
}

type TokenVerifierInterface interface {
	// VerifyToken validates a bearer credential and resolves the caller behind it
	VerifyToken(ctx context.Context, rawToken string) (*types.Identity, error)
}

// SessionResolverInterface resolves identity provider session tokens.
type SessionResolverInterface interface {
	ResolveSession(ctx context.Context, sessionToken string) (*types.Identity, error)
}
