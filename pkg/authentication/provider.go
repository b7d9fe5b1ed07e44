// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/nexus-app/workspace-service/internal/tracing"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: tracing.NewClientTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

// NewProvider creates an OIDC provider using the issuer's well-known configuration
func NewProvider(ctx context.Context, issuer string, timeout time.Duration) (*oidc.Provider, error) {
	ctx = oidc.ClientContext(ctx, newHTTPClient(timeout))

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %v", err)
	}

	return provider, nil
}

// NewVerifierWithJWKS skips discovery and fetches signing keys from jwksURL.
func NewVerifierWithJWKS(ctx context.Context, issuer, jwksURL, audience string, timeout time.Duration) *oidc.IDTokenVerifier {
	ctx = oidc.ClientContext(ctx, newHTTPClient(timeout))

	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)

	return oidc.NewVerifier(issuer, keySet, oidcConfig(audience))
}
