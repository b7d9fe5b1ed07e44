// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"time"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

const (
	ProviderJWT    = "jwt"
	ProviderKratos = "kratos"
	ProviderNoop   = "noop"
)

type Config struct {
	Provider string

	Issuer          string
	JWKSURL         string
	Audience        string
	AllowedSubjects []string
	RequiredScope   string

	Timeout time.Duration
}

// NewAuthenticator builds the bearer verifier selected by cfg.Provider.
// sessions is only used by the kratos provider and may be nil otherwise.
func NewAuthenticator(
	ctx context.Context,
	cfg Config,
	sessions SessionResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	switch cfg.Provider {
	case ProviderNoop:
		logger.Warn("authentication is disabled, bearer tokens are trusted as user ids")
		return NewNoopVerifier(), nil
	case ProviderKratos:
		if sessions == nil {
			return nil, fmt.Errorf("kratos session resolver is required for kratos authentication")
		}
		logger.Info("Kratos session authentication is enabled")
		return NewKratosVerifier(sessions, tracer, monitor, logger), nil
	case ProviderJWT, "":
		return newJWTAuthenticator(ctx, cfg, tracer, monitor, logger)
	default:
		return nil, fmt.Errorf("unknown authentication provider %q", cfg.Provider)
	}
}

func newJWTAuthenticator(
	ctx context.Context,
	cfg Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	if cfg.JWKSURL != "" {
		logger.Infof("Using manual JWKS URL: %s", cfg.JWKSURL)
		verifier := NewVerifierWithJWKS(ctx, cfg.Issuer, cfg.JWKSURL, cfg.Audience, cfg.Timeout)

		return NewJWTVerifierDirect(verifier, cfg.AllowedSubjects, cfg.RequiredScope, tracer, monitor, logger), nil
	}

	logger.Infof("Using OIDC discovery for issuer: %s", cfg.Issuer)
	provider, err := NewProvider(ctx, cfg.Issuer, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return NewJWTVerifier(provider, cfg.Audience, cfg.AllowedSubjects, cfg.RequiredScope, tracer, monitor, logger), nil
}
