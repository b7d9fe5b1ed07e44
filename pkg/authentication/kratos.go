// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

// KratosVerifier accepts Kratos session tokens as bearer credentials.
type KratosVerifier struct {
	sessions SessionResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *KratosVerifier) VerifyToken(ctx context.Context, rawToken string) (*types.Identity, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.KratosVerifier.VerifyToken")
	defer span.End()

	identity, err := v.sessions.ResolveSession(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnauthenticated, err)
	}

	return identity, nil
}

func NewKratosVerifier(sessions SessionResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *KratosVerifier {
	v := new(KratosVerifier)

	v.sessions = sessions
	v.tracer = tracer
	v.monitor = monitor
	v.logger = logger

	return v
}
