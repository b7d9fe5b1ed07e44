// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	ory "github.com/ory/client-go"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

// Client talks to the Kratos public API for sessions and to the admin API for identities.
type Client struct {
	public *ory.APIClient
	admin  *ory.APIClient

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func newAPIClient(url string, timeout time.Duration) *ory.APIClient {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: url}}
	conf.HTTPClient = &http.Client{
		Transport: tracing.NewClientTransport(http.DefaultTransport),
		Timeout:   timeout,
	}

	return ory.NewAPIClient(conf)
}

func NewClient(publicURL, adminURL string, timeout time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	c := new(Client)

	if publicURL != "" {
		c.public = newAPIClient(publicURL, timeout)
	}

	if adminURL != "" {
		c.admin = newAPIClient(adminURL, timeout)
	}

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}

// ResolveSession exchanges a session token for the identity owning the session.
func (c *Client) ResolveSession(ctx context.Context, sessionToken string) (*types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.ResolveSession")
	defer span.End()

	if c.public == nil {
		return nil, fmt.Errorf("kratos public URL is not configured")
	}

	session, _, err := c.public.FrontendAPI.ToSession(ctx).XSessionToken(sessionToken).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if !session.GetActive() || !session.HasIdentity() {
		return nil, fmt.Errorf("session is not active")
	}

	identity := session.GetIdentity()

	return &types.Identity{ID: identity.GetId(), Email: emailFromTraits(identity.GetTraits())}, nil
}

// GetIdentityEmails maps identity ids to their email trait. Unknown ids are omitted.
func (c *Client) GetIdentityEmails(ctx context.Context, ids []string) (map[string]string, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.GetIdentityEmails")
	defer span.End()

	emails := make(map[string]string, len(ids))

	if c.admin == nil || len(ids) == 0 {
		return emails, nil
	}

	identities, _, err := c.admin.IdentityAPI.ListIdentities(ctx).Ids(ids).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	for _, identity := range identities {
		if email := emailFromTraits(identity.GetTraits()); email != "" {
			emails[identity.GetId()] = email
		}
	}

	return emails, nil
}

func emailFromTraits(traits interface{}) string {
	t, ok := traits.(map[string]interface{})
	if !ok {
		return ""
	}

	email, _ := t["email"].(string)

	return strings.ToLower(email)
}
