// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

var ErrBillingDisabled = errors.New("billing is not configured")

type ClientConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration

	// APIURL overrides the Stripe API endpoint, e.g. for stripe-mock.
	APIURL string
}

// Client wraps the Stripe API calls made by the service.
type Client struct {
	api        *client.API
	successURL string
	cancelURL  string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateCheckoutSession starts a subscription checkout for workspaceID and returns its URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, workspaceID, planID, priceID string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "billing.Client.CreateCheckoutSession")
	defer span.End()

	if c.api == nil {
		return "", ErrBillingDisabled
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(workspaceID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"workspace_id":  workspaceID,
				planMetadataKey: planID,
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("workspace_id", workspaceID)
	params.AddMetadata(planMetadataKey, planID)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.setAvailability(err)
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	c.setAvailability(nil)

	return session.URL, nil
}

// GetSubscription fetches a subscription with its prices and products expanded.
func (c *Client) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	ctx, span := c.tracer.Start(ctx, "billing.Client.GetSubscription")
	defer span.End()

	if c.api == nil {
		return nil, ErrBillingDisabled
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price.product")

	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		c.setAvailability(err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	c.setAvailability(nil)

	return sub, nil
}

func (c *Client) setAvailability(err error) {
	var stripeErr *stripe.Error

	available := 1.0
	if err != nil && !errors.As(err, &stripeErr) {
		available = 0
	}

	if merr := c.monitor.SetDependencyAvailability(map[string]string{"component": "stripe"}, available); merr != nil {
		c.logger.Debugf("failed to set stripe availability: %v", merr)
	}
}

// NewClient returns a client whose calls fail with ErrBillingDisabled when no secret key is set.
func NewClient(cfg ClientConfig, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	c := new(Client)

	c.successURL = cfg.SuccessURL
	c.cancelURL = cfg.CancelURL
	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	if cfg.SecretKey == "" {
		logger.Warn("stripe secret key is not set, billing API calls are disabled")
		return c
	}

	httpClient := &http.Client{
		Transport: tracing.NewClientTransport(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}

	backends := stripe.NewBackends(httpClient)
	if cfg.APIURL != "" {
		backends.API = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIURL),
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
		})
	}

	c.api = &client.API{}
	c.api.Init(cfg.SecretKey, backends)

	return c
}
