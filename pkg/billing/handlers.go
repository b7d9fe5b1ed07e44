// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/nexus-app/workspace-service/internal/http/types"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

// MaxWebhookBody caps the webhook payload read from Stripe.
const MaxWebhookBody = 64 << 10

type CreateCheckoutSessionRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	PlanID      string `json:"planId" validate:"required"`
}

type CreateCheckoutSessionResponse struct {
	URL string `json:"url"`
}

type API struct {
	verifier   VerifierInterface
	reconciler ReconcilerInterface
	stripe     StripeClientInterface
	guard      GuardInterface
	plans      *PlanCatalog

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterWebhook mounts the Stripe webhook. It authenticates with the
// signature header and must not sit behind bearer authentication.
func (a *API) RegisterWebhook(r chi.Router) {
	r.Post("/webhooks/stripe", a.stripeWebhook)
}

// RegisterEndpoints mounts the authenticated billing routes.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Post("/billing/create-checkout-session", a.createCheckoutSession)
}

func (a *API) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "billing.API.stripeWebhook")
	defer span.End()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBody))
	if err != nil {
		a.webhookError(w, fmt.Errorf("failed to read body: %w", err))
		return
	}

	event, err := a.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		a.logger.Security().WebhookSignatureFailure("stripe", logging.WithRequest(r.Method, r.URL.Path, r.RemoteAddr))
		if merr := a.monitor.IncWebhookEvent(map[string]string{"kind": EventUnknown.String(), "outcome": "rejected"}); merr != nil {
			a.logger.Debugf("failed to record webhook metric: %v", merr)
		}
		a.webhookError(w, err)
		return
	}

	if err := a.reconciler.Reconcile(ctx, event); err != nil {
		a.logger.Errorf("stripe webhook %s failed: %v", event.ID, err)
		httptypes.WriteError(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (a *API) webhookError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = fmt.Fprintf(w, "Webhook Error: %s", err.Error())
}

func (a *API) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "billing.API.createCheckoutSession")
	defer span.End()

	identity, ok := authentication.IdentityFromContext(ctx)
	if !ok {
		httptypes.WriteError(w, types.ErrUnauthenticated)
		return
	}

	var req CreateCheckoutSessionRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteError(w, err)
		return
	}

	if _, err := a.guard.Authorize(ctx, identity, req.WorkspaceID, types.RoleAdmin); err != nil {
		if errors.Is(err, types.ErrForbidden) {
			a.logger.Security().AuthzFailure(identity.ID, "workspace:"+req.WorkspaceID, logging.WithRequest(r.Method, r.URL.Path, r.RemoteAddr))
		} else {
			a.logger.Errorf("failed to authorize checkout: %v", err)
		}
		httptypes.WriteError(w, err)
		return
	}

	priceID, ok := a.plans.PriceID(req.PlanID)
	if !ok {
		httptypes.WriteError(w, fmt.Errorf("%w: unknown plan %q", types.ErrValidation, req.PlanID))
		return
	}

	url, err := a.stripe.CreateCheckoutSession(ctx, req.WorkspaceID, req.PlanID, priceID)
	if err != nil {
		a.logger.Errorf("failed to create checkout session for workspace %s: %v", req.WorkspaceID, err)
		httptypes.WriteError(w, err)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, CreateCheckoutSessionResponse{URL: url})
}

func NewAPI(
	verifier VerifierInterface,
	reconciler ReconcilerInterface,
	stripeClient StripeClientInterface,
	guard GuardInterface,
	plans *PlanCatalog,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.verifier = verifier
	a.reconciler = reconciler
	a.stripe = stripeClient
	a.guard = guard
	a.plans = plans
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
