// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
)

const (
	outcomeProcessed = "processed"
	outcomeIgnored   = "ignored"
	outcomeFailed    = "failed"
)

// errIgnored marks an event that is acknowledged without any write.
var errIgnored = errors.New("event ignored")

// Reconciler applies verified Stripe events to the subscription rows.
// Every write is a single statement and replaying an event converges to the same row.
type Reconciler struct {
	storage StorageInterface
	stripe  StripeClientInterface
	plans   *PlanCatalog

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Reconcile dispatches event by kind. Events that do not concern a tracked
// workspace are logged and acknowledged. Malformed payloads of a known kind,
// store failures and provider failures are returned so the provider retries.
func (r *Reconciler) Reconcile(ctx context.Context, event stripe.Event) error {
	ctx, span := r.tracer.Start(ctx, "billing.Reconciler.Reconcile")
	defer span.End()

	kind := ParseEventKind(string(event.Type))

	var raw json.RawMessage
	if event.Data != nil {
		raw = event.Data.Raw
	}

	var err error
	switch kind {
	case EventCheckoutCompleted:
		err = r.checkoutCompleted(ctx, raw)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		err = r.subscriptionChanged(ctx, raw)
	case EventSubscriptionDeleted:
		err = r.subscriptionDeleted(ctx, raw)
	case EventInvoiceSucceeded:
		err = r.invoicePaid(ctx, raw, types.SubscriptionActive)
	case EventInvoiceFailed:
		err = r.invoicePaid(ctx, raw, types.SubscriptionPastDue)
	default:
		r.logger.Infof("ignoring stripe event %s of type %s", event.ID, event.Type)
		err = errIgnored
	}

	outcome := outcomeProcessed
	switch {
	case errors.Is(err, errIgnored):
		outcome = outcomeIgnored
		err = nil
	case err != nil:
		outcome = outcomeFailed
	}

	if merr := r.monitor.IncWebhookEvent(map[string]string{"kind": kind.String(), "outcome": outcome}); merr != nil {
		r.logger.Debugf("failed to record webhook metric: %v", merr)
	}

	if err != nil {
		return fmt.Errorf("failed to reconcile %s event %s: %w", kind, event.ID, err)
	}

	return nil
}

func (r *Reconciler) checkoutCompleted(ctx context.Context, raw json.RawMessage) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return fmt.Errorf("malformed checkout session payload: %w", err)
	}

	if session.ClientReferenceID == "" {
		r.logger.Errorf("checkout session %s has no client_reference_id", session.ID)
		return errIgnored
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		r.logger.Warnf("checkout session %s has no subscription", session.ID)
		return errIgnored
	}

	sub, err := r.stripe.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription %s: %w", session.Subscription.ID, err)
	}

	customerID := customerOf(sub)
	if session.Customer != nil && session.Customer.ID != "" {
		customerID = session.Customer.ID
	}

	_, err = r.storage.UpsertSubscription(ctx, &types.Subscription{
		WorkspaceID:          session.ClientReferenceID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		PlanID:               r.plans.ResolvePlan(sub),
		Status:               MapStatus(sub.Status),
		CurrentPeriodEnd:     periodEnd(sub.CurrentPeriodEnd),
	})

	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Warnf("checkout session %s references unknown workspace %s", session.ID, session.ClientReferenceID)
		return errIgnored
	}

	return err
}

func (r *Reconciler) subscriptionChanged(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("malformed subscription payload: %w", err)
	}

	err := r.storage.UpdateSubscriptionByStripeID(ctx, &types.Subscription{
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     customerOf(&sub),
		PlanID:               r.plans.ResolvePlan(&sub),
		Status:               MapStatus(sub.Status),
		CurrentPeriodEnd:     periodEnd(sub.CurrentPeriodEnd),
	})

	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Warnf("no workspace tracks subscription %s", sub.ID)
		return errIgnored
	}

	return err
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("malformed subscription payload: %w", err)
	}

	err := r.storage.SetSubscriptionStatus(ctx, sub.ID, types.SubscriptionCanceled, false)
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Warnf("no workspace tracks subscription %s", sub.ID)
		return errIgnored
	}

	return err
}

// invoicePaid never moves a canceled subscription.
func (r *Reconciler) invoicePaid(ctx context.Context, raw json.RawMessage, status types.SubscriptionStatus) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return fmt.Errorf("malformed invoice payload: %w", err)
	}

	subscriptionID, err := invoiceSubscription(&invoice, raw)
	if err != nil {
		return err
	}

	if subscriptionID == "" {
		r.logger.Debugf("invoice %s is not tied to a subscription", invoice.ID)
		return errIgnored
	}

	err = r.storage.SetSubscriptionStatus(ctx, subscriptionID, status, true)
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Infof("subscription %s is unknown or canceled, invoice %s skipped", subscriptionID, invoice.ID)
		return errIgnored
	}

	return err
}

// invoiceParent is the newer invoice shape where the subscription moved under parent.
type invoiceParent struct {
	Parent *struct {
		SubscriptionDetails *struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func invoiceSubscription(invoice *stripe.Invoice, raw json.RawMessage) (string, error) {
	if invoice.Subscription != nil && invoice.Subscription.ID != "" {
		return invoice.Subscription.ID, nil
	}

	var p invoiceParent
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("malformed invoice parent: %w", err)
	}

	if p.Parent == nil || p.Parent.SubscriptionDetails == nil {
		return "", nil
	}

	return p.Parent.SubscriptionDetails.Subscription, nil
}

func customerOf(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}

func periodEnd(unix int64) *time.Time {
	if unix <= 0 {
		return nil
	}

	t := time.Unix(unix, 0).UTC()
	return &t
}

func NewReconciler(
	store StorageInterface,
	stripeClient StripeClientInterface,
	plans *PlanCatalog,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Reconciler {
	r := new(Reconciler)

	r.storage = store
	r.stripe = stripeClient
	r.plans = plans
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
