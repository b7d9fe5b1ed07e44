// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"

	"github.com/stripe/stripe-go/v79"

	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
)

// StorageInterface is the subset of internal/storage the reconciler writes through.
type StorageInterface interface {
	UpsertSubscription(ctx context.Context, sub *types.Subscription) (*types.Subscription, error)
	UpdateSubscriptionByStripeID(ctx context.Context, sub *types.Subscription) error
	SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus, keepCanceled bool) error
}

type StripeClientInterface interface {
	CreateCheckoutSession(ctx context.Context, workspaceID, planID, priceID string) (string, error)
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
}

type VerifierInterface interface {
	Verify(payload []byte, signature string) (stripe.Event, error)
}

type ReconcilerInterface interface {
	Reconcile(ctx context.Context, event stripe.Event) error
}

type GuardInterface interface {
	Authorize(ctx context.Context, identity *types.Identity, workspaceID string, minRole types.Role) (*access.Principal, error)
}
