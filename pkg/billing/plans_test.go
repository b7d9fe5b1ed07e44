// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v79"

	"github.com/nexus-app/workspace-service/internal/types"
)

func TestMapStatus(t *testing.T) {
	tests := map[stripe.SubscriptionStatus]types.SubscriptionStatus{
		stripe.SubscriptionStatusActive:            types.SubscriptionActive,
		stripe.SubscriptionStatusTrialing:          types.SubscriptionTrialing,
		stripe.SubscriptionStatusCanceled:          types.SubscriptionCanceled,
		stripe.SubscriptionStatusIncompleteExpired: types.SubscriptionCanceled,
		stripe.SubscriptionStatusPastDue:           types.SubscriptionPastDue,
		stripe.SubscriptionStatusUnpaid:            types.SubscriptionPastDue,
		stripe.SubscriptionStatusIncomplete:        types.SubscriptionPastDue,
		stripe.SubscriptionStatusPaused:            types.SubscriptionPastDue,
		stripe.SubscriptionStatus("something_new"): types.SubscriptionPastDue,
	}

	for in, expected := range tests {
		assert.Equal(t, expected, MapStatus(in), "status %s", in)
	}
}

func TestResolvePlan(t *testing.T) {
	catalog := testCatalog()

	item := func(price *stripe.Price) *stripe.Subscription {
		return &stripe.Subscription{Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{{Price: price}}}}
	}

	tests := []struct {
		name     string
		sub      *stripe.Subscription
		expected string
	}{
		{
			name:     "price metadata wins",
			sub:      item(&stripe.Price{ID: "price_pro", Metadata: map[string]string{"plan_id": "enterprise"}}),
			expected: "enterprise",
		},
		{
			name: "product metadata",
			sub: item(&stripe.Price{
				ID:      "price_other",
				Product: &stripe.Product{Metadata: map[string]string{"plan_id": "team"}},
			}),
			expected: "team",
		},
		{
			name:     "configured price",
			sub:      item(&stripe.Price{ID: "price_team"}),
			expected: "team",
		},
		{
			name:     "unknown price falls back to default",
			sub:      item(&stripe.Price{ID: "price_legacy"}),
			expected: "pro",
		},
		{
			name:     "no items",
			sub:      &stripe.Subscription{},
			expected: "pro",
		},
		{
			name:     "nil subscription",
			expected: "pro",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, catalog.ResolvePlan(test.sub))
		})
	}
}

func TestPriceID(t *testing.T) {
	catalog := NewPlanCatalog(map[string]string{"pro": "price_pro", "free": ""}, "pro")

	price, ok := catalog.PriceID("pro")
	assert.True(t, ok)
	assert.Equal(t, "price_pro", price)

	_, ok = catalog.PriceID("free")
	assert.False(t, ok)

	_, ok = catalog.PriceID("missing")
	assert.False(t, ok)
}

func TestParseEventKind(t *testing.T) {
	assert.Equal(t, EventCheckoutCompleted, ParseEventKind("checkout.session.completed"))
	assert.Equal(t, EventInvoiceFailed, ParseEventKind("invoice.payment_failed"))
	assert.Equal(t, EventUnknown, ParseEventKind("customer.created"))
	assert.Equal(t, "subscription_deleted", EventSubscriptionDeleted.String())
	assert.Equal(t, "unknown", EventUnknown.String())
}
