// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"github.com/stripe/stripe-go/v79"

	"github.com/nexus-app/workspace-service/internal/types"
)

const planMetadataKey = "plan_id"

// PlanCatalog maps internal plan ids to Stripe price ids and back.
type PlanCatalog struct {
	priceByPlan map[string]string
	planByPrice map[string]string
	defaultPlan string
}

// PriceID returns the Stripe price configured for planID.
func (c *PlanCatalog) PriceID(planID string) (string, bool) {
	price, ok := c.priceByPlan[planID]
	return price, ok && price != ""
}

// ResolvePlan picks the plan of a subscription from price metadata, then
// product metadata, then the configured price ids. The default plan is the fallback.
func (c *PlanCatalog) ResolvePlan(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil {
		return c.defaultPlan
	}

	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil {
			continue
		}

		if plan := item.Price.Metadata[planMetadataKey]; plan != "" {
			return plan
		}

		if item.Price.Product != nil {
			if plan := item.Price.Product.Metadata[planMetadataKey]; plan != "" {
				return plan
			}
		}

		if plan, ok := c.planByPrice[item.Price.ID]; ok {
			return plan
		}
	}

	return c.defaultPlan
}

func NewPlanCatalog(priceByPlan map[string]string, defaultPlan string) *PlanCatalog {
	c := new(PlanCatalog)

	c.priceByPlan = make(map[string]string, len(priceByPlan))
	c.planByPrice = make(map[string]string, len(priceByPlan))

	for plan, price := range priceByPlan {
		c.priceByPlan[plan] = price
		c.planByPrice[price] = plan
	}

	c.defaultPlan = defaultPlan

	return c
}

// MapStatus folds the Stripe subscription lifecycle into the four stored statuses.
func MapStatus(status stripe.SubscriptionStatus) types.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return types.SubscriptionActive
	case stripe.SubscriptionStatusTrialing:
		return types.SubscriptionTrialing
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return types.SubscriptionCanceled
	default:
		// past_due, unpaid, incomplete, paused and anything newer
		return types.SubscriptionPastDue
	}
}
