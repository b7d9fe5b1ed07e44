// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

// EventKind is the closed set of Stripe events the reconciler acts on.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCheckoutCompleted
	EventSubscriptionCreated
	EventSubscriptionUpdated
	EventSubscriptionDeleted
	EventInvoiceSucceeded
	EventInvoiceFailed
)

var eventKinds = map[string]EventKind{
	"checkout.session.completed":    EventCheckoutCompleted,
	"customer.subscription.created": EventSubscriptionCreated,
	"customer.subscription.updated": EventSubscriptionUpdated,
	"customer.subscription.deleted": EventSubscriptionDeleted,
	"invoice.payment_succeeded":     EventInvoiceSucceeded,
	"invoice.payment_failed":        EventInvoiceFailed,
}

// ParseEventKind maps a Stripe event type to its kind. Unrecognised types are EventUnknown.
func ParseEventKind(eventType string) EventKind {
	return eventKinds[eventType]
}

func (k EventKind) String() string {
	switch k {
	case EventCheckoutCompleted:
		return "checkout_completed"
	case EventSubscriptionCreated:
		return "subscription_created"
	case EventSubscriptionUpdated:
		return "subscription_updated"
	case EventSubscriptionDeleted:
		return "subscription_deleted"
	case EventInvoiceSucceeded:
		return "invoice_succeeded"
	case EventInvoiceFailed:
		return "invoice_failed"
	default:
		return "unknown"
	}
}
