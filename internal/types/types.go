// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// Identity is the authenticated caller, as resolved from a bearer credential.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Workspace struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Membership links a user to a workspace. Role is the effective role: the
// owner is always reported as RoleOwner whatever the stored value is.
type Membership struct {
	WorkspaceID string    `db:"workspace_id" json:"workspaceId"`
	UserID      string    `db:"user_id" json:"userId"`
	Email       string    `json:"email,omitempty"`
	Role        Role      `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// WorkspaceAccess is the outcome of resolving a caller inside a workspace.
// Role is empty when the caller has no membership.
type WorkspaceAccess struct {
	WorkspaceID string
	OwnerID     string
	UserID      string
	Role        Role
}

// IsMember reports whether the caller holds any role in the workspace.
func (a *WorkspaceAccess) IsMember() bool {
	return a != nil && a.Role != ""
}

type Invitation struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspaceId"`
	Email       string    `db:"email" json:"email"`
	Role        Role      `db:"role" json:"role"`
	Token       string    `db:"token" json:"token,omitempty"`
	InvitedBy   string    `db:"invited_by" json:"invitedBy"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Expired reports whether the invitation can no longer be accepted at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionTrialing SubscriptionStatus = "trialing"
)

type Subscription struct {
	WorkspaceID          string             `db:"workspace_id" json:"workspaceId"`
	StripeCustomerID     string             `db:"stripe_customer_id" json:"stripeCustomerId"`
	StripeSubscriptionID string             `db:"stripe_subscription_id" json:"stripeSubscriptionId"`
	PlanID               string             `db:"plan_id" json:"planId"`
	Status               SubscriptionStatus `db:"status" json:"status"`
	CurrentPeriodEnd     *time.Time         `db:"current_period_end" json:"currentPeriodEnd,omitempty"`
	CreatedAt            time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time          `db:"updated_at" json:"updatedAt"`
}

// WorkspaceWithRole is a workspace as seen by one of its members.
type WorkspaceWithRole struct {
	Workspace
	Role Role `json:"role"`
}
