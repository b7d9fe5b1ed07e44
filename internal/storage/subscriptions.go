// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/types"
)

const subscriptionReturning = "RETURNING workspace_id, stripe_customer_id, stripe_subscription_id, plan_id, status, current_period_end, created_at, updated_at"

func scanSubscription(row scanner) (*types.Subscription, error) {
	var (
		sub       types.Subscription
		periodEnd sql.NullTime
	)

	err := row.Scan(
		&sub.WorkspaceID,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.PlanID,
		&sub.Status,
		&periodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if periodEnd.Valid {
		t := periodEnd.Time
		sub.CurrentPeriodEnd = &t
	}

	return &sub, nil
}

func nullablePeriodEnd(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func (s *Storage) GetSubscription(ctx context.Context, workspaceID string) (*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetSubscription")
	defer span.End()

	if !validID(workspaceID) {
		return nil, ErrNotFound
	}

	row := s.db.Statement(ctx).
		Select("workspace_id", "stripe_customer_id", "stripe_subscription_id", "plan_id", "status", "current_period_end", "created_at", "updated_at").
		From("subscriptions").
		Where(sq.Eq{"workspace_id": workspaceID}).
		QueryRowContext(ctx)

	sub, err := scanSubscription(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// UpsertSubscription writes the single subscription row of a workspace.
// Replaying the same input converges to the same row.
func (s *Storage) UpsertSubscription(ctx context.Context, sub *types.Subscription) (*types.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpsertSubscription")
	defer span.End()

	if !validID(sub.WorkspaceID) {
		return nil, ErrNotFound
	}

	row := s.db.Statement(ctx).
		Insert("subscriptions").
		Columns("workspace_id", "stripe_customer_id", "stripe_subscription_id", "plan_id", "status", "current_period_end").
		Values(sub.WorkspaceID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.PlanID, string(sub.Status), nullablePeriodEnd(sub.CurrentPeriodEnd)).
		Suffix(
			"ON CONFLICT (workspace_id) DO UPDATE SET " +
				"stripe_customer_id = EXCLUDED.stripe_customer_id, " +
				"stripe_subscription_id = EXCLUDED.stripe_subscription_id, " +
				"plan_id = EXCLUDED.plan_id, " +
				"status = EXCLUDED.status, " +
				"current_period_end = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end), " +
				"updated_at = now() " +
				subscriptionReturning,
		).
		QueryRowContext(ctx)

	stored, err := scanSubscription(row)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to upsert subscription: %w", translate(err))
	}

	return stored, nil
}

// UpdateSubscriptionByStripeID refreshes plan, status and period of the row
// tracking sub.StripeSubscriptionID. An empty customer id keeps the stored one.
func (s *Storage) UpdateSubscriptionByStripeID(ctx context.Context, sub *types.Subscription) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateSubscriptionByStripeID")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("subscriptions").
		Set("plan_id", sub.PlanID).
		Set("status", string(sub.Status)).
		Set("current_period_end", sq.Expr("COALESCE(?, current_period_end)", nullablePeriodEnd(sub.CurrentPeriodEnd))).
		Set("stripe_customer_id", sq.Expr("COALESCE(NULLIF(?, ''), stripe_customer_id)", sub.StripeCustomerID)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"stripe_subscription_id": sub.StripeSubscriptionID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return expectAffected(res)
}

// SetSubscriptionStatus changes the status of the row tracking stripeSubscriptionID.
// With keepCanceled a canceled row is left alone and ErrNotFound is returned.
func (s *Storage) SetSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus, keepCanceled bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetSubscriptionStatus")
	defer span.End()

	query := s.db.Statement(ctx).
		Update("subscriptions").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"stripe_subscription_id": stripeSubscriptionID})

	if keepCanceled {
		query = query.Where(sq.NotEq{"status": string(types.SubscriptionCanceled)})
	}

	res, err := query.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to set subscription status: %w", err)
	}

	return expectAffected(res)
}
