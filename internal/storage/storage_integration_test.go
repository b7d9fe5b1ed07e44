//go:build integration

// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/migrations"
)

// setupPostgres starts a PostgreSQL container and applies the embedded migrations.
func setupPostgres(t *testing.T, ctx context.Context) (string, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	config, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)

	conn := stdlib.OpenDB(*config)
	defer conn.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations.EmbedMigrations, goose.WithLogger(goose.NopLogger()))
	require.NoError(t, err)

	_, err = provider.Up(ctx)
	require.NoError(t, err)

	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func newTestStorage(t *testing.T, ctx context.Context) (*Storage, func()) {
	dsn, cleanup := setupPostgres(t, ctx)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	client, err := db.NewDBClient(
		db.Config{
			DSN:              dsn,
			MaxConns:         5,
			MinConns:         1,
			MaxConnLifetime:  time.Hour,
			MaxConnIdleTime:  time.Minute,
			StatementTimeout: 5 * time.Second,
		},
		tracer, monitor, logger,
	)
	require.NoError(t, err)

	return NewStorage(client, tracer, monitor, logger), func() {
		client.Close()
		cleanup()
	}
}

func TestStorageIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	s, cleanup := newTestStorage(t, ctx)
	defer cleanup()

	t.Run("workspace creation registers the owner", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Acme", OwnerID: "owner-1"})
		require.NoError(t, err)

		access, err := s.GetWorkspaceAccess(ctx, w.ID, "owner-1")
		require.NoError(t, err)
		require.Equal(t, types.RoleOwner, access.Role)

		list, err := s.ListWorkspacesByUserID(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, types.RoleOwner, list[0].Role)
	})

	t.Run("non member resolves to empty role and missing workspace to not found", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Globex", OwnerID: "owner-2"})
		require.NoError(t, err)

		access, err := s.GetWorkspaceAccess(ctx, w.ID, "stranger")
		require.NoError(t, err)
		require.False(t, access.IsMember())

		_, err = s.GetWorkspaceAccess(ctx, uuid.NewString(), "owner-2")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetWorkspaceAccess(ctx, "not-a-uuid", "owner-2")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("member role changes and removal", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Initech", OwnerID: "owner-3"})
		require.NoError(t, err)

		require.NoError(t, s.AddMember(ctx, w.ID, "user-a", types.RoleMember))
		require.NoError(t, s.AddMember(ctx, w.ID, "user-a", types.RoleAdmin))

		m, err := s.GetMember(ctx, w.ID, "user-a")
		require.NoError(t, err)
		require.Equal(t, types.RoleMember, m.Role, "second add must not overwrite the membership")

		require.NoError(t, s.UpdateMemberRole(ctx, w.ID, "user-a", types.RoleAdmin))

		members, err := s.ListMembers(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)

		require.NoError(t, s.RemoveMember(ctx, w.ID, "user-a"))
		require.ErrorIs(t, s.RemoveMember(ctx, w.ID, "user-a"), ErrNotFound)
		require.ErrorIs(t, s.UpdateMemberRole(ctx, w.ID, "ghost", types.RoleAdmin), ErrNotFound)
	})

	t.Run("invitations are upserted per email and consumed once", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Hooli", OwnerID: "owner-4"})
		require.NoError(t, err)

		first, err := s.UpsertInvitation(ctx, &types.Invitation{
			WorkspaceID: w.ID,
			Email:       "new@example.com",
			Role:        types.RoleMember,
			Token:       uuid.NewString(),
			InvitedBy:   "owner-4",
			ExpiresAt:   time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		second, err := s.UpsertInvitation(ctx, &types.Invitation{
			WorkspaceID: w.ID,
			Email:       "new@example.com",
			Role:        types.RoleAdmin,
			Token:       uuid.NewString(),
			InvitedBy:   "owner-4",
			ExpiresAt:   time.Now().Add(2 * time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.NotEqual(t, first.Token, second.Token)

		invitations, err := s.ListInvitations(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, invitations, 1)

		_, err = s.GetInvitationByToken(ctx, first.Token)
		require.ErrorIs(t, err, ErrNotFound)

		inv, err := s.GetInvitationByToken(ctx, second.Token)
		require.NoError(t, err)

		m, err := s.AcceptInvitation(ctx, inv, "user-new")
		require.NoError(t, err)
		require.Equal(t, types.RoleAdmin, m.Role)

		_, err = s.AcceptInvitation(ctx, inv, "user-new")
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, s.DeleteInvitation(ctx, w.ID, inv.ID), ErrNotFound)
	})

	t.Run("subscription upsert is idempotent and unique per workspace", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Umbrella", OwnerID: "owner-5"})
		require.NoError(t, err)

		periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
		sub := &types.Subscription{
			WorkspaceID:          w.ID,
			StripeCustomerID:     "cus_1",
			StripeSubscriptionID: "sub_1",
			PlanID:               "pro",
			Status:               types.SubscriptionActive,
			CurrentPeriodEnd:     &periodEnd,
		}

		first, err := s.UpsertSubscription(ctx, sub)
		require.NoError(t, err)

		second, err := s.UpsertSubscription(ctx, sub)
		require.NoError(t, err)
		require.Equal(t, first.StripeSubscriptionID, second.StripeSubscriptionID)
		require.Equal(t, first.PlanID, second.PlanID)
		require.Equal(t, first.Status, second.Status)

		require.NoError(t, s.SetSubscriptionStatus(ctx, "sub_1", types.SubscriptionPastDue, true))
		require.NoError(t, s.SetSubscriptionStatus(ctx, "sub_1", types.SubscriptionCanceled, false))
		require.ErrorIs(t, s.SetSubscriptionStatus(ctx, "sub_1", types.SubscriptionActive, true), ErrNotFound)

		stored, err := s.GetSubscription(ctx, w.ID)
		require.NoError(t, err)
		require.Equal(t, types.SubscriptionCanceled, stored.Status)
		require.Equal(t, "cus_1", stored.StripeCustomerID)

		require.ErrorIs(t, s.UpdateSubscriptionByStripeID(ctx, &types.Subscription{StripeSubscriptionID: "sub_missing", PlanID: "pro", Status: types.SubscriptionActive}), ErrNotFound)
	})

	t.Run("deleting a workspace cascades", func(t *testing.T) {
		w, err := s.CreateWorkspace(ctx, &types.Workspace{Name: "Soylent", OwnerID: "owner-6"})
		require.NoError(t, err)

		_, err = s.UpsertSubscription(ctx, &types.Subscription{
			WorkspaceID:          w.ID,
			StripeSubscriptionID: "sub_cascade",
			PlanID:               "pro",
			Status:               types.SubscriptionActive,
		})
		require.NoError(t, err)

		require.NoError(t, s.DeleteWorkspace(ctx, w.ID))

		_, err = s.GetSubscription(ctx, w.ID)
		require.ErrorIs(t, err, ErrNotFound)

		list, err := s.ListWorkspacesByUserID(ctx, "owner-6")
		require.NoError(t, err)
		require.Empty(t, list)
	})
}
