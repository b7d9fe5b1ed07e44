//go:build integration

// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nexus-app/workspace-service/internal/authorization"
	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/kratos"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/migrations"
	"github.com/nexus-app/workspace-service/pkg/access"
	"github.com/nexus-app/workspace-service/pkg/authentication"
	"github.com/nexus-app/workspace-service/pkg/billing"
	"github.com/nexus-app/workspace-service/pkg/webhooks"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

const (
	integrationWebhookSecret = "whsec_integration"
	integrationHookKey       = "hook-integration"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:18-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

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

	return dsn
}

// fakeStripeAPI serves the single subscription used by the checkout flow.
func fakeStripeAPI(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			_, _ = w.Write([]byte(`{"id":"cs_int","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_int"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/subscriptions/sub_int":
			_, _ = w.Write([]byte(`{
				"id": "sub_int",
				"object": "subscription",
				"customer": "cus_int",
				"status": "active",
				"current_period_end": 1792108800,
				"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "price": {"id": "price_pro", "object": "price"}}]}
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"not found"}}`))
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newIntegrationRouter(t *testing.T, ctx context.Context) http.Handler {
	dsn := startPostgres(t, ctx)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	dbClient, err := db.NewDBClient(
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
	t.Cleanup(dbClient.Close)

	s := storage.NewStorage(dbClient, tracer, monitor, logger)
	authorizer := authorization.NewAuthorizer(openfga.NewNoopClient(tracer, monitor, logger), tracer, monitor, logger)
	kratosClient := kratos.NewClient("", "", time.Second, tracer, monitor, logger)

	guard := access.NewGuard(s, tracer, monitor, logger)
	plans := billing.NewPlanCatalog(map[string]string{"pro": "price_pro", "team": "price_team"}, "pro")
	stripeClient := billing.NewClient(
		billing.ClientConfig{
			SecretKey:  "sk_test_integration",
			SuccessURL: "https://app.test/success",
			CancelURL:  "https://app.test/cancel",
			Timeout:    5 * time.Second,
			APIURL:     fakeStripeAPI(t).URL,
		},
		tracer, monitor, logger,
	)

	return NewRouter(
		RouterConfig{
			AllowedOrigins: []string{"*"},
			DB:             dbClient,
			Authenticator:  authentication.NewMiddleware(authentication.NewNoopVerifier(), tracer, monitor, logger),
			Workspaces: workspace.NewAPI(
				workspace.NewService(s, authorizer, kratosClient, time.Hour, tracer, monitor, logger),
				access.NewMiddleware(guard, tracer, monitor, logger),
				tracer, monitor, logger,
			),
			Billing: billing.NewAPI(
				billing.NewVerifier(integrationWebhookSecret),
				billing.NewReconciler(s, stripeClient, plans, tracer, monitor, logger),
				stripeClient,
				guard,
				plans,
				tracer, monitor, logger,
			),
			Webhooks: webhooks.NewAPI(webhooks.NewService(s, authorizer, tracer, monitor, logger), integrationHookKey, tracer, monitor, logger),
		},
		tracer, monitor, logger,
	)
}

type caller struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c caller) call(method, path string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if out != nil && rec.Code < http.StatusBadRequest && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out))
	}

	return rec.Code
}

func deliverStripeEvent(t *testing.T, router http.Handler, id, kind string, object map[string]any) int {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        kind,
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    integrationWebhookSecret,
		Timestamp: time.Now(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec.Code
}

func TestWorkspaceLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	router := newIntegrationRouter(t, ctx)

	alice := caller{t: t, router: router, token: "alice:alice@example.com"}
	bob := caller{t: t, router: router, token: "bob:bob@example.com"}
	mallory := caller{t: t, router: router, token: "mallory:mallory@example.com"}

	var ws types.Workspace
	require.Equal(t, http.StatusCreated, alice.call(http.MethodPost, "/api/workspaces", workspace.CreateWorkspaceRequest{Name: "Acme"}, &ws))
	require.NotEmpty(t, ws.ID)
	wsPath := "/api/workspaces/" + ws.ID

	t.Run("outsiders are rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, wsPath, nil, nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, wsPath+"/subscription", nil, nil))
		assert.Equal(t, http.StatusUnauthorized, caller{t: t, router: router}.call(http.MethodGet, "/api/workspaces", nil, nil))

		var owned, foreign workspace.ListWorkspacesResponse
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/api/workspaces", nil, &owned))
		require.Len(t, owned.Workspaces, 1)
		assert.Equal(t, types.RoleOwner, owned.Workspaces[0].Role)

		require.Equal(t, http.StatusOK, bob.call(http.MethodGet, "/api/workspaces", nil, &foreign))
		assert.Empty(t, foreign.Workspaces)
	})

	var inv types.Invitation
	require.Equal(t, http.StatusCreated, alice.call(http.MethodPost, wsPath+"/invite", workspace.InviteMemberRequest{Email: "Bob@Example.com", Role: "admin"}, &inv))
	require.NotEmpty(t, inv.Token)

	t.Run("invitation is bound to the invited email", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, mallory.call(http.MethodPost, "/api/invitations/accept", workspace.AcceptInvitationRequest{Token: inv.Token}, nil))
	})

	t.Run("accepting grants the invited role once", func(t *testing.T) {
		var m types.Membership
		require.Equal(t, http.StatusOK, bob.call(http.MethodPost, "/api/invitations/accept", workspace.AcceptInvitationRequest{Token: inv.Token}, &m))
		assert.Equal(t, types.RoleAdmin, m.Role)
		assert.Equal(t, ws.ID, m.WorkspaceID)

		assert.Equal(t, http.StatusNotFound, bob.call(http.MethodPost, "/api/invitations/accept", workspace.AcceptInvitationRequest{Token: inv.Token}, nil))

		var members workspace.ListMembersResponse
		require.Equal(t, http.StatusOK, bob.call(http.MethodGet, wsPath+"/members", nil, &members))
		assert.Len(t, members.Members, 2)
	})

	t.Run("admins cannot act as owner", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodDelete, wsPath, nil, nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodPatch, wsPath, workspace.UpdateWorkspaceRequest{Name: "Mine"}, nil))
		assert.Equal(t, http.StatusForbidden, bob.call(http.MethodDelete, wsPath+"/members/alice", nil, nil))
		assert.Equal(t, http.StatusForbidden, alice.call(http.MethodPatch, wsPath+"/members/alice", workspace.UpdateMemberRequest{Role: "member"}, nil))

		var members workspace.ListMembersResponse
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, wsPath+"/members", nil, &members))
		assert.Len(t, members.Members, 2)
	})

	t.Run("checkout and webhooks drive the subscription", func(t *testing.T) {
		var checkout billing.CreateCheckoutSessionResponse
		require.Equal(t, http.StatusOK, bob.call(http.MethodPost, "/api/billing/create-checkout-session", billing.CreateCheckoutSessionRequest{WorkspaceID: ws.ID, PlanID: "pro"}, &checkout))
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_int", checkout.URL)

		assert.Equal(t, http.StatusForbidden, mallory.call(http.MethodPost, "/api/billing/create-checkout-session", billing.CreateCheckoutSessionRequest{WorkspaceID: ws.ID, PlanID: "pro"}, nil))

		session := map[string]any{
			"id":                  "cs_int",
			"object":              "checkout.session",
			"client_reference_id": ws.ID,
			"customer":            "cus_int",
			"subscription":        "sub_int",
		}
		require.Equal(t, http.StatusOK, deliverStripeEvent(t, router, "evt_1", "checkout.session.completed", session))
		require.Equal(t, http.StatusOK, deliverStripeEvent(t, router, "evt_1", "checkout.session.completed", session))

		var sub types.Subscription
		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, wsPath+"/subscription", nil, &sub))
		assert.Equal(t, "pro", sub.PlanID)
		assert.Equal(t, types.SubscriptionActive, sub.Status)
		assert.Equal(t, "cus_int", sub.StripeCustomerID)

		require.Equal(t, http.StatusOK, deliverStripeEvent(t, router, "evt_2", "customer.subscription.deleted", map[string]any{
			"id": "sub_int", "object": "subscription", "status": "canceled",
		}))
		require.Equal(t, http.StatusOK, deliverStripeEvent(t, router, "evt_3", "invoice.payment_succeeded", map[string]any{
			"id": "in_1", "object": "invoice", "subscription": "sub_int",
		}))

		require.Equal(t, http.StatusOK, alice.call(http.MethodGet, wsPath+"/subscription", nil, &sub))
		assert.Equal(t, types.SubscriptionCanceled, sub.Status)
	})

	t.Run("owner deletes the workspace", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, alice.call(http.MethodDelete, wsPath, nil, nil))
		assert.Equal(t, http.StatusForbidden, alice.call(http.MethodGet, wsPath, nil, nil))

		var list workspace.ListWorkspacesResponse
		require.Equal(t, http.StatusOK, bob.call(http.MethodGet, "/api/workspaces", nil, &list))
		assert.Empty(t, list.Workspaces)
	})
}
