// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/types"
	"github.com/nexus-app/workspace-service/pkg/access"
	"github.com/nexus-app/workspace-service/pkg/authentication"
)

const testWebhookSecret = "whsec_test_secret"

func signedRequest(t *testing.T, secret string, payload []byte) *http.Request {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)

	return req
}

func eventPayload(t *testing.T, id, kind string, object any) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        kind,
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)

	return raw
}

func newWebhookRouter(verifier VerifierInterface, reconciler ReconcilerInterface, logger logging.LoggerInterface, monitor monitoring.MonitorInterface) http.Handler {
	api := NewAPI(verifier, reconciler, &fakeStripe{}, nil, testCatalog(), tracing.NewNoopTracer(), monitor, logger)

	r := chi.NewRouter()
	api.RegisterWebhook(r)

	return r
}

func TestStripeWebhookEndToEnd(t *testing.T) {
	logger := logging.NewNoopLogger()
	monitor := monitoring.NewNoopMonitor("test", logger)

	store := newMemoryStore(testWorkspace)
	client := &fakeStripe{subscriptions: map[string]*stripe.Subscription{
		testSubID: {
			ID:       testSubID,
			Status:   stripe.SubscriptionStatusActive,
			Customer: &stripe.Customer{ID: testCustomer},
			Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_pro"}},
			}},
		},
	}}
	reconciler := NewReconciler(store, client, testCatalog(), tracing.NewNoopTracer(), monitor, logger)
	router := newWebhookRouter(NewVerifier(testWebhookSecret), reconciler, logger, monitor)

	checkout := signedRequest(t, testWebhookSecret, eventPayload(t, "evt_1", "checkout.session.completed", checkoutObject(testWorkspace, testSubID)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, checkout)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())

	updated := subscriptionObject(testSubID, "active", "price_team", 0)
	delete(updated, "customer")

	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, testWebhookSecret, eventPayload(t, "evt_2", "customer.subscription.updated", updated)))
		require.Equal(t, http.StatusOK, w.Code)
	}

	row := store.get(testWorkspace)
	require.NotNil(t, row)
	assert.Equal(t, "team", row.PlanID)
	assert.Equal(t, types.SubscriptionActive, row.Status)
	assert.Equal(t, testCustomer, row.StripeCustomerID)
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	tests := []struct {
		name    string
		request func(t *testing.T) *http.Request
	}{
		{
			name: "wrong secret",
			request: func(t *testing.T) *http.Request {
				return signedRequest(t, "whsec_other", eventPayload(t, "evt_1", "invoice.payment_failed", map[string]any{"id": "in_1"}))
			},
		},
		{
			name: "missing header",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
			},
		},
		{
			name: "tampered payload",
			request: func(t *testing.T) *http.Request {
				req := signedRequest(t, testWebhookSecret, eventPayload(t, "evt_1", "invoice.payment_failed", map[string]any{"id": "in_1"}))
				req.Body = io.NopCloser(strings.NewReader(`{"id":"evt_forged","type":"invoice.payment_succeeded"}`))
				return req
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockReconciler := NewMockReconcilerInterface(ctrl)

			mockLogger.EXPECT().Security().Return(mockSecurity)
			mockSecurity.EXPECT().WebhookSignatureFailure("stripe", gomock.Any())
			mockMonitor.EXPECT().IncWebhookEvent(map[string]string{"kind": "unknown", "outcome": "rejected"}).Return(nil)

			router := newWebhookRouter(NewVerifier(testWebhookSecret), mockReconciler, mockLogger, mockMonitor)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, test.request(t))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.True(t, strings.HasPrefix(w.Body.String(), "Webhook Error: "), w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func TestStripeWebhookEmptySecretFailsClosed(t *testing.T) {
	_, err := NewVerifier("").Verify([]byte(`{}`), "t=1,v1=abc")
	assert.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestStripeWebhookReconcileFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := NewMockVerifierInterface(ctrl)
	mockReconciler := NewMockReconcilerInterface(ctrl)

	event := stripe.Event{ID: "evt_1", Type: "customer.subscription.updated"}

	mockVerifier.EXPECT().Verify([]byte(`{"id":"evt_1"}`), "sig").Return(event, nil)
	mockReconciler.EXPECT().Reconcile(gomock.Any(), event).Return(errors.New("connection refused"))

	logger := logging.NewNoopLogger()
	router := newWebhookRouter(mockVerifier, mockReconciler, logger, monitoring.NewNoopMonitor("test", logger))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "sig")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStripeWebhookBodyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := NewMockLoggerInterface(ctrl)
	mockVerifier := NewMockVerifierInterface(ctrl)

	router := newWebhookRouter(mockVerifier, NewMockReconcilerInterface(ctrl), mockLogger, NewMockMonitorInterface(ctrl))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(make([]byte, MaxWebhookBody+1)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newCheckoutRouter(t *testing.T, identity *types.Identity) (http.Handler, *MockGuardInterface, *MockStripeClientInterface) {
	ctrl := gomock.NewController(t)

	mockGuard := NewMockGuardInterface(ctrl)
	mockStripe := NewMockStripeClientInterface(ctrl)

	logger := logging.NewNoopLogger()
	api := NewAPI(NewMockVerifierInterface(ctrl), NewMockReconcilerInterface(ctrl), mockStripe, mockGuard, testCatalog(), tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	r := chi.NewRouter()
	if identity != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(authentication.WithIdentity(r.Context(), identity)))
			})
		})
	}
	api.RegisterEndpoints(r)

	return r, mockGuard, mockStripe
}

func checkoutRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/billing/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateCheckoutSession(t *testing.T) {
	identity := &types.Identity{ID: "user-admin", Email: "admin@example.com"}
	principal := &access.Principal{Identity: identity, WorkspaceID: testWorkspace, OwnerID: "user-owner", Role: types.RoleAdmin}

	body := fmt.Sprintf(`{"workspaceId":%q,"planId":"pro"}`, testWorkspace)

	t.Run("admin gets a checkout url", func(t *testing.T) {
		router, mockGuard, mockStripe := newCheckoutRouter(t, identity)

		mockGuard.EXPECT().Authorize(gomock.Any(), identity, testWorkspace, types.RoleAdmin).Return(principal, nil)
		mockStripe.EXPECT().CreateCheckoutSession(gomock.Any(), testWorkspace, "pro", "price_pro").Return("https://checkout.stripe.com/c/pay/cs_1", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(body))

		require.Equal(t, http.StatusOK, w.Code)

		var resp CreateCheckoutSessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", resp.URL)
	})

	t.Run("member is forbidden", func(t *testing.T) {
		router, mockGuard, _ := newCheckoutRouter(t, identity)

		mockGuard.EXPECT().Authorize(gomock.Any(), identity, testWorkspace, types.RoleAdmin).Return(nil, types.ErrForbidden)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(body))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		router, mockGuard, _ := newCheckoutRouter(t, identity)

		mockGuard.EXPECT().Authorize(gomock.Any(), identity, testWorkspace, types.RoleAdmin).Return(principal, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(fmt.Sprintf(`{"workspaceId":%q,"planId":"platinum"}`, testWorkspace)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		router, _, _ := newCheckoutRouter(t, identity)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(`{"planId":"pro"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		router, mockGuard, mockStripe := newCheckoutRouter(t, identity)

		mockGuard.EXPECT().Authorize(gomock.Any(), identity, testWorkspace, types.RoleAdmin).Return(principal, nil)
		mockStripe.EXPECT().CreateCheckoutSession(gomock.Any(), testWorkspace, "pro", "price_pro").Return("", context.DeadlineExceeded)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(body))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		router, _, _ := newCheckoutRouter(t, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, checkoutRequest(body))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
