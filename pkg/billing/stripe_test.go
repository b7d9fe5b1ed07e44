// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

func newTestClient(url, key string) *Client {
	logger := logging.NewNoopLogger()

	return NewClient(
		ClientConfig{
			SecretKey:  key,
			SuccessURL: "https://app.test/billing/success",
			CancelURL:  "https://app.test/billing/cancel",
			Timeout:    5 * time.Second,
			APIURL:     url,
		},
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test", logger),
		logger,
	)
}

func TestClientCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, testWorkspace, r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "price_pro", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "https://app.test/billing/success", r.PostForm.Get("success_url"))
		assert.Equal(t, testWorkspace, r.PostForm.Get("metadata[workspace_id]"))
		assert.Equal(t, "pro", r.PostForm.Get("subscription_data[metadata][plan_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "sk_test_123")

	url, err := c.CreateCheckoutSession(context.Background(), testWorkspace, "pro", "price_pro")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", url)
}

func TestClientGetSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscriptions/"+testSubID {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such subscription"}}`))
			return
		}

		assert.Equal(t, "items.data.price.product", r.URL.Query().Get("expand[0]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "sub_123",
			"object": "subscription",
			"customer": "cus_123",
			"status": "trialing",
			"current_period_end": 1792108800,
			"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "price": {"id": "price_team", "object": "price"}}]}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "sk_test_123")

	sub, err := c.GetSubscription(context.Background(), testSubID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", customerOf(sub))
	assert.Equal(t, "team", testCatalog().ResolvePlan(sub))

	_, err = c.GetSubscription(context.Background(), "sub_missing")
	require.Error(t, err)
}

func TestClientDisabledWithoutKey(t *testing.T) {
	c := newTestClient("", "")

	_, err := c.CreateCheckoutSession(context.Background(), testWorkspace, "pro", "price_pro")
	assert.ErrorIs(t, err, ErrBillingDisabled)

	_, err = c.GetSubscription(context.Background(), testSubID)
	assert.ErrorIs(t, err, ErrBillingDisabled)
}
