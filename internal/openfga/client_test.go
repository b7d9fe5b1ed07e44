// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package openfga

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

const testStoreID = "01HVMMBCMGZNT3SED4Z17ECXCA"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	logger := logging.NewNoopLogger()

	c, err := NewClient(&Config{
		ApiScheme: u.Scheme,
		ApiHost:   u.Host,
		StoreID:   testStoreID,
		Timeout:   time.Second,
		Tracer:    tracing.NewNoopTracer(),
		Monitor:   monitoring.NewNoopMonitor("test", logger),
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return c
}

func TestClientCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stores/"+testStoreID+"/check") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)

		var req map[string]any
		_ = json.Unmarshal(body, &req)

		key, _ := req["tuple_key"].(map[string]any)
		if key["object"] != "workspace:w1" || key["relation"] != "admin" {
			t.Errorf("unexpected tuple key %v", key)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"allowed": true}`))
	})

	allowed, err := c.Check(context.Background(), "user:u1", "admin", "workspace:w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Errorf("expected allowed")
	}
}

func TestClientWriteTuple(t *testing.T) {
	called := false

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true

		if !strings.HasSuffix(r.URL.Path, "/write") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	if err := c.WriteTuple(context.Background(), "user:u1", "owner", "workspace:w1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !called {
		t.Errorf("expected write endpoint to be called")
	}
}

func TestDeleteTuplesWithoutTuplesIsNoop(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	})

	if err := c.DeleteTuples(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
