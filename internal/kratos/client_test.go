// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
)

const sessionBody = `{
	"id": "session-1",
	"active": %s,
	"identity": {
		"id": "identity-1",
		"schema_id": "default",
		"schema_url": "http://kratos/schemas/default",
		"traits": {"email": "Alice@Example.com"}
	}
}`

func newTestClient(url string) *Client {
	logger := logging.NewNoopLogger()
	return NewClient(url, url, time.Second, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
}

func TestResolveSession(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		active      string
		expectedErr bool
	}{
		{name: "active session", status: http.StatusOK, active: "true"},
		{name: "inactive session", status: http.StatusOK, active: "false", expectedErr: true},
		{name: "rejected token", status: http.StatusUnauthorized, active: "false", expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/sessions/whoami" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.Header.Get("X-Session-Token") != "token-1" {
					t.Errorf("expected session token header")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					_, _ = w.Write([]byte(fmtBody(tt.active)))
					return
				}
				_, _ = w.Write([]byte(`{"error":{"code":401,"message":"no session"}}`))
			}))
			defer srv.Close()

			identity, err := newTestClient(srv.URL).ResolveSession(context.Background(), "token-1")

			if tt.expectedErr {
				if err == nil {
					t.Errorf("expected error, got identity %+v", identity)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity.ID != "identity-1" || identity.Email != "alice@example.com" {
				t.Errorf("unexpected identity %+v", identity)
			}
		})
	}
}

func TestGetIdentityEmailsWithoutAdmin(t *testing.T) {
	logger := logging.NewNoopLogger()
	c := NewClient("", "", time.Second, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	emails, err := c.GetIdentityEmails(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("expected no emails, got %v", emails)
	}
}

func TestEmailFromTraits(t *testing.T) {
	if e := emailFromTraits(map[string]interface{}{"email": "X@Y.io"}); e != "x@y.io" {
		t.Errorf("unexpected email %q", e)
	}
	if e := emailFromTraits("not a map"); e != "" {
		t.Errorf("expected empty email, got %q", e)
	}
}

func fmtBody(active string) string {
	return fmt.Sprintf(sessionBody, active)
}
