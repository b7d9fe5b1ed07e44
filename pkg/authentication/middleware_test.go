// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_verifier.go -source=./interfaces.go

func TestMiddleware_Authenticate(t *testing.T) {
	tests := []struct {
		name               string
		authHeader         string
		setupMocks         func(*gomock.Controller) TokenVerifierInterface
		expectedStatusCode int
		expectedBody       string
		expectAuthnFailure bool
	}{
		{
			name:       "Missing token - rejects request",
			authHeader: "",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				return NewMockTokenVerifierInterface(ctrl)
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectAuthnFailure: true,
		},
		{
			name:       "Non bearer scheme - rejects request",
			authHeader: "Basic dXNlcjpwYXNz",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				return NewMockTokenVerifierInterface(ctrl)
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectAuthnFailure: true,
		},
		{
			name:       "Token verification fails - rejects request",
			authHeader: "Bearer invalid-token",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				mockVerifier := NewMockTokenVerifierInterface(ctrl)
				mockVerifier.EXPECT().VerifyToken(gomock.Any(), "invalid-token").Return(nil, fmt.Errorf("%w: expired", types.ErrUnauthenticated))
				return mockVerifier
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectAuthnFailure: true,
		},
		{
			name:       "Valid token",
			authHeader: "Bearer valid-token",
			setupMocks: func(ctrl *gomock.Controller) TokenVerifierInterface {
				mockVerifier := NewMockTokenVerifierInterface(ctrl)
				mockVerifier.EXPECT().VerifyToken(gomock.Any(), "valid-token").Return(&types.Identity{ID: "user-123", Email: "u@example.com"}, nil)
				return mockVerifier
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       "user-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			ctx := context.Background()
			mockTracer.EXPECT().Start(gomock.Any(), "authentication.Middleware.Authenticate").Return(ctx, trace.SpanFromContext(ctx))
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()

			if tt.expectAuthnFailure {
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthnFailure(gomock.Any(), gomock.Any())
			}

			middleware := NewMiddleware(tt.setupMocks(ctrl), mockTracer, mockMonitor, mockLogger)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity, ok := IdentityFromContext(r.Context())
				if !ok {
					t.Errorf("expected identity in context")
					return
				}
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(identity.ID))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware.Authenticate()(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if tt.expectedBody != "" && rr.Body.String() != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, rr.Body.String())
			}

			if rr.Code == http.StatusUnauthorized {
				var body map[string]string
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body["error"] != "Unauthorized" {
					t.Errorf("expected Unauthorized error, got %q", body["error"])
				}
			}
		})
	}
}

func TestMiddleware_GetBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		found  bool
	}{
		{header: "", found: false},
		{header: "Bearer my-token-123", token: "my-token-123", found: true},
		{header: "bearer my-token-123", token: "my-token-123", found: true},
		{header: "BEARER   padded-token  ", token: "padded-token", found: true},
		{header: "Bearer   ", found: false},
		{header: "Bearer two words", found: false},
		{header: "my-token-123", found: false},
		{header: "Basic dXNlcjpwYXNz", found: false},
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	middleware := NewMiddleware(
		NewMockTokenVerifierInterface(ctrl),
		NewMockTracingInterface(ctrl),
		NewMockMonitorInterface(ctrl),
		NewMockLoggerInterface(ctrl),
	)

	for _, test := range tests {
		headers := http.Header{}
		if test.header != "" {
			headers.Set("Authorization", test.header)
		}

		token, found := middleware.getBearerToken(headers)
		if found != test.found {
			t.Errorf("header %q: expected found %v, got %v", test.header, test.found, found)
		}
		if found && token != test.token {
			t.Errorf("header %q: expected token %q, got %q", test.header, test.token, token)
		}
	}
}
