// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/internal/version"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedDB     string
	}{
		{name: "database reachable", expectedStatus: http.StatusOK, expectedDB: "ok"},
		{name: "database down", pingErr: errors.New("dial tcp: connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedDB: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDB := db.NewMockDBClientInterface(ctrl)
			mockDB.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			logger := logging.NewNoopLogger()

			r := chi.NewRouter()
			NewAPI(mockDB, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger).RegisterEndpoints(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var s Status
			if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
				t.Fatalf("failed to decode status: %v", err)
			}

			if s.Database != tt.expectedDB {
				t.Errorf("expected database %q, got %q", tt.expectedDB, s.Database)
			}
			if s.Version != version.Version {
				t.Errorf("expected version %q, got %q", version.Version, s.Version)
			}
		})
	}
}
