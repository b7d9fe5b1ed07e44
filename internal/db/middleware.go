// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/nexus-app/workspace-service/internal/logging"
)

const commitFailedBody = `{"error":"Internal server error"}` + "\n"

// TransactionMiddleware runs every mutating request inside a single lazy transaction.
// The transaction commits when the handler answers with a status below 400 and
// rolls back otherwise. The response is held back until the transaction is
// settled; a failed commit is reported to the client as a 500.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			rw := newBufferedResponse()

			err := db.WithTx(r.Context(), func(txCtx context.Context) error {
				next.ServeHTTP(rw, r.WithContext(txCtx))

				if rw.statusCode >= http.StatusBadRequest {
					return fmt.Errorf("request failed with status %d", rw.statusCode)
				}

				return nil
			})

			if err != nil && rw.statusCode < http.StatusBadRequest {
				logger.Errorf("transaction for %s %s not committed: %v", r.Method, r.URL.Path, err)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(commitFailedBody))
				return
			}

			rw.flush(w)
		})
	}
}

// bufferedResponse captures headers, status and body until flushed.
type bufferedResponse struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
}

func newBufferedResponse() *bufferedResponse {
	rw := new(bufferedResponse)
	rw.header = make(http.Header)
	rw.statusCode = http.StatusOK

	return rw
}

func (rw *bufferedResponse) Header() http.Header {
	return rw.header
}

func (rw *bufferedResponse) WriteHeader(code int) {
	rw.statusCode = code
}

func (rw *bufferedResponse) Write(b []byte) (int, error) {
	return rw.body.Write(b)
}

func (rw *bufferedResponse) flush(w http.ResponseWriter) {
	for k, v := range rw.header {
		w.Header()[k] = v
	}

	w.WriteHeader(rw.statusCode)
	_, _ = w.Write(rw.body.Bytes())
}
