// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

// NewNoopLogger returns a logger discarding every entry, security events included.
func NewNoopLogger() *Logger {
	nop := zap.NewNop()

	l := new(Logger)
	l.SugaredLogger = nop.Sugar()
	l.security = newSecurityLogger(nop)

	return l
}
