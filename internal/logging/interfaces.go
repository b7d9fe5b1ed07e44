// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Errorw(string, ...interface{})
	Infow(string, ...interface{})
	Warnw(string, ...interface{})
	Debugw(string, ...interface{})
	Sync() error

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits the security events consumed by audit tooling.
type SecurityLoggerInterface interface {
	SystemStartup(...Option)
	SystemShutdown(...Option)
	AuthnFailure(string, ...Option)
	AuthzFailure(string, string, ...Option)
	AdminAction(string, string, string, ...Option)
	WebhookSignatureFailure(string, ...Option)
}
