// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

const (
	securityEventType = "security"

	levelInfo     = "INFO"
	levelWarn     = "WARN"
	levelCritical = "CRITICAL"
)

// Option decorates a security event with extra fields.
type Option func(*event)

type event struct {
	fields []zap.Field
}

// WithRequest attaches the request context of the event.
func WithRequest(method, path, remote string) Option {
	return func(e *event) {
		e.fields = append(e.fields,
			zap.String("request_method", method),
			zap.String("request_uri", path),
			zap.String("source_ip", remote),
		)
	}
}

// WithLabel attaches an arbitrary label.
func WithLabel(key, value string) Option {
	return func(e *event) {
		e.fields = append(e.fields, zap.String(key, value))
	}
}

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup(opts ...Option) {
	s.emit(levelWarn, "sys_startup", "workspace-service started", opts...)
}

func (s *SecurityLogger) SystemShutdown(opts ...Option) {
	s.emit(levelWarn, "sys_shutdown", "workspace-service shut down", opts...)
}

// AuthnFailure records a rejected credential.
func (s *SecurityLogger) AuthnFailure(reason string, opts ...Option) {
	s.emit(levelWarn, "authn_fail", fmt.Sprintf("authentication failed: %s", reason), opts...)
}

// AuthzFailure records a subject being denied access to a resource.
func (s *SecurityLogger) AuthzFailure(subject, resource string, opts ...Option) {
	s.emit(
		levelCritical,
		fmt.Sprintf("authz_fail:%s,%s", subject, resource),
		fmt.Sprintf("user %s attempted to access %s without entitlement", subject, resource),
		opts...,
	)
}

// AdminAction records a privileged mutation performed by subject.
func (s *SecurityLogger) AdminAction(subject, action, resource string, opts ...Option) {
	s.emit(
		levelWarn,
		fmt.Sprintf("admin_action:%s,%s,%s", subject, action, resource),
		fmt.Sprintf("user %s performed %s on %s", subject, action, resource),
		opts...,
	)
}

func (s *SecurityLogger) WebhookSignatureFailure(source string, opts ...Option) {
	s.emit(levelCritical, "webhook_signature_fail:"+source, "webhook signature verification failed", opts...)
}

func (s *SecurityLogger) emit(level, name, description string, opts ...Option) {
	e := new(event)
	for _, o := range opts {
		o(e)
	}

	fields := append(
		[]zap.Field{
			zap.String("type", securityEventType),
			zap.String("level", level),
			zap.String("event", name),
			zap.String("datetime", time.Now().UTC().Format(time.RFC3339)),
		},
		e.fields...,
	)

	s.l.Info(description, fields...)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	s := new(SecurityLogger)
	s.l = l.With(zap.String("logger", securityEventType))

	return s
}
