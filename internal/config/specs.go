// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns         int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns         int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime  time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime  time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
	DBStatementTimeout time.Duration `envconfig:"db_statement_timeout" default:"5s"`

	// ExternalCallTimeout bounds every outgoing call to Stripe, Kratos, the OIDC provider and OpenFGA.
	ExternalCallTimeout time.Duration `envconfig:"external_call_timeout" default:"5s"`

	// AuthenticationProvider selects the bearer verifier: jwt, kratos or noop.
	AuthenticationProvider string   `envconfig:"authentication_provider" default:"jwt"`
	OIDCIssuer             string   `envconfig:"oidc_issuer"`
	OIDCJWKSURL            string   `envconfig:"oidc_jwks_url"`
	OIDCAudience           string   `envconfig:"oidc_audience"`
	AllowedSubjects        []string `envconfig:"allowed_subjects"`
	RequiredScope          string   `envconfig:"required_scope"`

	KratosPublicURL string `envconfig:"kratos_public_url"`
	KratosAdminURL  string `envconfig:"kratos_admin_url"`

	// IdentityWebhookAPIKey is the shared secret Kratos and Hydra present on hook calls.
	IdentityWebhookAPIKey string `envconfig:"identity_webhook_api_key"`

	InvitationLifetime time.Duration `envconfig:"invitation_lifetime" default:"168h"`

	StripeSecretKey     string            `envconfig:"stripe_secret_key"`
	StripeWebhookSecret string            `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceIDs      map[string]string `envconfig:"stripe_price_ids"`
	StripeDefaultPlan   string            `envconfig:"stripe_default_plan" default:"pro"`
	StripeSuccessURL    string            `envconfig:"stripe_success_url" default:"http://localhost:3000/billing/success"`
	StripeCancelURL     string            `envconfig:"stripe_cancel_url" default:"http://localhost:3000/billing/cancel"`
	StripeAPIURL        string            `envconfig:"stripe_api_url"`

	AuthorizationEnabled bool   `envconfig:"authorization_enabled" default:"false"`
	OpenfgaApiScheme     string `envconfig:"openfga_api_scheme" default:""`
	OpenfgaApiHost       string `envconfig:"openfga_api_host"`
	OpenfgaApiToken      string `envconfig:"openfga_api_token"`
	OpenfgaStoreId       string `envconfig:"openfga_store_id"`
	OpenfgaModelId       string `envconfig:"openfga_authorization_model_id" default:""`
}
