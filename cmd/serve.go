// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/nexus-app/workspace-service/internal/authorization"
	"github.com/nexus-app/workspace-service/internal/config"
	"github.com/nexus-app/workspace-service/internal/db"
	"github.com/nexus-app/workspace-service/internal/kratos"
	"github.com/nexus-app/workspace-service/internal/logging"
	"github.com/nexus-app/workspace-service/internal/monitoring"
	"github.com/nexus-app/workspace-service/internal/monitoring/prometheus"
	"github.com/nexus-app/workspace-service/internal/openfga"
	"github.com/nexus-app/workspace-service/internal/storage"
	"github.com/nexus-app/workspace-service/internal/tracing"
	"github.com/nexus-app/workspace-service/pkg/access"
	"github.com/nexus-app/workspace-service/pkg/authentication"
	"github.com/nexus-app/workspace-service/pkg/billing"
	"github.com/nexus-app/workspace-service/pkg/web"
	"github.com/nexus-app/workspace-service/pkg/webhooks"
	"github.com/nexus-app/workspace-service/pkg/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newAuthorizer(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*authorization.Authorizer, error) {
	if !specs.AuthorizationEnabled {
		logger.Info("Using noop authorizer")
		return authorization.NewAuthorizer(openfga.NewNoopClient(tracer, monitor, logger), tracer, monitor, logger), nil
	}

	ofga, err := openfga.NewClient(
		&openfga.Config{
			ApiScheme:   specs.OpenfgaApiScheme,
			ApiHost:     specs.OpenfgaApiHost,
			ApiToken:    specs.OpenfgaApiToken,
			StoreID:     specs.OpenfgaStoreId,
			AuthModelID: specs.OpenfgaModelId,
			Debug:       specs.Debug,
			Timeout:     specs.ExternalCallTimeout,
			Tracer:      tracer,
			Monitor:     monitor,
			Logger:      logger,
		},
	)
	if err != nil {
		return nil, err
	}

	authorizer := authorization.NewAuthorizer(ofga, tracer, monitor, logger)
	logger.Info("Authorization is enabled")

	if err := authorizer.ValidateModel(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid authorization model provided: %w", err)
	}

	return authorizer, nil
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("workspace-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:              specs.DSN,
		MaxConns:         specs.DBMaxConns,
		MinConns:         specs.DBMinConns,
		MaxConnLifetime:  specs.DBMaxConnLifetime,
		MaxConnIdleTime:  specs.DBMaxConnIdleTime,
		StatementTimeout: specs.DBStatementTimeout,
		TracingEnabled:   specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	authorizer, err := newAuthorizer(specs, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to set up authorization: %w", err)
	}

	kratosClient := kratos.NewClient(
		specs.KratosPublicURL,
		specs.KratosAdminURL,
		specs.ExternalCallTimeout,
		tracer,
		monitor,
		logger,
	)

	verifier, err := authentication.NewAuthenticator(
		context.Background(),
		authentication.Config{
			Provider:        specs.AuthenticationProvider,
			Issuer:          specs.OIDCIssuer,
			JWKSURL:         specs.OIDCJWKSURL,
			Audience:        specs.OIDCAudience,
			AllowedSubjects: specs.AllowedSubjects,
			RequiredScope:   specs.RequiredScope,
			Timeout:         specs.ExternalCallTimeout,
		},
		kratosClient,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to set up authentication: %w", err)
	}

	guard := access.NewGuard(s, tracer, monitor, logger)
	guardMiddleware := access.NewMiddleware(guard, tracer, monitor, logger)

	workspaceService := workspace.NewService(
		s,
		authorizer,
		kratosClient,
		specs.InvitationLifetime,
		tracer,
		monitor,
		logger,
	)

	plans := billing.NewPlanCatalog(specs.StripePriceIDs, specs.StripeDefaultPlan)
	stripeClient := billing.NewClient(
		billing.ClientConfig{
			SecretKey:  specs.StripeSecretKey,
			SuccessURL: specs.StripeSuccessURL,
			CancelURL:  specs.StripeCancelURL,
			Timeout:    specs.ExternalCallTimeout,
			APIURL:     specs.StripeAPIURL,
		},
		tracer,
		monitor,
		logger,
	)
	if specs.StripeWebhookSecret == "" {
		logger.Warn("stripe webhook secret is not set, every webhook delivery will be rejected")
	}
	if specs.IdentityWebhookAPIKey == "" {
		logger.Warn("identity webhook api key is not set, registration and token hooks will be rejected")
	}
	reconciler := billing.NewReconciler(s, stripeClient, plans, tracer, monitor, logger)

	router := web.NewRouter(
		web.RouterConfig{
			AllowedOrigins: specs.CORSAllowedOrigins,
			DB:             dbClient,
			Authenticator:  authentication.NewMiddleware(verifier, tracer, monitor, logger),
			Workspaces:     workspace.NewAPI(workspaceService, guardMiddleware, tracer, monitor, logger),
			Billing: billing.NewAPI(
				billing.NewVerifier(specs.StripeWebhookSecret),
				reconciler,
				stripeClient,
				guard,
				plans,
				tracer,
				monitor,
				logger,
			),
			Webhooks: webhooks.NewAPI(webhooks.NewService(s, authorizer, tracer, monitor, logger), specs.IdentityWebhookAPIKey, tracer, monitor, logger),
		},
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
