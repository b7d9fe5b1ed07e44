// Copyright 2026 The Nexus Authors.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/nexus-app/workspace-service/migrations"
)

var migrationDSN string

// migrateCmd applies the embedded schema of workspaces, members, invitations and subscriptions.
var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [version]|status|check]",
	Short: "Run database migrations",
	Long:  `Apply or inspect the embedded database migrations. Without arguments all pending migrations are applied.`,
	Args:  validateMigrateArgs,
	RunE:  runMigrate,
}

func validateMigrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "status", "check":
		if len(args) == 2 {
			return fmt.Errorf("%s does not take a version", args[0])
		}
	case "down":
		if len(args) == 2 {
			if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
				return fmt.Errorf("invalid version number: %q", args[1])
			}
		}
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}

	return nil
}

// migrationReport is the JSON document printed with --output=json.
type migrationReport struct {
	Status  string                   `json:"status,omitempty"`
	Version int64                    `json:"version"`
	Applied []*goose.MigrationResult `json:"applied,omitempty"`
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	target := int64(-1)
	if len(args) == 2 {
		target, _ = strconv.ParseInt(args[1], 10, 64)
	}

	if migrationDSN == "" {
		return errors.New("a DSN is required, set --dsn or $DSN")
	}

	db, err := openMigrationDB(cmd.Context(), migrationDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []goose.ProviderOption
	if output == "json" {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	switch command {
	case "status":
		return migrationStatus(cmd, provider)
	case "check":
		return migrationCheck(cmd, provider)
	}

	var results []*goose.MigrationResult
	switch {
	case command == "up":
		results, err = provider.Up(cmd.Context())
	case target < 0:
		var result *goose.MigrationResult
		if result, err = provider.Down(cmd.Context()); result != nil {
			results = append(results, result)
		}
	default:
		results, err = provider.DownTo(cmd.Context(), target)
	}
	if err != nil {
		return fmt.Errorf("migrate %s failed: %w", command, err)
	}

	version, _ := provider.GetDBVersion(cmd.Context())
	report := migrationReport{Status: "ok", Version: version, Applied: results}

	return render(cmd.OutOrStdout(), report, func(w *tabwriter.Writer) {
		row(w, "MIGRATION", "DIRECTION", "DURATION")
		for _, r := range results {
			row(w, r.Source.Path, r.Direction, r.Duration.Round(time.Millisecond))
		}
		row(w, "schema version", version, "")
	})
}

func migrationStatus(cmd *cobra.Command, provider *goose.Provider) error {
	statuses, err := provider.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	return render(cmd.OutOrStdout(), statuses, func(w *tabwriter.Writer) {
		row(w, "APPLIED AT", "MIGRATION")
		for _, s := range statuses {
			appliedAt := "pending"
			if s.State == goose.StateApplied {
				appliedAt = s.AppliedAt.Format(time.RFC3339)
			}
			row(w, appliedAt, s.Source.Path)
		}
	})
}

// migrationCheck fails when migrations are pending, so it can gate a deployment.
func migrationCheck(cmd *cobra.Command, provider *goose.Provider) error {
	pending, err := provider.HasPending(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	version, err := provider.GetDBVersion(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	report := migrationReport{Status: "ok", Version: version}
	if pending {
		report.Status = "pending"
	}

	if err := render(cmd.OutOrStdout(), report, func(w *tabwriter.Writer) {
		row(w, "STATUS", "VERSION")
		row(w, report.Status, version)
	}); err != nil {
		return err
	}

	if pending {
		return fmt.Errorf("migrations are pending: current version %d", version)
	}

	return nil
}

func openMigrationDB(ctx context.Context, dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %w", err)
	}

	db := stdlib.OpenDB(*config)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}

	return db, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrationDSN, "dsn", os.Getenv("DSN"), "PostgreSQL DSN connection string, defaults to $DSN")

	rootCmd.AddCommand(migrateCmd)
}
