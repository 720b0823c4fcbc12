package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"member-locator-service/internal/adapters/repositories"
	"member-locator-service/internal/config"
	"member-locator-service/internal/platform/db"
	"member-locator-service/internal/platform/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	databaseURL string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "dbtool",
		Short:        "Manage the member directory database",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", config.Get("DATABASE_URL", ""), "Postgres connection string")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", config.Get("LOG_LEVEL", "info"), "log level")

	cmd.AddCommand(newInitCmd(opts), newSeedCmd(opts))
	return cmd
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the members and geocode_cache tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), opts, func(ctx context.Context, database *sql.DB, log *logrus.Logger) error {
				log.Info("initializing database schema")
				if err := repositories.InitSchema(ctx, database); err != nil {
					return fmt.Errorf("schema initialization failed: %w", err)
				}
				log.Info("schema ready")
				return nil
			})
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert members from a directory export JSON file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), opts, func(ctx context.Context, database *sql.DB, log *logrus.Logger) error {
				if err := repositories.InitSchema(ctx, database); err != nil {
					return fmt.Errorf("schema initialization failed: %w", err)
				}

				n, err := repositories.SeedFromJSON(ctx, database, file)
				if err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
				log.WithFields(logrus.Fields{"file": file, "members": n}).Info("seeding complete")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", config.Get("SEED_PATH", "data/seeds/members.json"), "directory export to load")

	return cmd
}

func withDB(
	ctx context.Context,
	opts *rootOptions,
	fn func(ctx context.Context, database *sql.DB, log *logrus.Logger) error,
) error {
	log := logging.New(opts.logLevel)

	if opts.databaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	database, err := db.Open(opts.databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, database, log)
}
