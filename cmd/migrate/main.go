package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the playerhire database schema with goose",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", migrate.DefaultDir, "goose migrations directory")

	root.AddCommand(
		newGooseCmd("up", "Apply every pending migration", &dir),
		newGooseCmd("down", "Roll back the latest migration", &dir),
		newGooseCmd("status", "Print applied and pending migrations", &dir),
		newVersionCmd(&dir),
		newCreateCmd(&dir),
		newValidateCmd(&dir),
	)
	return root
}

func newGooseCmd(command, short string, dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), command, *dir, func(ctx context.Context, sqlDB *sql.DB) error {
				if err := migrate.Run(ctx, sqlDB, *dir, command); err != nil {
					return fmt.Errorf("goose %s failed: %w", command, err)
				}
				return nil
			})
		},
	}
}

func newVersionCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version <YYYYMMDDHHMMSS>",
		Short: "Migrate up or down to an exact version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), "version", *dir, func(ctx context.Context, sqlDB *sql.DB) error {
				if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, args[0]); err != nil {
					return fmt.Errorf("goose version migrate failed: %w", err)
				}
				return nil
			})
		},
	}
}

func newCreateCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Write an empty timestamped SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrate.CreateSQLMigration(*dir, args[0])
			if err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
			return nil
		},
	}
}

func newValidateCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check migration file names and goose annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := migrate.ValidateDir(*dir); err != nil {
				return fmt.Errorf("migration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
			return nil
		},
	}
}

// withDatabase loads config, opens the database and hands fn the raw *sql.DB goose needs.
func withDatabase(ctx context.Context, command, dir string, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": command,
		"dir": dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "resource not working: sql database", err)
		return err
	}

	logg.Info(ctx, "migrate ready")
	return fn(ctx, sqlDB)
}
