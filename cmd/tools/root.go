package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/importer"
	"climate-api/internal/logging"
	"climate-api/internal/migrate"
)

const appName = "climate-tools"

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "climate-tools",
		Short: "Maintenance commands for the climate database",
		Long: `Maintenance commands for the climate database.

The database location comes from the same configuration as the server
(SQLITE_PATH, DB_DSN, config.yaml).

Example:
  climate-tools migrate
  climate-tools import hawaii_measurements.csv hawaii_stations.csv`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newMigrateCmd(), newImportCmd())
	return rootCmd
}

// openDB loads configuration, installs the logger and opens the database.
func openDB() (*sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logging.New(cfg, version, appName))
	return db.Open(cfg)
}

func closeDB(conn *sqlx.DB) {
	if err := db.Close(conn); err != nil {
		slog.Error("db close", "err", err)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			applied, err := migrate.Run(cmd.Context(), conn)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied: %d\n", applied)
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var opts importer.Options

	cmd := &cobra.Command{
		Use:   "import <measurements.csv> <stations.csv>",
		Short: "Load measurement and station CSV exports in one transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			measurements, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer measurements.Close()
			stations, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer stations.Close()

			conn, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(conn)

			if _, err := migrate.Run(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			res, err := importer.Import(cmd.Context(), conn, measurements, stations, opts)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			slog.Info("import complete", "stations", res.Stations, "measurements", res.Measurements)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d stations, %d measurements\n", res.Stations, res.Measurements)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "delete existing measurements before loading")
	return cmd
}
