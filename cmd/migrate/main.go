// Package main provides the migrate command for applying and reverting
// the embedded database schema migrations.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/migrations"
	"github.com/JaimeStill/school-feed/pkg/database"
	"github.com/JaimeStill/school-feed/pkg/logging"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var source = database.Migrations{
	Source: migrations.FS,
	Path:   migrations.Path,
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return config.Load()
}

func step(dir database.Direction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := logging.New(&cfg.Logging).With("command", cmd.Name())
		return database.Step(&cfg.Database, source, dir, logger)
	}
}

func versionMain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	migrator, err := database.NewMigrator(&cfg.Database, source)
	if err != nil {
		return err
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	return nil
}

func main() {
	rootCmd := cobra.Command{
		Use:          "migrate",
		Short:        "Manages the school feed database schema",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "up",
		RunE:  step(database.Up),
		Short: "Applies every pending migration",
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "down",
		RunE:  step(database.Down),
		Short: "Reverts every applied migration",
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		RunE:  versionMain,
		Short: "Prints the current schema version",
	})

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
