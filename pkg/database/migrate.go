package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrations locates SQL migration files inside an fs.FS.
type Migrations struct {
	Source fs.FS
	Path   string
}

// Direction selects how far Migrate moves the schema.
type Direction int

const (
	Up Direction = iota
	Down
)

// NewMigrator builds a migrate instance over a dedicated connection pool.
// Closing the migrator closes that pool.
func NewMigrator(cfg *Config, m Migrations) (*migrate.Migrate, error) {
	src, err := iofs.New(m.Source, m.Path)
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	conn, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(conn, &pgxmigrate.Config{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "pgx5", driver)
}

// Migrate applies every pending up migration. An up-to-date schema is not an error.
func Migrate(cfg *Config, m Migrations, logger *slog.Logger) error {
	return Step(cfg, m, Up, logger)
}

// Step moves the schema fully up or fully down.
func Step(cfg *Config, m Migrations, dir Direction, logger *slog.Logger) error {
	migrator, err := NewMigrator(cfg, m)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch dir {
	case Down:
		err = migrator.Down()
	default:
		err = migrator.Up()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema up to date")
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, _ := migrator.Version()
	logger.Info("schema migrated", "version", version, "dirty", dirty)
	return nil
}
