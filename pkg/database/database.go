// Package database manages the PostgreSQL connection pool and schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/school-feed/pkg/lifecycle"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// System exposes the shared connection pool and registers its lifecycle hooks.
type System interface {
	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn    *sql.DB
	cfg     *Config
	logger  *slog.Logger
	migrate Migrations
}

// New opens a pgx-backed pool configured from cfg. The connection is verified during Start.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (System, error) {
	conn, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	db := &database{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With("system", "database"),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Option customizes the database system.
type Option func(*database)

// WithMigrations applies m during startup, before the service reports ready.
func WithMigrations(m Migrations) Option {
	return func(d *database) {
		d.migrate = m
	}
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection", "host", d.cfg.Host, "name", d.cfg.Name)

	pingCtx, cancel := context.WithTimeout(lc.Context(), d.cfg.ConnTimeoutDuration())
	defer cancel()

	if err := d.conn.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if d.migrate.Source != nil {
		if err := Migrate(d.cfg, d.migrate, d.logger); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	d.logger.Info("database connection established")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("closing database connection")
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close error", "error", err)
		}
	})

	return nil
}
