// Package main provides the seed command for populating the school-feed
// database. Seeders declare the seeders they depend on and always run in
// dependency order within a single transaction.
package main

import (
	"context"
	"database/sql"
	"fmt"
)

// Seeder populates one table from the seed data.
type Seeder interface {
	Name() string
	Description() string

	// Requires names the seeders whose rows must exist before this one runs.
	Requires() []string

	Seed(ctx context.Context, tx *sql.Tx) error
}

// registry keeps seeders in registration order.
type registry struct {
	names  []string
	byName map[string]Seeder
}

func newRegistry() *registry {
	return &registry{byName: map[string]Seeder{}}
}

var seeders = newRegistry()

func registerSeeder(s Seeder) {
	seeders.register(s)
}

func (r *registry) register(s Seeder) {
	if _, ok := r.byName[s.Name()]; !ok {
		r.names = append(r.names, s.Name())
	}
	r.byName[s.Name()] = s
}

func (r *registry) list() []Seeder {
	result := make([]Seeder, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.byName[name])
	}
	return result
}

// plan resolves names and their requirements into execution order.
// Each seeder appears once, after everything it requires.
func (r *registry) plan(names ...string) ([]Seeder, error) {
	const (
		visiting = iota + 1
		done
	)

	state := map[string]int{}
	var ordered []Seeder

	var visit func(name string, from string) error
	visit = func(name string, from string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("seeder dependency cycle at %s", name)
		}

		s, ok := r.byName[name]
		if !ok {
			if from != "" {
				return fmt.Errorf("seeder %s requires unknown seeder %s", from, name)
			}
			return fmt.Errorf("seeder not found: %s", name)
		}

		state[name] = visiting
		for _, req := range s.Requires() {
			if err := visit(req, name); err != nil {
				return err
			}
		}
		state[name] = done
		ordered = append(ordered, s)
		return nil
	}

	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// run executes the named seeders and their requirements in one transaction.
// If any seeder fails, the entire transaction is rolled back.
func (r *registry) run(ctx context.Context, db *sql.DB, names ...string) error {
	plan, err := r.plan(names...)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, s := range plan {
		if err := s.Seed(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *registry) runAll(ctx context.Context, db *sql.DB) error {
	return r.run(ctx, db, r.names...)
}
