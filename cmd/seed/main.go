package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"

	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/pkg/auth"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	var (
		dsn    = flag.String("dsn", "", "Database connection string (defaults to configured database)")
		all    = flag.Bool("all", false, "Run all seeders")
		only   = flag.String("only", "", "Run one seeder and the seeders it requires")
		file   = flag.String("file", "", "External seed file (overrides embedded)")
		list   = flag.Bool("list", false, "List available seeders")
		tokens = flag.Bool("tokens", false, "Print bearer tokens for seeded users")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range seeders.list() {
			fmt.Printf("  - %s: %s", s.Name(), s.Description())
			if req := s.Requires(); len(req) > 0 {
				fmt.Printf(" (requires %v)", req)
			}
			fmt.Println()
		}
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	source.file = *file

	if *tokens {
		if err := printTokens(&cfg.Auth); err != nil {
			log.Fatalf("token issuing failed: %v", err)
		}
		return
	}

	if *dsn == "" {
		*dsn = cfg.Database.Dsn()
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	switch {
	case *all:
		if err := seeders.runAll(ctx, db); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Println("all seeders completed successfully")

	case *only != "":
		if err := seeders.run(ctx, db, *only); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Printf("%s seeded successfully\n", *only)

	default:
		fmt.Println("usage: seed [-dsn <connection-string>] [-all|-only <seeder>|-tokens] [-file <path>] [-list]")
		flag.PrintDefaults()
	}
}

func printTokens(cfg *auth.Config) error {
	users, err := source.users()
	if err != nil {
		return err
	}

	for _, u := range users {
		token, err := auth.Issue(cfg, u.ID)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", u.UserName, err)
		}
		fmt.Printf("%s\t%s\t%s\n", u.UserName, u.ID, token)
	}
	return nil
}
