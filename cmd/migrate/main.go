package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/campushub/classroom-api/pkg/config"
)

func main() {
	source := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	action := flag.Arg(0)
	if action == "" {
		action = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	mig, err := migrate.New(*source, connectionString(cfg.Database))
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer mig.Close() //nolint:errcheck

	if err := run(mig, action); err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}
	log.Printf("migration %s completed", action)
}

func run(mig *migrate.Migrate, action string) error {
	var err error
	switch action {
	case "up":
		err = mig.Up()
	case "down":
		err = mig.Steps(-1)
	case "drop":
		err = mig.Down()
	default:
		return fmt.Errorf("unknown action %q, want up, down, or drop", action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func connectionString(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(db.User),
		url.QueryEscape(db.Password),
		net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		db.Name,
		db.SSLMode,
	)
}
