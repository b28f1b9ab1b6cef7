// Package main applies the profile-store schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pokengu/idlemon/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	source := flag.String("source", "file://migrations", "migration source URL")
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "limit to n steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New(*source, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	err = run(m, *down, *steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("no changes (version=%d dirty=%v) [%s]\n", version, dirty, time.Since(start))
		return
	}
	fmt.Printf("migrated to version=%d dirty=%v [%s]\n", version, dirty, time.Since(start))
}

func run(m *migrate.Migrate, down bool, steps int) error {
	switch {
	case steps > 0 && down:
		return m.Steps(-steps)
	case steps > 0:
		return m.Steps(steps)
	case down:
		return m.Down()
	default:
		return m.Up()
	}
}
