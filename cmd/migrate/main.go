package main

import (
	"context"
	"flag"
	"log"
	"time"

	"skill-hire/internal/config"
	"skill-hire/internal/database/migration"
	dbpostgres "skill-hire/internal/database/postgres"
	"skill-hire/internal/database/seeder"
	"skill-hire/migrations"
)

func main() {
	seed := flag.Bool("seed", false, "insert the default skill catalog after migrating")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	status := flag.Bool("status", false, "list pending migrations and exit without applying them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, log.Default())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	r := migration.Runner{FS: migrations.FS, Logger: log.Default()}
	if *dir != "" {
		r = migration.Runner{Dir: *dir, Logger: log.Default()}
	}
	if *status {
		pending, err := r.Pending(ctx, db.SQLDB())
		if err != nil {
			log.Fatalf("migration status failed: %v", err)
		}
		for _, m := range pending {
			log.Printf("migrate pending version=%d name=%s", m.Version, m.Name)
		}
		log.Printf("migrate status=checked pending=%d", len(pending))
		return
	}

	if err := r.Run(ctx, db.SQLDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Printf("migrate status=done")

	if !*seed {
		return
	}
	if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: log.Default()}).Run(ctx, db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("seed status=done")
}
