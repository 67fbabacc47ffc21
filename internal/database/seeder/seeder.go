// Package seeder inserts reference data that the API expects to exist.
// Seeders are idempotent and safe to run on every deploy.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"skill-hire/internal/database"
)

type Seeder interface {
	Name() string
	// Run returns how many rows it inserted.
	Run(ctx context.Context, db database.DB) (int, error)
}

func Defaults() []Seeder {
	return []Seeder{SkillsSeeder{}}
}

type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("seeder: nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		n, err := s.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.Printf("seed name=%s inserted=%d", s.Name(), n)
	}
	return nil
}

// requireColumns fails when the migrated schema is behind what a seeder
// writes, naming every missing column at once.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	have := make(map[string]struct{})
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		have[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, c := range columns {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %s; run migrations first", table, strings.Join(missing, ", "))
	}
	return nil
}
