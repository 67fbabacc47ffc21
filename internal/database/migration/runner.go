package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const advisoryLockKey int64 = 582031774

// Runner applies versioned SQL files (V<n>__<name>.sql) exactly once each,
// recording a checksum so edited migrations are detected. Files come from FS
// when set, otherwise from Dir on disk.
type Runner struct {
	FS     fs.FS
	Dir    string
	Logger *log.Logger
}

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	migs, err := r.load()
	if err != nil || len(migs) == 0 {
		return err
	}
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return err
	}

	if err := advisoryLock(ctx, db, advisoryLockKey); err != nil {
		return err
	}
	defer func() {
		_ = advisoryUnlock(context.Background(), db, advisoryLockKey)
	}()

	pending, err := plan(ctx, db, migs)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := applyOne(ctx, db, m); err != nil {
			return err
		}
		if r.Logger != nil {
			r.Logger.Printf("migration applied version=%d name=%s", m.Version, m.Name)
		}
	}
	if r.Logger != nil && len(pending) == 0 {
		r.Logger.Printf("migration status=up_to_date latest=%d", migs[len(migs)-1].Version)
	}
	return nil
}

// Pending lists migrations not yet applied, without applying anything.
func (r Runner) Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	migs, err := r.load()
	if err != nil || len(migs) == 0 {
		return nil, err
	}
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return nil, err
	}
	return plan(ctx, db, migs)
}

func (r Runner) load() ([]Migration, error) {
	src, err := r.source()
	if err != nil {
		return nil, err
	}
	return Load(src)
}

// plan fails when an applied migration's file changed since it ran.
func plan(ctx context.Context, db *sql.DB, migs []Migration) ([]Migration, error) {
	applied, err := getApplied(ctx, db)
	if err != nil {
		return nil, err
	}
	return diff(migs, applied)
}

func diff(migs []Migration, applied map[int64]appliedMigration) ([]Migration, error) {
	pending := make([]Migration, 0, len(migs))
	for _, m := range migs {
		a, ok := applied[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if a.Checksum != m.Checksum {
			return nil, fmt.Errorf("migration checksum mismatch: version=%d name=%s", m.Version, m.Name)
		}
	}
	return pending, nil
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  int64
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func (r Runner) source() (fs.FS, error) {
	if r.FS != nil {
		return r.FS, nil
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(filepath.Dir(exe), "migrations")
	}
	return os.DirFS(dir), nil
}

// Load reads and orders migrations from src. A missing root yields no
// migrations rather than an error.
func Load(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		m := fileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		b, err := fs.ReadFile(src, name)
		if err != nil {
			return nil, err
		}
		sqlText := strings.TrimSpace(string(b))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		h := sha256.Sum256([]byte(sqlText))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: name,
			SQL:      sqlText,
			Checksum: hex.EncodeToString(h[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}

	return migs, nil
}

func ensureSchemaMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

func advisoryLock(ctx context.Context, db *sql.DB, key int64) error {
	_, err := db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, key)
	return err
}

func advisoryUnlock(ctx context.Context, db *sql.DB, key int64) error {
	_, err := db.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, key)
	return err
}

func getApplied(ctx context.Context, db *sql.DB) (map[int64]appliedMigration, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]appliedMigration{}
	for rows.Next() {
		var v int64
		var c string
		if err := rows.Scan(&v, &c); err != nil {
			return nil, err
		}
		out[v] = appliedMigration{Version: v, Checksum: c}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration failed: version=%d file=%s: %w", m.Version, m.Filename, err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version,
		m.Name,
		m.Checksum,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}
