package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"skill-hire/internal/config"
	"skill-hire/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// DSN prefers DATABASE_URL and otherwise assembles a keyword/value string.
func DSN(cfg config.DatabaseConfig) string {
	if u := strings.TrimSpace(cfg.URL); u != "" {
		return u
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(cfg.DBHost),
		strings.TrimSpace(cfg.DBPort),
		strings.TrimSpace(cfg.DBUser),
		cfg.DBPassword,
		strings.TrimSpace(cfg.DBName),
		strings.TrimSpace(cfg.DBSSLMode),
	)
}

// poolConfig parses the DSN and overlays the non-zero pool limits.
func poolConfig(cfg config.DatabaseConfig, logger *log.Logger) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, err
	}
	setDuration(&pcfg.ConnConfig.ConnectTimeout, cfg.ConnectTimeout)
	setDuration(&pcfg.MaxConnLifetime, cfg.PoolMaxConnLifetime)
	setDuration(&pcfg.MaxConnIdleTime, cfg.PoolMaxConnIdleTime)
	setDuration(&pcfg.HealthCheckPeriod, cfg.PoolHealthCheckPeriod)
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	pcfg.ConnConfig.Tracer = &queryTracer{slow: cfg.SlowQueryThreshold, logger: logger}
	return pcfg, nil
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Pool is the pgx-backed database.DB. The *sql.DB view shares its
// connections and only exists for the migration runner.
type Pool struct {
	statements
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *log.Logger) (database.DB, error) {
	pcfg, err := poolConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, err
	}
	if logger != nil {
		logger.Printf("postgres connected host=%s db=%s max_conns=%d", pcfg.ConnConfig.Host, pcfg.ConnConfig.Database, pcfg.MaxConns)
	}
	return &Pool{statements: statements{q: p}, pool: p, sqlDB: stdlib.OpenDBFromPool(p)}, nil
}

func (p *Pool) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Pool) SQLDB() *sql.DB { return p.sqlDB }

func (p *Pool) Close() error {
	err := p.sqlDB.Close()
	p.pool.Close()
	return err
}

func (p *Pool) Begin(ctx context.Context) (database.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return poolTx{statements: statements{q: tx}, tx: tx}, nil
}

type poolTx struct {
	statements
	tx pgx.Tx
}

func (t poolTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t poolTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// statements adapts a pgxQuerier to database.Querier. pgx.Rows already
// satisfies database.Rows and is returned as is.
type statements struct {
	q pgxQuerier
}

func (s statements) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s statements) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s statements) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return row{s.q.QueryRow(ctx, query, args...)}
}

type row struct {
	pgx.Row
}

// Scan reports a missing row as database.ErrNoRows.
func (r row) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.ErrNoRows
	}
	return err
}
