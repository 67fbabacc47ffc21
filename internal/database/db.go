package database

import (
	"context"
	"database/sql"
	"errors"
)

var errNilDB = errors.New("nil db")

// ErrNoRows is returned by Row.Scan when the query matched nothing.
var ErrNoRows = errors.New("no rows in result set")

type DB interface {
	Ping(ctx context.Context) error
	Close() error

	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row

	Begin(ctx context.Context) (Tx, error)

	SQLDB() *sql.DB
}

// Querier is the statement surface shared by DB and Tx, so repository
// helpers can run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

type Tx interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}

// InTx runs fn inside a transaction. fn's error rolls the transaction back;
// a nil error commits it.
func InTx(ctx context.Context, db DB, fn func(tx Tx) error) error {
	if db == nil {
		return errNilDB
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
