// Package postgres implements the account store on PostgreSQL through
// database/sql and the pgx stdlib driver. Schema changes are goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"
)

// DBTX is the subset of database/sql used by the store.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Db struct {
	db     DBTX
	closer func() error
}

var _ db.DbApp = (*Db)(nil)

// New returns a store over an existing handle. Close is a no-op.
func New(conn DBTX) *Db {
	return &Db{db: conn, closer: func() error { return nil }}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations.Postgres())
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Open connects to dsn, migrates the schema and returns a store owning the
// connection pool.
func Open(ctx context.Context, dsn string) (*Db, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if err := RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Db{db: conn, closer: conn.Close}, nil
}

func (d *Db) Close() error {
	return d.closer()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
