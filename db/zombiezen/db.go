package zombiezen

import (
	"context"
	"fmt"
	"runtime"

	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/migrations"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool  *sqlitex.Pool
	owned bool
}

var _ db.DbApp = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the provided pool is managed externally and Close does
// not close it.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// Open opens the sqlite database at path, applies the embedded schema and
// returns a Db owning the pool. A poolSize of 0 uses runtime.NumCPU.
func Open(ctx context.Context, path string, poolSize int) (*Db, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{PoolSize: poolSize})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite pool %s: %w", path, err)
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get db connection: %w", err)
	}
	err = ApplyMigrations(conn, migrations.Schema())
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Db{pool: pool, owned: true}, nil
}

// Close closes the pool if it was opened by Open.
func (d *Db) Close() error {
	if !d.owned {
		return nil
	}
	return d.pool.Close()
}
