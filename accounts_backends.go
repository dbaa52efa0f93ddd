package accounts

import (
	"context"
	"fmt"

	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/db/postgres"
	"github.com/caasmo/accounts/db/zombiezen"
	"github.com/caasmo/accounts/storage"
)

// OpenStore opens and migrates the store selected by [store] driver.
func OpenStore(ctx context.Context, cfg config.Store) (db.DbApp, error) {
	switch cfg.Driver {
	case config.StoreSqlite:
		store, err := zombiezen.Open(ctx, cfg.SqlitePath, cfg.SqlitePoolSize)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenStorage builds the avatar storage selected by [storage] backend.
func OpenStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Backend {
	case config.StorageLocal:
		s, err := storage.NewLocal(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageS3:
		s, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
