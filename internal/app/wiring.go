package app

import (
	"context"
	"fmt"

	"department-service/internal/config"
	"department-service/internal/repository"
	"department-service/internal/repository/postgres"
	"department-service/internal/repository/sqlite"
	"department-service/internal/storage/s3"
)

const (
	errUnsupportedDriverFmt = "unsupported database driver %q"
	errMigrateFmt           = "failed to migrate schema: %w"
	errStorageFmt           = "failed to create attachment storage: %w"
)

// OpenStore connects the configured backend and brings its schema up to
// date. The returned Pinger reports backend liveness for health checks.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (*repository.Store, repository.Pinger, error) {
	var (
		store  *repository.Store
		pinger repository.Pinger
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store = repository.NewStore(
			postgres.NewUserRepository(db),
			postgres.NewProfileRepository(db),
			postgres.NewTaskRepository(db),
			postgres.NewMigrator(db),
			db.Close,
		)
		pinger = db
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = NewSQLiteStore(db)
		pinger = db
	default:
		return nil, nil, fmt.Errorf(errUnsupportedDriverFmt, cfg.Driver)
	}

	if err := store.Migrator.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf(errMigrateFmt, err)
	}
	return store, pinger, nil
}

// NewSQLiteStore bundles the embedded backend's repositories.
func NewSQLiteStore(db *sqlite.DB) *repository.Store {
	return repository.NewStore(
		sqlite.NewUserRepository(db),
		sqlite.NewProfileRepository(db),
		sqlite.NewTaskRepository(db),
		sqlite.NewMigrator(db),
		db.Close,
	)
}

// NewAttachmentStore returns nil when no bucket is configured.
func NewAttachmentStore(cfg *config.Config) (AttachmentStore, error) {
	if !cfg.Storage.Enabled() {
		return nil, nil
	}
	client, err := s3.NewClient(&cfg.Storage, cfg.App.PresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf(errStorageFmt, err)
	}
	return client, nil
}
