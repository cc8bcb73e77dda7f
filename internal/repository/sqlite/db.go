// Package sqlite is the embedded storage backend, used for local runs and
// tests. It mirrors the postgres package on top of gorm.
package sqlite

import (
	"context"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	MemoryPath = ":memory:"

	foreignKeysParam = "_foreign_keys=on"
)

type DB struct {
	Gorm *gorm.DB
}

// Open connects to the database file at path with foreign keys enforced.
// An in-memory database is pinned to a single connection so every query
// sees the same data.
func Open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(withForeignKeys(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errFailedOpenDatabase(err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errFailedOpenDatabase(err)
	}
	if strings.Contains(path, MemoryPath) {
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{Gorm: gdb}, nil
}

func withForeignKeys(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + foreignKeysParam
	}
	return path + "?" + foreignKeysParam
}

func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return errFailedPingDatabase(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errFailedPingDatabase(err)
	}
	return nil
}

func (db *DB) Close() {
	if sqlDB, err := db.Gorm.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.Gorm.WithContext(ctx).AutoMigrate(&userModel{}, &profileModel{}, &taskModel{}); err != nil {
		return errFailedMigrate(err)
	}
	return nil
}
