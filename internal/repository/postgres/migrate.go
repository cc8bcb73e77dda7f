package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

var requiredTables = []string{"users", "employee_profiles", "tasks"}

type Migrator struct {
	db *DB
}

func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate applies the embedded schema and checks every table exists.
func (m *Migrator) Migrate(ctx context.Context) error {
	if _, err := m.db.Pool.Exec(ctx, schemaSQL); err != nil {
		return errFailedApplySchema(err)
	}

	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_name = $1
	)`

	for _, table := range requiredTables {
		var exists bool
		if err := m.db.Pool.QueryRow(ctx, query, table).Scan(&exists); err != nil {
			return fmt.Errorf(errFailedVerifyTableFmt, table, err)
		}
		if !exists {
			return fmt.Errorf(errMissingTableFmt, table)
		}
	}

	return nil
}
