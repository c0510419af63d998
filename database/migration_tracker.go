package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const migrationsTableName = "schema_migrations"

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(ctx context.Context, db *ImportDB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(ctx context.Context, db *ImportDB, name string) (bool, error) {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return false, err
	}

	var appliedAt sql.NullTime
	query := db.conn.Rebind(fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName))
	err := db.conn.QueryRowContext(ctx, query, name).Scan(&appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}

	return appliedAt.Valid, nil
}

// markMigrationApplied сохраняет информацию о примененной миграции.
func markMigrationApplied(ctx context.Context, db *ImportDB, name string) error {
	query := db.conn.Rebind(fmt.Sprintf(`
		INSERT INTO %s(name, applied_at) VALUES(?, ?)
		ON CONFLICT(name) DO UPDATE SET applied_at = excluded.applied_at
	`, migrationsTableName))
	if _, err := db.conn.ExecContext(ctx, query, name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}
	return nil
}

// ensureMigrationApplied выполняет миграцию только один раз.
func ensureMigrationApplied(ctx context.Context, db *ImportDB, name string, migration func(context.Context, *ImportDB) error) error {
	applied, err := isMigrationApplied(ctx, db, name)
	if err != nil {
		return err
	}
	if applied {
		db.logger.Debug("Skipping migration, already applied", "migration", name)
		return nil
	}

	if err := migration(ctx, db); err != nil {
		return fmt.Errorf("migration %s failed: %w", name, err)
	}

	if err := markMigrationApplied(ctx, db, name); err != nil {
		return err
	}

	db.logger.Info("Migration applied", "migration", name)
	return nil
}

// AppliedMigrations returns the names of applied migrations in name order.
func AppliedMigrations(ctx context.Context, db *ImportDB) ([]string, error) {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return nil, err
	}
	var names []string
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, migrationsTableName)
	if err := db.conn.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return names, nil
}
