package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// ErrNoDatabase is returned by OpenExisting when there is no import database yet.
var ErrNoDatabase = errors.New("import database does not exist")

// DBConfig конфигурация пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ImportDB обертка над базой данных импорта
type ImportDB struct {
	conn    *sqlx.DB
	dialect dialect
	logger  *slog.Logger
}

// Open opens the import database, enables foreign keys and applies the schema.
func Open(ctx context.Context, driver, dsn string, config DBConfig) (*ImportDB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		dsn = withSQLiteForeignKeys(dsn)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open import database: %w", err)
	}

	db := NewImportDB(sqlDB, driver)
	db.configurePool(config, isInMemorySQLite(dsn))
	conn := db.conn

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping import database: %w", err)
	}

	if d.name == DriverSQLite {
		// Включаем поддержку FOREIGN KEY constraints в SQLite
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := InitImportSchema(ctx, db); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize import schema: %w", err)
	}

	return db, nil
}

// OpenExisting opens an existing import database for reading. The schema is
// not applied and SQLite connections are query-only. A missing SQLite file or
// a store without the import tables gives ErrNoDatabase; nothing is created.
func OpenExisting(ctx context.Context, driver, dsn string, config DBConfig) (*ImportDB, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		if isInMemorySQLite(dsn) {
			return nil, ErrNoDatabase
		}
		if _, err := os.Stat(sqliteFilePath(dsn)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ErrNoDatabase
			}
			return nil, fmt.Errorf("failed to check import database: %w", err)
		}
		dsn = withSQLiteParam(withSQLiteForeignKeys(dsn), "_query_only", "true")
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open import database: %w", err)
	}
	db := NewImportDB(sqlDB, driver)
	db.configurePool(config, false)

	if err := db.conn.PingContext(ctx); err != nil {
		db.conn.Close()
		return nil, fmt.Errorf("failed to ping import database: %w", err)
	}

	ok, err := db.hasTable(ctx, TableContracts)
	if err != nil {
		db.conn.Close()
		return nil, err
	}
	if !ok {
		db.conn.Close()
		return nil, ErrNoDatabase
	}
	return db, nil
}

// NewImportDB wraps an already opened connection. The schema is not applied.
func NewImportDB(conn *sql.DB, driver string) *ImportDB {
	d, err := dialectFor(driver)
	if err != nil {
		d = sqliteDialect
	}
	return &ImportDB{
		conn:    sqlx.NewDb(conn, driver),
		dialect: d,
		logger:  slog.Default().With("component", "import_db"),
	}
}

func (db *ImportDB) configurePool(config DBConfig, inMemory bool) {
	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое соединение получит пустую БД.
	if inMemory {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}
	if config.MaxOpenConns > 0 {
		db.conn.SetMaxOpenConns(config.MaxOpenConns)
	} else if db.dialect.name == DriverSQLite {
		db.conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		db.conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		db.conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		db.conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		db.conn.SetConnMaxLifetime(5 * time.Minute)
	}
}

// Close закрывает подключение
func (db *ImportDB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying handle for read-only queries.
func (db *ImportDB) DB() *sqlx.DB {
	return db.conn
}

// Driver returns the driver name the database was opened with.
func (db *ImportDB) Driver() string {
	return db.dialect.name
}

func isInMemorySQLite(dsn string) bool {
	if dsn == ":memory:" || strings.HasPrefix(dsn, ":memory:?") {
		return true
	}
	return strings.HasPrefix(dsn, "file:") && strings.Contains(dsn, "mode=memory")
}

// withSQLiteForeignKeys turns foreign keys on for every pooled connection,
// not only the one the PRAGMA ran on.
func withSQLiteForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	return withSQLiteParam(dsn, "_foreign_keys", "on")
}

func withSQLiteParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}

// sqliteFilePath strips the file: scheme and the query from a SQLite DSN.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return path
}

func (db *ImportDB) hasTable(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if db.dialect.name == DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`
	}
	var n int
	if err := db.conn.GetContext(ctx, &n, db.conn.Rebind(query), name); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

type dialect struct {
	name       string
	primaryKey string
}

var (
	sqliteDialect   = dialect{name: DriverSQLite, primaryKey: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	postgresDialect = dialect{name: DriverPostgres, primaryKey: "BIGSERIAL PRIMARY KEY"}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// render substitutes dialect specific fragments into DDL.
func (d dialect) render(ddl string) string {
	return strings.ReplaceAll(ddl, "{{PK}}", d.primaryKey)
}
