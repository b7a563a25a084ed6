package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "pgx"
)

var (
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrUnsupportedDowngrade = errors.New("database version is newer than supported")
	ErrUnknownDriver        = errors.New("unknown database driver")
)

// Migration moves the schema from version-1 to version inside tx.
type Migration func(ctx context.Context, tx *sqlx.Tx) error

type Config struct {
	Driver string
	DSN    string
	// Migrations is keyed by the version each step produces.
	Migrations map[int]Migration
}

// Engine owns the products database. The handle is created on the first Open
// and shared by every caller afterwards.
type Engine struct {
	cfg     Config
	dialect Dialect

	mu sync.Mutex
	db *sqlx.DB
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// Open returns the live handle, creating the database and its schema on
// first use.
func (e *Engine) Open(ctx context.Context) (*sqlx.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		return e.db, nil
	}

	dialect, err := ParseDialect(e.cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	dsn := e.cfg.DSN
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	} else if dsn == "" {
		return nil, fmt.Errorf("%w: database DSN not set", ErrStorageUnavailable)
	}

	conn, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStorageUnavailable, err)
	}
	if dialect == DialectSQLite && isMemoryDSN(dsn) {
		// every pooled connection would otherwise get its own empty database
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStorageUnavailable, err)
	}

	e.dialect = dialect
	if err := e.initialize(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	e.db = conn
	return conn, nil
}

// Dialect reports the driver of the opened handle.
func (e *Engine) Dialect() Dialect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dialect
}

func (e *Engine) Ping(ctx context.Context) error {
	conn, err := e.Open(ctx)
	if err != nil {
		return err
	}
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *Engine) initialize(ctx context.Context, conn *sqlx.DB) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := e.readVersion(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case current == 0:
		if _, err := tx.ExecContext(ctx, createProductsTable(e.dialect)); err != nil {
			return fmt.Errorf("failed to create %s table: %w", ProductsTable, err)
		}
	case current < DatabaseVersion:
		if err := e.Upgrade(ctx, tx, current, DatabaseVersion); err != nil {
			return err
		}
	case current > DatabaseVersion:
		return fmt.Errorf("%w: found %d, supported %d", ErrUnsupportedDowngrade, current, DatabaseVersion)
	}

	if current != DatabaseVersion {
		if err := e.writeVersion(ctx, tx, DatabaseVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}

	return tx.Commit()
}

// Upgrade applies every registered step in (oldVersion, newVersion]. Versions
// without a step are schema-compatible and pass through unchanged.
func (e *Engine) Upgrade(ctx context.Context, tx *sqlx.Tx, oldVersion, newVersion int) error {
	if newVersion < oldVersion {
		return fmt.Errorf("%w: %d -> %d", ErrUnsupportedDowngrade, oldVersion, newVersion)
	}
	for v := oldVersion + 1; v <= newVersion; v++ {
		step, ok := e.cfg.Migrations[v]
		if !ok {
			continue
		}
		if err := step(ctx, tx); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v, err)
		}
	}
	return nil
}

const versionCommentPrefix = "schema_version="

func (e *Engine) readVersion(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var version int
	if e.dialect == DialectSQLite {
		err := tx.GetContext(ctx, &version, "PRAGMA user_version")
		return version, err
	}

	// postgres keeps the version on the table itself so no bookkeeping table is needed
	var comment string
	err := tx.GetContext(ctx, &comment,
		`SELECT COALESCE(obj_description(to_regclass($1), 'pg_class'), '')`, ProductsTable)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(comment, versionCommentPrefix) {
		return 0, nil
	}
	if _, err := fmt.Sscanf(strings.TrimPrefix(comment, versionCommentPrefix), "%d", &version); err != nil {
		return 0, fmt.Errorf("malformed version comment %q: %w", comment, err)
	}
	return version, nil
}

func (e *Engine) writeVersion(ctx context.Context, tx *sqlx.Tx, version int) error {
	var stmt string
	if e.dialect == DialectSQLite {
		stmt = fmt.Sprintf("PRAGMA user_version = %d", version)
	} else {
		stmt = fmt.Sprintf("COMMENT ON TABLE %s IS '%s%d'", ProductsTable, versionCommentPrefix, version)
	}
	_, err := tx.ExecContext(ctx, stmt)
	return err
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = DefaultDatabaseName
	}
	if strings.Contains(dsn, "_busy_timeout") || isMemoryDSN(dsn) {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
