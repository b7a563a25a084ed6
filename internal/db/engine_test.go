package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory_test.db")
	e := NewEngine(Config{Driver: "sqlite3", DSN: path})
	t.Cleanup(func() { e.Close() })
	return e, path
}

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	e, path := newTestEngine(t)

	conn, err := e.Open(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "database file should exist after Open")

	var tableName string
	err = conn.Get(&tableName, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", ProductsTable)
	require.NoError(t, err)
	assert.Equal(t, ProductsTable, tableName)

	var version int
	require.NoError(t, conn.Get(&version, "PRAGMA user_version"))
	assert.Equal(t, DatabaseVersion, version)
	assert.Equal(t, DialectSQLite, e.Dialect())
}

func TestOpen_IsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)

	first, err := e.Open(context.Background())
	require.NoError(t, err)
	second, err := e.Open(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestOpen_ReopenKeepsRows(t *testing.T) {
	e, path := newTestEngine(t)
	conn, err := e.Open(context.Background())
	require.NoError(t, err)

	_, err = conn.Exec("INSERT INTO products (product, price) VALUES ('Widget', 500)")
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened := NewEngine(Config{DSN: path})
	t.Cleanup(func() { reopened.Close() })
	conn, err = reopened.Open(context.Background())
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM products"))
	assert.Equal(t, 1, count)
}

func TestSchema_Defaults(t *testing.T) {
	e, _ := newTestEngine(t)
	conn, err := e.Open(context.Background())
	require.NoError(t, err)

	_, err = conn.Exec("INSERT INTO products (product, price) VALUES ('Bare', 1)")
	require.NoError(t, err)

	var row struct {
		Quantity int64  `db:"quantity"`
		Supplier string `db:"supplier"`
		Number   string `db:"number"`
	}
	require.NoError(t, conn.Get(&row, "SELECT quantity, supplier, number FROM products"))
	assert.Equal(t, int64(0), row.Quantity)
	assert.Equal(t, DefaultSupplierValue, row.Supplier)
	assert.Equal(t, DefaultSupplierValue, row.Number)
}

func TestOpen_UnreachablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "inventory.db")
	e := NewEngine(Config{DSN: path})

	_, err := e.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestOpen_UnknownDriver(t *testing.T) {
	e := NewEngine(Config{Driver: "oracle", DSN: "x"})

	_, err := e.Open(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpen_NewerVersionRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	raw := sqlx.MustConnect("sqlite3", path)
	raw.MustExec("PRAGMA user_version = 99")
	raw.Close()

	e := NewEngine(Config{DSN: path})
	_, err := e.Open(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedDowngrade)
}

func TestUpgrade_RunsRegisteredStepsInOrder(t *testing.T) {
	var ran []int
	step := func(v int) Migration {
		return func(ctx context.Context, tx *sqlx.Tx) error {
			ran = append(ran, v)
			return nil
		}
	}
	e := NewEngine(Config{Migrations: map[int]Migration{2: step(2), 4: step(4), 7: step(7)}})

	conn := sqlx.MustConnect("sqlite3", filepath.Join(t.TempDir(), "upgrade.db"))
	defer conn.Close()
	tx := conn.MustBegin()
	defer tx.Rollback()

	require.NoError(t, e.Upgrade(context.Background(), tx, 1, 5))
	assert.Equal(t, []int{2, 4}, ran)
}

func TestUpgrade_NoStepsIsNoop(t *testing.T) {
	e := NewEngine(Config{})
	conn := sqlx.MustConnect("sqlite3", filepath.Join(t.TempDir(), "noop.db"))
	defer conn.Close()
	tx := conn.MustBegin()
	defer tx.Rollback()

	assert.NoError(t, e.Upgrade(context.Background(), tx, 1, 1))
	assert.ErrorIs(t, e.Upgrade(context.Background(), tx, 2, 1), ErrUnsupportedDowngrade)
}

func TestColumnFor(t *testing.T) {
	col, ok := ColumnFor(FieldSupplierPhone)
	assert.True(t, ok)
	assert.Equal(t, ColumnSupplierPhone, col)

	_, ok = ColumnFor("colour")
	assert.False(t, ok)
}
