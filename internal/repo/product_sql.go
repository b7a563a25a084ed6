package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/models"
	"github.com/rogerio-castellano/inventory-app/internal/notify"
)

// SQLProductRepository is the only writer of the products table. It works on
// any dialect the storage engine supports.
type SQLProductRepository struct {
	engine   *db.Engine
	notifier notify.Notifier
}

func NewSQLProductRepository(engine *db.Engine, notifier notify.Notifier) *SQLProductRepository {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &SQLProductRepository{engine: engine, notifier: notifier}
}

var (
	productColumns = strings.Join(db.AllColumns(), ", ")

	insertProductQuery = fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?) RETURNING %s`,
		db.ProductsTable, db.ColumnName, db.ColumnPrice, db.ColumnQuantity,
		db.ColumnSupplier, db.ColumnSupplierPhone, db.ColumnID)

	getProductQuery = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		productColumns, db.ProductsTable, db.ColumnID)

	// The bound is computed in Go so the guard itself never overflows.
	increaseQuantityQuery = fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s + ?
		WHERE %[3]s = ? AND %[2]s <= ?
		RETURNING %[4]s`,
		db.ProductsTable, db.ColumnQuantity, db.ColumnID, productColumns)

	decreaseQuantityQuery = fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s + ?
		WHERE %[3]s = ? AND %[2]s >= ?
		RETURNING %[4]s`,
		db.ProductsTable, db.ColumnQuantity, db.ColumnID, productColumns)
)

func (r *SQLProductRepository) conn(ctx context.Context) (*sqlx.DB, error) {
	return r.engine.Open(ctx)
}

// List streams matching rows. The sequence can be ranged over once.
func (r *SQLProductRepository) List(ctx context.Context, q Query) iter.Seq2[models.Product, error] {
	var consumed atomic.Bool

	return func(yield func(models.Product, error) bool) {
		if consumed.Swap(true) {
			yield(models.Product{}, ErrSequenceConsumed)
			return
		}

		query, args, err := buildSelect(q)
		if err != nil {
			yield(models.Product{}, err)
			return
		}
		conn, err := r.conn(ctx)
		if err != nil {
			yield(models.Product{}, err)
			return
		}

		rows, err := conn.QueryxContext(ctx, conn.Rebind(query), args...)
		if err != nil {
			yield(models.Product{}, fmt.Errorf("failed to query products: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var p models.Product
			if err := rows.StructScan(&p); err != nil {
				yield(models.Product{}, fmt.Errorf("failed to scan product: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Product{}, fmt.Errorf("failed to iterate products: %w", err))
		}
	}
}

func buildSelect(q Query) (string, []any, error) {
	var errs ValidationErrors

	columns := []string{db.ColumnID}
	for _, field := range q.Fields {
		col, ok := db.ColumnFor(field)
		if !ok {
			errs = append(errs, ValidationError{Field: field, Reason: "is not a product field"})
			continue
		}
		if col != db.ColumnID && !containsString(columns, col) {
			columns = append(columns, col)
		}
	}
	if len(q.Fields) == 0 {
		columns = db.AllColumns()
	}

	var orderBy []string
	for _, o := range q.OrderBy {
		col, ok := db.ColumnFor(o.Field)
		if !ok {
			errs = append(errs, ValidationError{Field: o.Field, Reason: "cannot be used for ordering"})
			continue
		}
		if o.Desc {
			col += " DESC"
		}
		orderBy = append(orderBy, col)
	}

	if q.Limit < 0 {
		errs = append(errs, ValidationError{Field: "limit", Reason: "must not be negative"})
	}
	if q.Offset < 0 {
		errs = append(errs, ValidationError{Field: "offset", Reason: "must not be negative"})
	}
	if len(errs) > 0 {
		return "", nil, errs
	}

	where, args := q.Filter.conditions()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), db.ProductsTable, where)
	if len(orderBy) > 0 {
		query += " ORDER BY " + strings.Join(orderBy, ", ")
	}

	if q.Limit > 0 || q.Offset > 0 {
		limit := int64(math.MaxInt64)
		if q.Limit > 0 {
			limit = int64(q.Limit)
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, q.Offset)
	}

	return query, args, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *SQLProductRepository) Get(ctx context.Context, id int64) (models.Product, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err = conn.GetContext(ctx, &p, conn.Rebind(getProductQuery), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLProductRepository) Count(ctx context.Context, f Filter) (int64, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	where, args := f.conditions()
	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", db.ProductsTable, where)
	if err := conn.GetContext(ctx, &total, conn.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// Create validates f, inserts one row and returns its id.
func (r *SQLProductRepository) Create(ctx context.Context, f Fields) (int64, error) {
	if errs := validateCreate(f); len(errs) > 0 {
		return 0, errs
	}

	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var quantity int64
	if f.Quantity != nil {
		quantity = *f.Quantity
	}

	var id int64
	err = conn.QueryRowxContext(ctx, conn.Rebind(insertProductQuery),
		*f.Name, *f.Price, quantity, *f.SupplierName, *f.SupplierPhone).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert product: %w", ErrWriteFailed, err)
	}

	r.notifier.Notify(notify.Collection())
	return id, nil
}

// Update applies the present fields of f to every selected row and returns
// the number of rows matched. An empty f returns 0 without touching storage.
func (r *SQLProductRepository) Update(ctx context.Context, sel Selector, f Fields) (int64, error) {
	where, whereArgs, err := sel.where()
	if err != nil {
		return 0, err
	}
	if errs := validateUpdate(f); len(errs) > 0 {
		return 0, errs
	}
	if f.IsEmpty() {
		return 0, nil
	}

	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var sets []string
	var args []any
	for _, a := range f.assignments() {
		sets = append(sets, a.column+" = ?")
		args = append(args, a.value)
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", db.ProductsTable, strings.Join(sets, ", "), where)
	res, err := conn.ExecContext(ctx, conn.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to update products: %w", ErrWriteFailed, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if rowsAffected > 0 {
		r.notifier.Notify(sel.scope())
	}
	return rowsAffected, nil
}

// Delete removes the selected rows. Zero rows removed is not an error.
func (r *SQLProductRepository) Delete(ctx context.Context, sel Selector) (int64, error) {
	where, args, err := sel.where()
	if err != nil {
		return 0, err
	}

	conn, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", db.ProductsTable, where)
	res, err := conn.ExecContext(ctx, conn.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete products: %w", ErrWriteFailed, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if rowsAffected > 0 {
		r.notifier.Notify(sel.scope())
	}
	return rowsAffected, nil
}

// AdjustQuantity moves the stock by delta in one statement, refusing any
// change that would leave it negative or past the int64 range.
func (r *SQLProductRepository) AdjustQuantity(ctx context.Context, id int64, delta int64) (models.Product, error) {
	if delta == 0 {
		return r.Get(ctx, id)
	}

	refused := ErrQuantityBelowZero
	query, bound := decreaseQuantityQuery, int64(0)
	switch {
	case delta > 0:
		refused = ErrQuantityOverflow
		query, bound = increaseQuantityQuery, math.MaxInt64-delta
	case delta == math.MinInt64:
		// no stored quantity can absorb it
		if _, err := r.Get(ctx, id); err != nil {
			return models.Product{}, err
		}
		return models.Product{}, ErrQuantityBelowZero
	default:
		bound = -delta
	}

	conn, err := r.conn(ctx)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err = conn.QueryRowxContext(ctx, conn.Rebind(query), delta, id, bound).StructScan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return models.Product{}, getErr
		}
		return models.Product{}, refused
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: failed to adjust quantity: %w", ErrWriteFailed, err)
	}

	r.notifier.Notify(notify.Row(id))
	return p, nil
}
