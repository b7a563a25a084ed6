package repo

import (
	"context"
	"fmt"
	"math"

	"github.com/rogerio-castellano/inventory-app/internal/db"
)

type SQLMetricsRepository struct {
	engine *db.Engine
}

func NewSQLMetricsRepository(engine *db.Engine) *SQLMetricsRepository {
	return &SQLMetricsRepository{engine: engine}
}

// Low stock counts products still in stock but below the threshold.
var dashboardCountsQuery = fmt.Sprintf(`
	SELECT
		COUNT(*) AS total_products,
		CAST(COALESCE(SUM(CASE WHEN %[2]s = 0 THEN 1 ELSE 0 END), 0) AS BIGINT) AS out_of_stock,
		CAST(COALESCE(SUM(CASE WHEN %[2]s > 0 AND %[2]s < ? THEN 1 ELSE 0 END), 0) AS BIGINT) AS low_stock
	FROM %[1]s`,
	db.ProductsTable, db.ColumnQuantity)

// Units and value are summed in Go so they can saturate instead of failing
// the query.
var dashboardStockQuery = fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s > 0`,
	db.ColumnPrice, db.ColumnQuantity, db.ProductsTable, db.ColumnQuantity)

// GetDashboardMetrics reads both aggregates inside one transaction.
// TotalUnits and InventoryValue stop at math.MaxInt64.
func (r *SQLMetricsRepository) GetDashboardMetrics(ctx context.Context, lowStockThreshold int64) (Metrics, error) {
	conn, err := r.engine.Open(ctx)
	if err != nil {
		return Metrics{}, err
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}
	defer tx.Rollback()

	var m Metrics
	if err := tx.GetContext(ctx, &m, tx.Rebind(dashboardCountsQuery), lowStockThreshold); err != nil {
		return Metrics{}, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}

	rows, err := tx.QueryContext(ctx, dashboardStockQuery)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var price, quantity int64
		if err := rows.Scan(&price, &quantity); err != nil {
			return Metrics{}, fmt.Errorf("failed to scan stock: %w", err)
		}
		m.TotalUnits = saturatingAdd(m.TotalUnits, quantity)
		m.InventoryValue = saturatingAdd(m.InventoryValue, saturatingMul(price, quantity))
	}
	if err := rows.Err(); err != nil {
		return Metrics{}, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}
	return m, nil
}

// saturatingAdd and saturatingMul expect non-negative operands.
func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}
