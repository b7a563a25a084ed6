package repo

import "context"

// DefaultLowStockThreshold is used when the caller does not pass one.
const DefaultLowStockThreshold = 5

type Metrics struct {
	TotalProducts   int64 `db:"total_products" json:"total_products"`
	TotalUnits      int64 `db:"total_units" json:"total_units"`
	OutOfStockCount int64 `db:"out_of_stock" json:"out_of_stock_count"`
	LowStockCount   int64 `db:"low_stock" json:"low_stock_count"`
	InventoryValue  int64 `db:"inventory_value" json:"inventory_value"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context, lowStockThreshold int64) (Metrics, error)
}
