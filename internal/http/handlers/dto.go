package handlers

import "github.com/rogerio-castellano/inventory-app/internal/models"

// ProductRequest documents the write payload. Handlers decode into
// repo.Fields so absent and null members can be told apart.
type ProductRequest struct {
	Name          *string `json:"name,omitempty"`
	Price         *int64  `json:"price,omitempty"`
	Quantity      *int64  `json:"quantity,omitempty"`
	SupplierName  *string `json:"supplier_name,omitempty"`
	SupplierPhone *string `json:"supplier_phone,omitempty"`
}

type ProductResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Quantity      int64  `json:"quantity"`
	SupplierName  string `json:"supplier_name"`
	SupplierPhone string `json:"supplier_phone"`
	InStock       bool   `json:"in_stock"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Quantity:      p.Quantity,
		SupplierName:  p.SupplierName,
		SupplierPhone: p.SupplierPhone,
		InStock:       p.InStock(),
	}
}

type Meta struct {
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit,omitempty"`
	Offset     int   `json:"offset,omitempty"`
}

// ProductsSearchResult holds full products, or only the projected fields
// when the request named some.
type ProductsSearchResult struct {
	Data []any `json:"data"`
	Meta Meta  `json:"meta"`
}

type WriteResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

type QuantityAdjustmentRequest struct {
	Delta int64 `json:"delta"` // can be positive or negative
}

type OrderResponse struct {
	ProductID int64  `json:"product_id"`
	Supplier  string `json:"supplier_name"`
	URI       string `json:"uri"`
}

type ImportRowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

type ImportProductsResult struct {
	ImportedProductsCount int              `json:"imported"`
	UpdatedProductsCount  int              `json:"updated"`
	Errors                []ImportRowError `json:"errors"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
