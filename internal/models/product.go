package models

// Product represents a product entity in the inventory system.
// Price is expressed in the smallest currency unit.
type Product struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"product" json:"name"`
	Price         int64  `db:"price" json:"price"`
	Quantity      int64  `db:"quantity" json:"quantity"`
	SupplierName  string `db:"supplier" json:"supplier_name"`
	SupplierPhone string `db:"number" json:"supplier_phone"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
