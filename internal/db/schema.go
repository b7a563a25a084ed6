package db

import "fmt"

const (
	// DefaultDatabaseName is the SQLite file created when no DSN is configured.
	DefaultDatabaseName = "inventory.db"
	// DatabaseVersion must be bumped whenever the products table changes.
	DatabaseVersion = 1

	ProductsTable = "products"

	ColumnID            = "id"
	ColumnName          = "product"
	ColumnPrice         = "price"
	ColumnQuantity      = "quantity"
	ColumnSupplier      = "supplier"
	ColumnSupplierPhone = "number"

	// DefaultSupplierValue fills supplier columns left unset by raw inserts.
	DefaultSupplierValue = "n/a"
)

// Field names exposed to callers. They decouple the API from column names.
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldPrice         = "price"
	FieldQuantity      = "quantity"
	FieldSupplierName  = "supplier_name"
	FieldSupplierPhone = "supplier_phone"
)

// Columns maps every public field name to its column, in table order.
var Columns = []struct {
	Field  string
	Column string
}{
	{FieldID, ColumnID},
	{FieldName, ColumnName},
	{FieldPrice, ColumnPrice},
	{FieldQuantity, ColumnQuantity},
	{FieldSupplierName, ColumnSupplier},
	{FieldSupplierPhone, ColumnSupplierPhone},
}

// ColumnFor returns the column backing a public field name.
func ColumnFor(field string) (string, bool) {
	for _, c := range Columns {
		if c.Field == field {
			return c.Column, true
		}
	}
	return "", false
}

// AllColumns lists every column of the products table.
func AllColumns() []string {
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = c.Column
	}
	return cols
}

func createProductsTable(d Dialect) string {
	idType, intType := "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	if d == DialectPostgres {
		idType, intType = "BIGSERIAL PRIMARY KEY", "BIGINT"
	}

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s %s,
		%s TEXT NOT NULL,
		%s %s NOT NULL,
		%s %s NOT NULL DEFAULT 0,
		%s TEXT NOT NULL DEFAULT '%s',
		%s TEXT NOT NULL DEFAULT '%s'
	)`,
		ProductsTable,
		ColumnID, idType,
		ColumnName,
		ColumnPrice, intType,
		ColumnQuantity, intType,
		ColumnSupplier, DefaultSupplierValue,
		ColumnSupplierPhone, DefaultSupplierValue,
	)
}
