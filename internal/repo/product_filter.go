package repo

import (
	"fmt"
	"strings"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/notify"
)

// Filter narrows a list, count, update or delete. Zero members are ignored.
type Filter struct {
	Name      string // case-insensitive substring
	ExactName string
	Supplier  string // case-insensitive substring
	MinPrice  *int64
	MaxPrice  *int64
	MinQty    *int64
	MaxQty    *int64
}

func (f Filter) IsZero() bool {
	return f.Name == "" && f.ExactName == "" && f.Supplier == "" &&
		f.MinPrice == nil && f.MaxPrice == nil && f.MinQty == nil && f.MaxQty == nil
}

// conditions renders the filter with '?' placeholders; callers rebind.
func (f Filter) conditions() (string, []any) {
	var clauses []string
	var args []any

	if f.Name != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", db.ColumnName))
		args = append(args, "%"+strings.ToLower(f.Name)+"%")
	}
	if f.ExactName != "" {
		clauses = append(clauses, db.ColumnName+" = ?")
		args = append(args, f.ExactName)
	}
	if f.Supplier != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", db.ColumnSupplier))
		args = append(args, "%"+strings.ToLower(f.Supplier)+"%")
	}
	if f.MinPrice != nil {
		clauses = append(clauses, db.ColumnPrice+" >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, db.ColumnPrice+" <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.MinQty != nil {
		clauses = append(clauses, db.ColumnQuantity+" >= ?")
		args = append(args, *f.MinQty)
	}
	if f.MaxQty != nil {
		clauses = append(clauses, db.ColumnQuantity+" <= ?")
		args = append(args, *f.MaxQty)
	}

	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " AND "), args
}

// Order sorts a list by a public field name.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a List call. Without OrderBy the row order is unspecified.
type Query struct {
	Fields  []string // projection; id is always included
	Filter  Filter
	OrderBy []Order
	Limit   int // 0 means no limit
	Offset  int
}

type selectorKind int

const (
	selectNone selectorKind = iota
	selectID
	selectFilter
	selectAll
)

// Selector names the rows an update or delete applies to. The zero value
// selects nothing and is rejected, so bulk writes are always deliberate.
type Selector struct {
	kind   selectorKind
	id     int64
	filter Filter
}

func ByID(id int64) Selector { return Selector{kind: selectID, id: id} }

// Where selects the rows matching f. An empty filter is rejected; use All.
func Where(f Filter) Selector { return Selector{kind: selectFilter, filter: f} }

func All() Selector { return Selector{kind: selectAll} }

func (s Selector) where() (string, []any, error) {
	switch s.kind {
	case selectID:
		return db.ColumnID + " = ?", []any{s.id}, nil
	case selectFilter:
		if s.filter.IsZero() {
			return "", nil, ErrNoSelection
		}
		clause, args := s.filter.conditions()
		return clause, args, nil
	case selectAll:
		return "1=1", nil, nil
	}
	return "", nil, ErrNoSelection
}

func (s Selector) scope() notify.Scope {
	if s.kind == selectID {
		return notify.Row(s.id)
	}
	return notify.Collection()
}
