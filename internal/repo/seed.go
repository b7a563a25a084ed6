package repo

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rogerio-castellano/inventory-app/internal/db"
)

const DefaultSeedCount = 10

// SeedResult reports the ids inserted by SeedDummyProducts and a message for
// every row that could not be written.
type SeedResult struct {
	Inserted []int64  `json:"inserted"`
	Errors   []string `json:"errors,omitempty"`
}

// SeedDummyProducts inserts n placeholder products named after the next free
// ids. Rows are written one by one; a failed row does not stop the rest.
func SeedDummyProducts(ctx context.Context, r ProductRepository, n int, rnd *rand.Rand) (SeedResult, error) {
	result := SeedResult{Inserted: []int64{}}
	if n <= 0 {
		return result, nil
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	last, err := Collect(r.List(ctx, Query{
		Fields:  []string{db.FieldID},
		OrderBy: []Order{{Field: db.FieldID, Desc: true}},
		Limit:   1,
	}))
	if err != nil {
		return result, fmt.Errorf("failed to find the last product id: %w", err)
	}
	var next int64 = 1
	if len(last) > 0 {
		next = last[0].ID + 1
	}

	for i := range int64(n) {
		k := next + i
		id, err := r.Create(ctx, Fields{
			Name:          String(fmt.Sprintf("Product %d", k)),
			Price:         Int(rnd.Int64N(100) + 1),
			Quantity:      Int(rnd.Int64N(10) + 1),
			SupplierName:  String(fmt.Sprintf("Supplier %d", k)),
			SupplierPhone: String(db.DefaultSupplierValue),
		})
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Product %d: %v", k, err))
			continue
		}
		result.Inserted = append(result.Inserted, id)
	}
	return result, nil
}
