package repo

import (
	"context"
	"errors"
	"iter"

	"github.com/rogerio-castellano/inventory-app/internal/models"
)

// ProductRepository defines the interface for product data operations.
// Every write validates its input before touching storage.
type ProductRepository interface {
	List(ctx context.Context, q Query) iter.Seq2[models.Product, error]
	Get(ctx context.Context, id int64) (models.Product, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Create(ctx context.Context, f Fields) (int64, error)
	Update(ctx context.Context, sel Selector, f Fields) (int64, error)
	Delete(ctx context.Context, sel Selector) (int64, error)
	AdjustQuantity(ctx context.Context, id int64, delta int64) (models.Product, error)
}

var (
	// ErrProductNotFound is returned when a product is not found in the repository.
	ErrProductNotFound = errors.New("product not found")
	// ErrWriteFailed wraps storage errors raised while persisting a change.
	ErrWriteFailed = errors.New("write failed")
	// ErrQuantityBelowZero is returned when an adjustment would leave a negative stock.
	ErrQuantityBelowZero = errors.New("quantity cannot be negative")
	// ErrQuantityOverflow is returned when an adjustment would push the stock past the int64 range.
	ErrQuantityOverflow = errors.New("quantity would overflow")
	// ErrNoSelection is returned for updates and deletes without an explicit target.
	ErrNoSelection = errors.New("no rows selected: use ByID, Where or All")
	// ErrSequenceConsumed is yielded when a List sequence is ranged over twice.
	ErrSequenceConsumed = errors.New("product sequence already consumed")
)

// Increment adds one unit to the product's stock.
func Increment(ctx context.Context, r ProductRepository, id int64) (models.Product, error) {
	return r.AdjustQuantity(ctx, id, 1)
}

// Decrement removes one unit. It refuses with ErrQuantityBelowZero when the
// product is already out of stock, leaving the quantity at zero.
func Decrement(ctx context.Context, r ProductRepository, id int64) (models.Product, error) {
	return r.AdjustQuantity(ctx, id, -1)
}

// Collect drains a List sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[models.Product, error]) ([]models.Product, error) {
	products := []models.Product{}
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
