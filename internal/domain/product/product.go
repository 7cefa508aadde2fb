package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a single catalog entry. Stock is the quantity still available
// for adding to grocery lists and is decremented by one each time the
// product is put on a list.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// Repository defines catalog operations.
//
// GetAll must return products in stable catalog order (insertion order);
// the available-products view and the search snapshot preserve that order.
type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p Product) error
}
