// Package grocerylist holds the grocery list session: the items-on-list view,
// the derived available-products view, search over that view, and export of
// the current list.
package grocerylist

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for list operations.
var (
	// ErrListNotFound is returned when a requested grocery list does not exist.
	ErrListNotFound = errors.New("grocery list not found")

	// ErrExportCancelled is returned when an export is abandoned because the
	// caller cancelled before the sink finished persisting the payload.
	ErrExportCancelled = errors.New("export cancelled")
)

// List is a single grocery list. It is session context: the core reads it
// and only the display metadata (Color) is ever updated, via ListRepository.
type List struct {
	ID        string
	Name      string
	CreatedOn time.Time
	Color     string
	OwnerID   string
}

// Item puts one product on one list at a quantity. At most one item exists
// per (ListID, ProductID) pair; items are created with Quantity 1 and never
// updated or deleted here.
type Item struct {
	ID        string
	ListID    string
	ProductID string
	Quantity  int
}

// ListRepository defines persistence operations for grocery lists.
type ListRepository interface {
	GetByID(ctx context.Context, id string) (*List, error)
	AllForOwner(ctx context.Context, ownerID string) ([]List, error)
	UpdateColor(ctx context.Context, id, color string) error
}

// ItemRepository defines persistence operations for grocery list items.
// AllOnList returns items in a stable order and an empty slice (not an
// error) for an unknown list.
type ItemRepository interface {
	AllOnList(ctx context.Context, listID string) ([]Item, error)
	Add(ctx context.Context, item Item) error
}

// Sink persists an exported payload. Save must honour ctx cancellation and
// return the context error when it gives up before completing.
type Sink interface {
	Save(ctx context.Context, filename string, payload []byte) error
}
