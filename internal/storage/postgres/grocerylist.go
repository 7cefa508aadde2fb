package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
)

const (
	getListByIDSQL = `SELECT id, name, created_on, color, owner_id
		FROM grocery_lists WHERE id = $1`

	allListsForOwnerSQL = `SELECT id, name, created_on, color, owner_id
		FROM grocery_lists WHERE owner_id = $1 ORDER BY created_on, id`

	updateListColorSQL = `UPDATE grocery_lists SET color = $2 WHERE id = $1`

	allItemsOnListSQL = `SELECT id, grocery_list_id, product_id, quantity
		FROM grocery_list_items WHERE grocery_list_id = $1 ORDER BY created_at, id`

	addItemSQL = `INSERT INTO grocery_list_items (id, grocery_list_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`
)

var (
	_ grocerylist.ListRepository = (*ListRepository)(nil)
	_ grocerylist.ItemRepository = (*ItemRepository)(nil)
)

// ListRepository implements grocerylist.ListRepository backed by PostgreSQL.
type ListRepository struct {
	pool *pgxpool.Pool
}

// NewListRepository returns a ListRepository that uses the given pool.
func NewListRepository(pool *pgxpool.Pool) *ListRepository {
	return &ListRepository{pool: pool}
}

// GetByID returns a single grocery list by its identifier.
func (r *ListRepository) GetByID(ctx context.Context, id string) (*grocerylist.List, error) {
	rows, err := r.pool.Query(ctx, getListByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting list %q: %w", id, err)
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanList)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, grocerylist.ErrListNotFound
		}
		return nil, fmt.Errorf("getting list %q: %w", id, err)
	}
	return &l, nil
}

// AllForOwner returns all lists belonging to ownerID, oldest first.
func (r *ListRepository) AllForOwner(ctx context.Context, ownerID string) ([]grocerylist.List, error) {
	rows, err := r.pool.Query(ctx, allListsForOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing lists for owner %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanList)
}

// UpdateColor changes the display color of a list.
func (r *ListRepository) UpdateColor(ctx context.Context, id, color string) error {
	tag, err := r.pool.Exec(ctx, updateListColorSQL, id, color)
	if err != nil {
		return fmt.Errorf("updating list %q color: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return grocerylist.ErrListNotFound
	}
	return nil
}

func scanList(row pgx.CollectableRow) (grocerylist.List, error) {
	var l grocerylist.List
	err := row.Scan(&l.ID, &l.Name, &l.CreatedOn, &l.Color, &l.OwnerID)
	return l, err
}

// ItemRepository implements grocerylist.ItemRepository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// AllOnList returns the items on listID in creation order. An unknown list
// yields an empty slice, not an error.
func (r *ItemRepository) AllOnList(ctx context.Context, listID string) ([]grocerylist.Item, error) {
	rows, err := r.pool.Query(ctx, allItemsOnListSQL, listID)
	if err != nil {
		return nil, fmt.Errorf("listing items on list %q: %w", listID, err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// Add persists a new list item.
func (r *ItemRepository) Add(ctx context.Context, item grocerylist.Item) error {
	_, err := r.pool.Exec(ctx, addItemSQL, item.ID, item.ListID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("adding item %q: %w", item.ID, err)
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (grocerylist.Item, error) {
	var it grocerylist.Item
	err := row.Scan(&it.ID, &it.ListID, &it.ProductID, &it.Quantity)
	return it, err
}
