// Package memory implements the catalog and grocery list repositories as
// in-process stores. It backs dev mode and handler tests; insertion order
// is preserved wherever the domain contract asks for it.
package memory

import (
	"context"
	"sync"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

var (
	_ product.Repository         = (*ProductStore)(nil)
	_ grocerylist.ListRepository = (*ListStore)(nil)
	_ grocerylist.ItemRepository = (*ItemStore)(nil)
)

// ProductStore is an in-memory product.Repository.
type ProductStore struct {
	mu       sync.RWMutex
	order    []string
	products map[string]product.Product
}

// NewProductStore creates an empty ProductStore.
func NewProductStore() *ProductStore {
	return &ProductStore{products: map[string]product.Product{}}
}

// Put inserts or replaces a product. First insertion fixes catalog order.
func (s *ProductStore) Put(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
}

// GetAll returns the catalog in insertion order.
func (s *ProductStore) GetAll(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]product.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id])
	}
	return out, nil
}

// GetByID returns a single product by its identifier.
func (s *ProductStore) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// Update replaces an existing product.
func (s *ProductStore) Update(_ context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

// ListStore is an in-memory grocerylist.ListRepository.
type ListStore struct {
	mu    sync.RWMutex
	order []string
	lists map[string]grocerylist.List
}

// NewListStore creates an empty ListStore.
func NewListStore() *ListStore {
	return &ListStore{lists: map[string]grocerylist.List{}}
}

// Put inserts or replaces a list.
func (s *ListStore) Put(l grocerylist.List) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[l.ID]; !ok {
		s.order = append(s.order, l.ID)
	}
	s.lists[l.ID] = l
}

// GetByID returns a single list by its identifier.
func (s *ListStore) GetByID(_ context.Context, id string) (*grocerylist.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, grocerylist.ErrListNotFound
	}
	return &l, nil
}

// AllForOwner returns all lists belonging to ownerID in insertion order.
func (s *ListStore) AllForOwner(_ context.Context, ownerID string) ([]grocerylist.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]grocerylist.List, 0, len(s.order))
	for _, id := range s.order {
		if l := s.lists[id]; l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// UpdateColor changes the display color of a list.
func (s *ListStore) UpdateColor(_ context.Context, id, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok {
		return grocerylist.ErrListNotFound
	}
	l.Color = color
	s.lists[id] = l
	return nil
}

// ItemStore is an in-memory grocerylist.ItemRepository.
type ItemStore struct {
	mu    sync.RWMutex
	items map[string][]grocerylist.Item // keyed by list ID, in creation order
}

// NewItemStore creates an empty ItemStore.
func NewItemStore() *ItemStore {
	return &ItemStore{items: map[string][]grocerylist.Item{}}
}

// AllOnList returns the items on listID in creation order.
func (s *ItemStore) AllOnList(_ context.Context, listID string) ([]grocerylist.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items[listID]
	out := make([]grocerylist.Item, len(items))
	copy(out, items)
	return out, nil
}

// Add appends a new item to its list.
func (s *ItemStore) Add(_ context.Context, item grocerylist.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ListID] = append(s.items[item.ListID], item)
	return nil
}
