package grocerylist

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

// DefaultExportFilename is used when SessionConfig.ExportFilename is empty.
const DefaultExportFilename = "grocery-list.json"

// SessionConfig holds non-dependency configuration for a Session.
type SessionConfig struct {
	// ExportFilename is the name handed to the sink on export.
	ExportFilename string
}

// Session is a single user's in-memory grocery list session. It owns three
// derived views: the items on the active list, the available-products
// snapshot, and the filtered search view. Each view is rebuilt wholesale
// from the repositories on every mutating operation rather than patched in
// place, so externally mutated state is picked up rather than fought.
//
// A Session performs no internal locking; callers that share one across
// goroutines must serialize access themselves.
type Session struct {
	items    ItemRepository
	products product.Repository
	sink     Sink

	exportFilename string

	list    List
	myItems []Item
	search  ProductSearch
}

// NewSession creates a Session with the required collaborators. The session
// starts with no active list; call SetList to load one.
func NewSession(cfg SessionConfig, items ItemRepository, products product.Repository, sink Sink) *Session {
	filename := cfg.ExportFilename
	if filename == "" {
		filename = DefaultExportFilename
	}
	return &Session{
		items:          items,
		products:       products,
		sink:           sink,
		exportFilename: filename,
	}
}

// SetList makes l the active list and performs a full reconciliation.
func (s *Session) SetList(ctx context.Context, l List) error {
	s.list = l
	return s.Load(ctx, l.ID)
}

// Load replaces the items view wholesale with the store's items for listID,
// clears the status message, and re-derives the available-products view.
// An unknown listID yields an empty view, matching a new list with nothing
// on it yet; only repository failures are errors.
func (s *Session) Load(ctx context.Context, listID string) error {
	items, err := s.items.AllOnList(ctx, listID)
	if err != nil {
		return errors.Wrap(err, "load list items")
	}
	if items == nil {
		items = []Item{}
	}
	s.myItems = items
	s.search.message = ""

	return s.deriveAvailable(ctx)
}

// deriveAvailable recomputes the available-products view from the catalog:
// a product is available iff it has positive stock and no item on the active
// list references it. Catalog order is preserved. The search snapshot is
// refreshed and the filter reset to an empty query.
func (s *Session) deriveAvailable(ctx context.Context) error {
	catalog, err := s.products.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	onList := make(map[string]struct{}, len(s.myItems))
	for _, it := range s.myItems {
		onList[it.ProductID] = struct{}{}
	}

	available := make([]product.Product, 0, len(catalog))
	for _, p := range catalog {
		if _, taken := onList[p.ID]; !taken && p.Stock > 0 {
			available = append(available, p)
		}
	}

	s.search.SetSnapshot(available)
	s.search.Search("")
	return nil
}

// AddProduct puts p on the active list with quantity 1 and decrements its
// stock by exactly one. A nil product is a no-op. The item is persisted
// before the stock update; there is no two-phase commit, so a failure
// between the two writes leaves the stores inconsistent and the error says
// so rather than masking it. No rollback is attempted. On success the whole
// session state is re-synchronized from the stores.
func (s *Session) AddProduct(ctx context.Context, p *product.Product) error {
	if p == nil {
		return nil
	}

	item := Item{
		ID:        uuid.New().String(),
		ListID:    s.list.ID,
		ProductID: p.ID,
		Quantity:  1,
	}
	if err := s.items.Add(ctx, item); err != nil {
		return errors.Wrap(err, "add product")
	}

	p.Stock--
	if err := s.products.Update(ctx, *p); err != nil {
		return errors.Wrap(err, "add product")
	}

	return s.Load(ctx, s.list.ID)
}

// Export serializes the current items view and hands it to the sink. It is
// a no-op until a list has been loaded. Cancellation before the sink
// completes is reported as ErrExportCancelled, distinct from failure.
func (s *Session) Export(ctx context.Context) error {
	if s.list.ID == "" || s.myItems == nil {
		return nil
	}

	payload := FormatItems(s.myItems)
	if err := s.sink.Save(ctx, s.exportFilename, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrExportCancelled
		}
		return errors.Wrap(err, "save export")
	}
	return nil
}

// SearchProducts filters the available-products snapshot by term and returns
// the new filtered view.
func (s *Session) SearchProducts(term string) []product.Product {
	return s.search.Search(term)
}

// List returns the active grocery list.
func (s *Session) List() List {
	return s.list
}

// Items returns the current items-on-list view.
func (s *Session) Items() []Item {
	return s.myItems
}

// Available returns the current filtered available-products view.
func (s *Session) Available() []product.Product {
	return s.search.Results()
}

// Message returns the current user-facing status message, or "".
func (s *Session) Message() string {
	return s.search.Message()
}

// ExportFilename returns the filename handed to the sink on export.
func (s *Session) ExportFilename() string {
	return s.exportFilename
}
