package grocerylist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

// ProductSearch filters the available-products snapshot by name. The snapshot
// is the frozen copy of available products taken at the last reconciliation;
// every Search filters from it, never from a previous result, so repeated
// queries cannot compound.
type ProductSearch struct {
	snapshot []product.Product
	results  []product.Product
	message  string
}

// SetSnapshot replaces the unfiltered candidate set. The current filtered
// view is left untouched until the next Search call.
func (s *ProductSearch) SetSnapshot(products []product.Product) {
	s.snapshot = slices.Clone(products)
}

// Search filters the snapshot to products whose name contains term as a
// case-insensitive substring, preserving snapshot order.
//
// A blank or whitespace-only term restores the full snapshot and clears any
// "no results" message. An empty snapshot yields an empty result without
// touching the message. An empty match sets a message quoting the term.
func (s *ProductSearch) Search(term string) []product.Product {
	term = strings.TrimSpace(term)

	if len(s.snapshot) == 0 {
		s.results = nil
		return s.results
	}

	if term == "" {
		s.results = slices.Clone(s.snapshot)
		s.message = ""
		return s.results
	}

	lower := strings.ToLower(term)
	filtered := make([]product.Product, 0, len(s.snapshot))
	for _, p := range s.snapshot {
		if p.Name != "" && strings.Contains(strings.ToLower(p.Name), lower) {
			filtered = append(filtered, p)
		}
	}
	s.results = filtered

	if len(filtered) == 0 {
		s.message = fmt.Sprintf("no products found for %q", term)
	} else {
		s.message = ""
	}
	return s.results
}

// Results returns the current filtered view.
func (s *ProductSearch) Results() []product.Product {
	return s.results
}

// Message returns the current "no results" status message, or "".
func (s *ProductSearch) Message() string {
	return s.message
}
