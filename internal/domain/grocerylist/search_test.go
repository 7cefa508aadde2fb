package grocerylist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

func names(products []product.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func snapshot(productNames ...string) []product.Product {
	out := make([]product.Product, len(productNames))
	for i, n := range productNames {
		out[i] = product.Product{ID: n, Name: n, Stock: 1}
	}
	return out
}

func TestSearch_EmptySnapshot(t *testing.T) {
	var s ProductSearch

	got := s.Search("milk")
	assert.Empty(t, got)
	assert.Empty(t, s.Message())
}

func TestSearch_BlankTermRestoresSnapshot(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Bread"))

	s.Search("milk")
	got := s.Search("")
	assert.Equal(t, []string{"Milk", "Bread"}, names(got))

	got = s.Search("   ")
	assert.Equal(t, []string{"Milk", "Bread"}, names(got))
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Almond Milk", "Bread"))

	got := s.Search("milk")
	assert.Equal(t, []string{"Milk", "Almond Milk"}, names(got))
	assert.Empty(t, s.Message())
}

func TestSearch_NoResultsSetsMessage(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Bread"))

	got := s.Search("xyz")
	assert.Empty(t, got)
	require.NotEmpty(t, s.Message())
	assert.Contains(t, s.Message(), "xyz")
}

func TestSearch_BlankTermClearsMessage(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk"))

	s.Search("xyz")
	require.NotEmpty(t, s.Message())

	s.Search("")
	assert.Empty(t, s.Message())
}

func TestSearch_MatchClearsMessage(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk"))

	s.Search("xyz")
	require.NotEmpty(t, s.Message())

	s.Search("mil")
	assert.Empty(t, s.Message())
}

func TestSearch_ReentrantFromSnapshot(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Almond Milk", "Bread"))

	// Narrowing, then a broader term: results come from the snapshot,
	// not from the previous filtered view.
	s.Search("almond")
	got := s.Search("milk")
	assert.Equal(t, []string{"Milk", "Almond Milk"}, names(got))
}

func TestSearch_Idempotent(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Almond Milk", "Bread"))

	first := names(s.Search("milk"))
	second := names(s.Search("milk"))
	assert.Equal(t, first, second)
}

func TestSearch_TermIsTrimmed(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk"))

	got := s.Search("  milk  ")
	assert.Equal(t, []string{"Milk"}, names(got))
}

func TestSetSnapshot_DoesNotTouchResults(t *testing.T) {
	var s ProductSearch
	s.SetSnapshot(snapshot("Milk", "Bread"))
	s.Search("milk")
	require.Equal(t, []string{"Milk"}, names(s.Results()))

	s.SetSnapshot(snapshot("Eggs"))

	// Displayed view is unchanged until the next query is applied.
	assert.Equal(t, []string{"Milk"}, names(s.Results()))

	got := s.Search("")
	assert.Equal(t, []string{"Eggs"}, names(got))
}

func TestSetSnapshot_CopiesInput(t *testing.T) {
	var s ProductSearch
	in := snapshot("Milk", "Bread")
	s.SetSnapshot(in)

	in[0].Name = "Mutated"
	got := s.Search("")
	assert.Equal(t, []string{"Milk", "Bread"}, names(got))
}
