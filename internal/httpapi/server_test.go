package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
	"github.com/MinasAbeer/grocery-list-service/internal/sink"
	"github.com/MinasAbeer/grocery-list-service/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.ProductStore) {
	t.Helper()

	products := memory.NewProductStore()
	products.Put(product.Product{ID: "p1", Name: "Milk", Price: decimal.RequireFromString("1.19"), Stock: 3})
	products.Put(product.Product{ID: "p2", Name: "Almond Milk", Price: decimal.RequireFromString("2.49"), Stock: 1})
	products.Put(product.Product{ID: "p3", Name: "Bread", Price: decimal.RequireFromString("1.89"), Stock: 0})

	lists := memory.NewListStore()
	lists.Put(grocerylist.List{ID: "l1", Name: "Weekly", OwnerID: "u1"})

	items := memory.NewItemStore()
	session := grocerylist.NewSession(grocerylist.SessionConfig{}, items, products, sink.NewFileSink(t.TempDir()))

	return NewServer(products, lists, session), products
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestListProducts(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)

	products := decode[[]productDTO](t, w)
	require.Len(t, products, 3)
	assert.Equal(t, "Milk", products[0].Name)
	assert.Equal(t, 1.19, products[0].Price)
}

func TestGetProduct_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/products/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectList_LoadsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPut, "/session/list/l1", "")
	require.Equal(t, http.StatusOK, w.Code)

	state := decode[sessionDTO](t, w)
	require.NotNil(t, state.List)
	assert.Equal(t, "l1", state.List.ID)
	assert.Empty(t, state.Items)
	// p3 has zero stock, so only p1 and p2 are available.
	require.Len(t, state.Available, 2)
}

func TestSelectList_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPut, "/session/list/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddProduct_Flow(t *testing.T) {
	srv, products := newTestServer(t)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/session/list/l1", "").Code)

	w := do(t, h, http.MethodPost, "/session/items", `{"product_id":"p2"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	state := decode[sessionDTO](t, w)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "p2", state.Items[0].ProductID)
	assert.Equal(t, 1, state.Items[0].Quantity)

	// p2 had stock 1; it is now 0 and off the available view.
	require.Len(t, state.Available, 1)
	assert.Equal(t, "p1", state.Available[0].ID)

	p, err := products.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestAddProduct_UnknownProduct(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/session/list/l1", "").Code)

	w := do(t, h, http.MethodPost, "/session/items", `{"product_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddProduct_MissingBody(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPost, "/session/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/session/list/l1", "").Code)

	w := do(t, h, http.MethodGet, "/session/search?q=milk", "")
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[searchDTO](t, w)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "Milk", result.Results[0].Name)
	assert.Equal(t, "Almond Milk", result.Results[1].Name)
	assert.Empty(t, result.Message)
}

func TestSearch_NoResults(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/session/list/l1", "").Code)

	w := do(t, h, http.MethodGet, "/session/search?q=xyz", "")
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[searchDTO](t, w)
	assert.Empty(t, result.Results)
	assert.Contains(t, result.Message, "xyz")
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/session/list/l1", "").Code)

	w := do(t, h, http.MethodPost, "/session/export", "")
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[exportDTO](t, w)
	assert.Equal(t, "saved", result.Status)
	assert.Equal(t, grocerylist.DefaultExportFilename, result.Filename)
}

func TestUpdateListColor(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodPut, "/lists/l1/color", `{"color":"#336699"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/lists/l1", "")
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[listDTO](t, w)
	assert.Equal(t, "#336699", l.Color)
}

func TestListsForOwner(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/lists?owner=u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	lists := decode[[]listDTO](t, w)
	require.Len(t, lists, 1)
	assert.Equal(t, "Weekly", lists[0].Name)

	w = do(t, h, http.MethodGet, "/lists", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
