//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// TestSession_Flow drives one shopping session end to end: select the demo
// list, search the catalog, put a product on the list, and export. Steps
// share state so they run as ordered subtests.
func TestSession_Flow(t *testing.T) {
	listID := demoListID(t)

	t.Run("select list", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, "/api/session/list/"+listID, nil)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		state := decodeJSON[sessionResponse](t, resp)
		if state.List == nil || state.List.ID != listID {
			t.Fatalf("list not selected: %+v", state.List)
		}
		if len(state.Items) != 0 {
			t.Fatalf("expected empty list, got %d items", len(state.Items))
		}
		// Bananas (stock 0) must not be offered.
		if len(state.Available) != 8 {
			t.Fatalf("expected 8 available products, got %d", len(state.Available))
		}
		for _, p := range state.Available {
			if p.ID == "8" {
				t.Fatal("out-of-stock product offered as available")
			}
		}
	})

	t.Run("search", func(t *testing.T) {
		resp := doGet(t, "/api/session/search?q=milk")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		res := decodeJSON[searchResponse](t, resp)
		if len(res.Results) != 2 {
			t.Fatalf("expected 2 results for %q, got %d", "milk", len(res.Results))
		}
		if res.Results[0].Name != "Milk" || res.Results[1].Name != "Almond Milk" {
			t.Fatalf("unexpected results: %+v", res.Results)
		}
		if res.Message != "" {
			t.Errorf("unexpected message: %q", res.Message)
		}
	})

	t.Run("search no match", func(t *testing.T) {
		resp := doGet(t, "/api/session/search?q=durian")
		defer resp.Body.Close()

		res := decodeJSON[searchResponse](t, resp)
		if len(res.Results) != 0 {
			t.Fatalf("expected no results, got %d", len(res.Results))
		}
		if res.Message == "" {
			t.Error("expected a no-results message")
		}
	})

	t.Run("add product", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/session/items", map[string]string{"product_id": "2"})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		state := decodeJSON[sessionResponse](t, resp)
		if len(state.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(state.Items))
		}
		item := state.Items[0]
		if item.ProductID != "2" || item.Quantity != 1 || item.ListID != listID {
			t.Fatalf("unexpected item: %+v", item)
		}
		// The added product leaves the available view and any search filter
		// is reset.
		for _, p := range state.Available {
			if p.ID == "2" {
				t.Fatal("added product still offered as available")
			}
		}
		if len(state.Available) != 7 {
			t.Fatalf("expected 7 available products, got %d", len(state.Available))
		}
	})

	t.Run("stock decremented", func(t *testing.T) {
		resp := doGet(t, "/api/products/2")
		defer resp.Body.Close()

		p := decodeJSON[productResponse](t, resp)
		if p.Stock != 5 {
			t.Fatalf("stock: got %d, want 5", p.Stock)
		}
	})

	t.Run("add unknown product", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/session/items", map[string]string{"product_id": "999"})
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("export", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/api/session/export", nil)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		res := decodeJSON[exportResponse](t, resp)
		if res.Status != "saved" {
			t.Fatalf("status: got %q, want %q", res.Status, "saved")
		}
		if res.Filename == "" {
			t.Error("filename is empty")
		}
	})
}

func TestSession_SelectUnknownList(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/api/session/list/00000000-0000-0000-0000-000000000000", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestList_UpdateColor(t *testing.T) {
	listID := demoListID(t)

	resp := doJSON(t, http.MethodPut, "/api/lists/"+listID+"/color", map[string]string{"color": "#336699"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	get := doGet(t, "/api/lists/"+listID)
	defer get.Body.Close()

	l := decodeJSON[listResponse](t, get)
	if l.Color != "#336699" {
		t.Errorf("color: got %q, want %q", l.Color, "#336699")
	}
}
