// Package httpapi exposes the grocery list session and catalog over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

// Server routes HTTP requests to the catalog repositories and the single
// grocery list session. The session itself is not safe for concurrent use,
// so every session operation runs under mu; the repositories handle their
// own concurrency.
type Server struct {
	products product.Repository
	lists    grocerylist.ListRepository

	mu      sync.Mutex
	session *grocerylist.Session
}

// NewServer constructs a Server around the given repositories and session.
func NewServer(products product.Repository, lists grocerylist.ListRepository, session *grocerylist.Session) *Server {
	return &Server{
		products: products,
		lists:    lists,
		session:  session,
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)

	r.Get("/lists", s.listsForOwner)
	r.Get("/lists/{id}", s.getList)
	r.Put("/lists/{id}/color", s.updateListColor)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.sessionState)
		r.Put("/list/{listID}", s.selectList)
		r.Get("/items", s.sessionItems)
		r.Get("/available", s.sessionAvailable)
		r.Get("/search", s.sessionSearch)
		r.Post("/items", s.addProduct)
		r.Post("/export", s.export)
	})

	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.GetAll(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

func (s *Server) listsForOwner(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter required")
		return
	}

	lists, err := s.lists.AllForOwner(r.Context(), owner)
	if err != nil {
		zctx.From(r.Context()).Error("list lists", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	out := make([]listDTO, len(lists))
	for i, l := range lists {
		out[i] = toListDTO(l)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, err := s.lists.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, grocerylist.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		zctx.From(r.Context()).Error("get list", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, toListDTO(*l))
}

func (s *Server) updateListColor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.lists.UpdateColor(r.Context(), id, req.Color); err != nil {
		if errors.Is(err, grocerylist.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		zctx.From(r.Context()).Error("update list color", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "listID")

	l, err := s.lists.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, grocerylist.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "list not found")
			return
		}
		zctx.From(r.Context()).Error("get list", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetList(r.Context(), *l); err != nil {
		zctx.From(r.Context()).Error("load session", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) sessionItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, toItemDTOs(s.session.Items()))
}

func (s *Server) sessionAvailable(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, toProductDTOs(s.session.Available()))
}

func (s *Server) sessionSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.session.SearchProducts(term)
	writeJSON(w, http.StatusOK, searchDTO{
		Results: toProductDTOs(results),
		Message: s.session.Message(),
	})
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id required")
		return
	}

	p, err := s.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		zctx.From(r.Context()).Error("get product", zap.Error(err), zap.String("id", req.ProductID))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.AddProduct(r.Context(), p); err != nil {
		zctx.From(r.Context()).Error("add product", zap.Error(err), zap.String("id", req.ProductID))
		writeError(w, http.StatusInternalServerError, "add failed")
		return
	}
	writeJSON(w, http.StatusCreated, s.stateLocked())
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.session.Export(r.Context())
	switch {
	case errors.Is(err, grocerylist.ErrExportCancelled):
		// Cancellation is an outcome, not an error.
		writeJSON(w, http.StatusOK, exportDTO{Status: "cancelled"})
	case err != nil:
		zctx.From(r.Context()).Error("export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
	default:
		writeJSON(w, http.StatusOK, exportDTO{
			Status:   "saved",
			Filename: s.session.ExportFilename(),
		})
	}
}

// stateLocked builds the session state DTO. Callers must hold mu.
func (s *Server) stateLocked() sessionDTO {
	state := sessionDTO{
		Items:     toItemDTOs(s.session.Items()),
		Available: toProductDTOs(s.session.Available()),
		Message:   s.session.Message(),
	}
	if l := s.session.List(); l.ID != "" {
		dto := toListDTO(l)
		state.List = &dto
	}
	return state
}
