package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billkhata/api/internal/shop"
)

// ShopsHandler serves the static shop directory.
type ShopsHandler struct{}

// NewShopsHandler creates a new ShopsHandler.
func NewShopsHandler() *ShopsHandler {
	return &ShopsHandler{}
}

// RegisterRoutes registers shop endpoints on the given Chi router.
func (h *ShopsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// List returns every shop in directory order.
func (h *ShopsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"shops": shop.All()})
}

// Get returns a single shop by id.
func (h *ShopsHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := shop.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown shop"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}
