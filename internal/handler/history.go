package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/shop"
	"github.com/billkhata/api/internal/stats"
)

// HistoryStore defines the record store methods needed by the history
// handler. Satisfied by *store.Bills; narrow interface for testability.
type HistoryStore interface {
	History(ctx context.Context) ([]billing.Bill, int, error)
}

// HistoryHandler serves the archived bill list with search and shop filters.
type HistoryHandler struct {
	store HistoryStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyStore HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: historyStore}
}

// RegisterRoutes registers history endpoints on the given Chi router.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type historyResponse struct {
	Bills   []billResponse `json:"bills"`
	Total   int            `json:"total"`
	Showing int            `json:"showing"`
}

// List returns archived bills, newest first. ?search= matches customer name,
// phone, or the short bill id; ?shop= narrows to one shop ("all" or absent
// disables the filter).
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	shopFilter := r.URL.Query().Get("shop")
	if shopFilter == "" {
		shopFilter = stats.ShopFilterAll
	}
	if shopFilter != stats.ShopFilterAll && !shop.IsValid(shopFilter) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown shop filter"})
		return
	}

	history, _, err := h.store.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	filtered := stats.Filter(history, r.URL.Query().Get("search"), shopFilter)

	bills := make([]billResponse, len(filtered))
	for i, b := range filtered {
		bills[i] = billToResponse(b)
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Bills:   bills,
		Total:   len(history),
		Showing: len(filtered),
	})
}
