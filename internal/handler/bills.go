package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/enum"
	"github.com/billkhata/api/internal/service"
	"github.com/billkhata/api/internal/shop"
	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/ws"
)

// CurrentBillStore defines the record store methods needed to read the
// in-progress bill. Satisfied by *store.Bills; narrow interface for testability.
type CurrentBillStore interface {
	CurrentBill(ctx context.Context) (billing.Bill, error)
}

// Broadcaster pushes dashboard events to connected WebSocket clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToShop(shopID string, event ws.Event)
}

// BillsHandler handles the billing flow endpoints: create, inspect, pay,
// discard, and share the current bill.
type BillsHandler struct {
	svc         *service.BillingService
	store       CurrentBillStore
	hub         Broadcaster
	countryCode string
}

// NewBillsHandler creates a new BillsHandler. hub may be nil when no
// WebSocket fan-out is wanted (tests).
func NewBillsHandler(svc *service.BillingService, billStore CurrentBillStore, hub Broadcaster, countryCode string) *BillsHandler {
	return &BillsHandler{svc: svc, store: billStore, hub: hub, countryCode: countryCode}
}

// RegisterRoutes registers bill endpoints on the given Chi router.
func (h *BillsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/current", h.Current)
	r.Delete("/current", h.Discard)
	r.Post("/current/payment", h.Pay)
	r.Get("/current/share", h.Share)
}

// --- Request / Response types ---

type createBillItem struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
}

type createBillRequest struct {
	ShopID        string           `json:"shop_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []createBillItem `json:"items"`
}

type payRequest struct {
	PaymentMode string `json:"payment_mode"`
}

type billItemResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

type billResponse struct {
	ID            string             `json:"id"`
	ShortID       string             `json:"short_id"`
	ShopID        string             `json:"shop_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Items         []billItemResponse `json:"items"`
	TotalAmount   string             `json:"total_amount"`
	PaymentMode   string             `json:"payment_mode,omitempty"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     string             `json:"created_at"`
}

type shareResponse struct {
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url"`
}

func billToResponse(b billing.Bill) billResponse {
	items := make([]billItemResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = billItemResponse{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal().StringFixed(2),
		}
	}
	return billResponse{
		ID:            b.ID,
		ShortID:       b.ShortID(),
		ShopID:        string(b.ShopID),
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		Items:         items,
		TotalAmount:   b.TotalAmount.StringFixed(2),
		PaymentMode:   b.PaymentMode,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// --- Handlers ---

// Create validates the request and places a new Due bill in the current slot.
// Validation failures come back as 422 with one entry per offending field.
func (h *BillsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	shopInfo, err := shop.Lookup(req.ShopID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown shop"})
		return
	}

	items := make([]billing.LineItem, len(req.Items))
	for i, it := range req.Items {
		price := decimal.Zero
		if it.Price != "" {
			price, err = decimal.NewFromString(string(it.Price))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item price is not a number"})
				return
			}
		}
		items[i] = billing.LineItem{Name: it.Name, Quantity: it.Quantity, Price: price}
	}

	bill, err := h.svc.Start(r.Context(), shopInfo, req.CustomerName, req.CustomerPhone, items)
	if err != nil {
		var verrs billing.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "validation failed",
				"fields": verrs,
			})
			return
		}
		log.Printf("ERROR: failed to create bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, billToResponse(bill))
}

// Current returns the in-progress bill, paid or not.
func (h *BillsHandler) Current(w http.ResponseWriter, r *http.Request) {
	bill, err := h.store.CurrentBill(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no bill in progress"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, billToResponse(bill))
}

// Discard drops the current bill so a fresh flow can begin.
func (h *BillsHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.StartFresh(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pay captures payment for the current bill and archives it to history.
// Paying an already-paid bill is a conflict, never a double archive.
func (h *BillsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	bill, err := h.svc.Finalize(r.Context(), req.PaymentMode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoCurrentBill):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no bill in progress"})
		case errors.Is(err, billing.ErrInvalidPaymentMode):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_mode must be Cash or UPI"})
		case errors.Is(err, billing.ErrAlreadyPaid):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "bill is already paid"})
		default:
			log.Printf("ERROR: failed to finalize bill: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to archive bill, payment can be retried"})
		}
		return
	}

	h.broadcastFinalized(bill)
	writeJSON(w, http.StatusOK, billToResponse(bill))
}

// Share composes the WhatsApp confirmation message for the current bill.
// Only a paid bill can be shared.
func (h *BillsHandler) Share(w http.ResponseWriter, r *http.Request) {
	bill, err := h.store.CurrentBill(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no bill in progress"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if bill.PaymentStatus != enum.PaymentStatusPaid {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "bill is not paid yet"})
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{
		Message:     billing.ComposeShareMessage(bill),
		WhatsAppURL: billing.ShareLink(bill, h.countryCode),
	})
}

func (h *BillsHandler) broadcastFinalized(bill billing.Bill) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(billToResponse(bill))
	if err != nil {
		log.Printf("ERROR: failed to marshal bill.finalized event: %v", err)
		return
	}
	h.hub.BroadcastToShop(string(bill.ShopID), ws.Event{Type: "bill.finalized", Payload: payload})
}
