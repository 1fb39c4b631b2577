package handler_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/billkhata/api/internal/handler"
	"github.com/billkhata/api/internal/service"
	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/store/memory"
)

func setupBillsRouter(t *testing.T) (*chi.Mux, *store.Bills) {
	t.Helper()
	bills := store.NewBills(memory.NewStore())
	svc := service.NewBillingService(bills, service.RealClock(), 0, time.UTC)
	h := handler.NewBillsHandler(svc, bills, nil, "91")
	r := chi.NewRouter()
	r.Route("/bills", h.RegisterRoutes)
	return r, bills
}

func validCreateRequest() map[string]interface{} {
	return map[string]interface{}{
		"shop_id":        "kapish",
		"customer_name":  "Rahul Sharma",
		"customer_phone": "9876543210",
		"items": []map[string]interface{}{
			{"name": "Photo Frame", "quantity": 2, "price": "250"},
			{"name": "Lamination", "quantity": 1, "price": "49.50"},
		},
	}
}

func TestCreateBill_Success(t *testing.T) {
	router, _ := setupBillsRouter(t)

	rr := doRequest(t, router, "POST", "/bills", validCreateRequest())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	if resp["id"] == "" {
		t.Error("expected generated id")
	}
	if resp["payment_status"] != "Due" {
		t.Errorf("status: got %v, want Due", resp["payment_status"])
	}
	if resp["total_amount"] != "549.50" {
		t.Errorf("total: got %v, want 549.50", resp["total_amount"])
	}
	if resp["shop_id"] != "kapish" {
		t.Errorf("shop: got %v", resp["shop_id"])
	}
}

func TestCreateBill_UnknownShop(t *testing.T) {
	router, _ := setupBillsRouter(t)

	req := validCreateRequest()
	req["shop_id"] = "nope"
	rr := doRequest(t, router, "POST", "/bills", req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCreateBill_ValidationReportsEveryField(t *testing.T) {
	router, _ := setupBillsRouter(t)

	req := map[string]interface{}{
		"shop_id":        "kapish",
		"customer_name":  "Jo",
		"customer_phone": "12345",
		"items":          []map[string]interface{}{},
	}
	rr := doRequest(t, router, "POST", "/bills", req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	fields, ok := resp["fields"].([]interface{})
	if !ok {
		t.Fatalf("expected fields list, got %v", resp)
	}
	if len(fields) != 2 {
		t.Errorf("violations: got %d, want 2 (phone and items)", len(fields))
	}
}

func TestCreateBill_NonNumericPrice(t *testing.T) {
	router, _ := setupBillsRouter(t)

	req := validCreateRequest()
	req["items"] = []map[string]interface{}{{"name": "Frame", "quantity": 1, "price": "abc"}}
	rr := doRequest(t, router, "POST", "/bills", req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCurrentBill_Lifecycle(t *testing.T) {
	router, _ := setupBillsRouter(t)

	rr := doRequest(t, router, "GET", "/bills/current", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("empty slot: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	doRequest(t, router, "POST", "/bills", validCreateRequest())

	rr = doRequest(t, router, "GET", "/bills/current", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("after create: got %d, want %d", rr.Code, http.StatusOK)
	}

	rr = doRequest(t, router, "DELETE", "/bills/current", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("discard: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doRequest(t, router, "GET", "/bills/current", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("after discard: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestPay_ArchivesBill(t *testing.T) {
	router, bills := setupBillsRouter(t)
	doRequest(t, router, "POST", "/bills", validCreateRequest())

	rr := doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "UPI"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["payment_status"] != "Paid" || resp["payment_mode"] != "UPI" {
		t.Errorf("unexpected bill: %v", resp)
	}

	history, _, err := bills.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history: got %d entries, want 1", len(history))
	}
}

func TestPay_ErrorMapping(t *testing.T) {
	router, _ := setupBillsRouter(t)

	// No bill in progress.
	rr := doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "Cash"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("no bill: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	doRequest(t, router, "POST", "/bills", validCreateRequest())

	// Unknown mode.
	rr = doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "Card"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad mode: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	// Paying twice is a conflict, not a double archive.
	doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "Cash"})
	rr = doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "Cash"})
	if rr.Code != http.StatusConflict {
		t.Errorf("double pay: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestShare_RequiresPaidBill(t *testing.T) {
	router, _ := setupBillsRouter(t)

	rr := doRequest(t, router, "GET", "/bills/current/share", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("no bill: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	doRequest(t, router, "POST", "/bills", validCreateRequest())
	rr = doRequest(t, router, "GET", "/bills/current/share", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("unpaid bill: got %d, want %d", rr.Code, http.StatusConflict)
	}

	doRequest(t, router, "POST", "/bills/current/payment", map[string]string{"payment_mode": "UPI"})
	rr = doRequest(t, router, "GET", "/bills/current/share", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("paid bill: got %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeJSON(t, rr)
	msg, _ := resp["message"].(string)
	if !strings.Contains(msg, "Thank you for your purchase from Kapish Photo Frame!") {
		t.Errorf("unexpected message: %q", msg)
	}
	link, _ := resp["whatsapp_url"].(string)
	if !strings.HasPrefix(link, "https://wa.me/919876543210?text=") {
		t.Errorf("unexpected link: %q", link)
	}
}
