package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/billkhata/api/internal/billing"
	"github.com/billkhata/api/internal/stats"
)

// DashboardStore defines the record store methods needed by the dashboard
// handler. Satisfied by *store.Bills; narrow interface for testability.
type DashboardStore interface {
	History(ctx context.Context) ([]billing.Bill, int, error)
}

// DashboardHandler serves the sales statistics endpoints.
type DashboardHandler struct {
	store DashboardStore
	loc   *time.Location
}

// NewDashboardHandler creates a new DashboardHandler. loc sets the calendar
// used for day and month boundaries; nil means UTC.
func NewDashboardHandler(dashboardStore DashboardStore, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{store: dashboardStore, loc: loc}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/monthly", h.Monthly)
}

type dailyStatsResponse struct {
	TotalSalesToday string            `json:"total_sales_today"`
	CashTotal       string            `json:"cash_total"`
	UpiTotal        string            `json:"upi_total"`
	BillCount       int               `json:"bill_count"`
	ShopSales       map[string]string `json:"shop_sales"`
	SkippedBills    int               `json:"skipped_bills,omitempty"`
}

type dailyPointResponse struct {
	Date  string `json:"date"`
	Sales string `json:"sales"`
}

type monthlySummaryResponse struct {
	TotalRevenue string               `json:"total_revenue"`
	DailySales   []dailyPointResponse `json:"daily_sales"`
	SkippedBills int                  `json:"skipped_bills,omitempty"`
}

// Stats returns today's sales figures: total, cash/UPI split, bill count,
// and a per-shop breakdown.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	history, _, err := h.store.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	d := stats.Daily(history, time.Now().In(h.loc))
	if d.SkippedBills > 0 {
		log.Printf("WARN: daily stats skipped %d bills with unusable createdAt", d.SkippedBills)
	}

	shopSales := make(map[string]string, len(d.ShopSales))
	for id, total := range d.ShopSales {
		shopSales[string(id)] = total.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, dailyStatsResponse{
		TotalSalesToday: d.TotalSalesToday.StringFixed(2),
		CashTotal:       d.CashTotal.StringFixed(2),
		UpiTotal:        d.UpiTotal.StringFixed(2),
		BillCount:       d.BillCount,
		ShopSales:       shopSales,
		SkippedBills:    d.SkippedBills,
	})
}

// Monthly returns the calendar-month revenue and the 30-day sales series,
// oldest day first.
func (h *DashboardHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	history, _, err := h.store.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	m := stats.Monthly(history, time.Now().In(h.loc))
	if m.SkippedBills > 0 {
		log.Printf("WARN: monthly summary skipped %d bills with unusable createdAt", m.SkippedBills)
	}

	points := make([]dailyPointResponse, len(m.DailySales))
	for i, p := range m.DailySales {
		points[i] = dailyPointResponse{Date: p.Date, Sales: p.Sales.StringFixed(2)}
	}

	writeJSON(w, http.StatusOK, monthlySummaryResponse{
		TotalRevenue: m.TotalRevenue.StringFixed(2),
		DailySales:   points,
		SkippedBills: m.SkippedBills,
	})
}
